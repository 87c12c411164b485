package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestIngestPortfolioUnconfigured(t *testing.T) {
	var hits atomic.Int32
	data := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `[]`)
	}))
	defer data.Close()

	ing, st, _ := newTestIngestor(t, testURLs{data: data.URL}, nil)

	if err := ing.ingestPortfolio(context.Background()); err != nil {
		t.Fatalf("ingestPortfolio() = %v", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("unconfigured cycle hit the API %d times", n)
	}

	balance, positions := st.Portfolio()
	if balance != nil || positions != nil {
		t.Errorf("portfolio = %v/%v, want empty", balance, positions)
	}
}

func TestIngestPortfolioPositions(t *testing.T) {
	data := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/positions" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("user"); got != "0xabc" {
			t.Errorf("user = %q, want 0xabc", got)
		}
		fmt.Fprint(w, `[
  {
    "asset": "tok-yes-29",
    "conditionId": "0xc1",
    "size": "12.5",
    "avgPrice": 0.40,
    "curPrice": 0.55,
    "currentValue": 6.875,
    "cashPnl": 1.875,
    "title": "Highest temperature in Seoul on August 25?",
    "slug": "seoul-aug-25-29c",
    "outcome": "Yes",
    "redeemable": false
  }
]`)
	}))
	defer data.Close()

	ing, st, _ := newTestIngestor(t, testURLs{data: data.URL, address: "0xabc"}, nil)

	if err := ing.ingestPortfolio(context.Background()); err != nil {
		t.Fatalf("ingestPortfolio() = %v", err)
	}

	balance, positions := st.Portfolio()
	if balance != nil {
		t.Errorf("balance = %+v, want nil without API credentials", balance)
	}
	if len(positions) != 1 {
		t.Fatalf("len(positions) = %d, want 1", len(positions))
	}

	p := positions[0]
	if p.Asset != "tok-yes-29" || p.Outcome != "Yes" {
		t.Errorf("position = %q/%q", p.Asset, p.Outcome)
	}
	if p.Size != 12.5 {
		t.Errorf("size = %v, want 12.5 (string-encoded upstream)", p.Size)
	}
	if p.CashPnl == nil || *p.CashPnl != 1.875 {
		t.Errorf("cashPnl = %v, want 1.875", p.CashPnl)
	}
}
