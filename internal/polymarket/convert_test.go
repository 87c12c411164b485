package polymarket

import (
	"encoding/json"
	"testing"
)

func TestGammaMarketToModel(t *testing.T) {
	raw := `{
		"id": 5501,
		"conditionId": "0xaaa",
		"slug": "seoul-24c",
		"question": "Will the highest temperature be 24C?",
		"groupItemTitle": "24°C",
		"groupItemThreshold": "24",
		"outcomes": "[\"Yes\", \"No\"]",
		"outcomePrices": "[\"0.42\", \"0.58\"]",
		"clobTokenIds": "[\"tok-a\", \"tok-b\"]",
		"bestAsk": "0.44",
		"volume24hrClob": 88.25,
		"acceptingOrders": true
	}`

	var gm GammaMarket
	if err := json.Unmarshal([]byte(raw), &gm); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	m := gm.ToModel()

	if m.GammaID != "5501" {
		t.Errorf("GammaID = %q, want 5501", m.GammaID)
	}
	if m.ThresholdC == nil || *m.ThresholdC != 24 {
		t.Errorf("ThresholdC = %v, want 24", m.ThresholdC)
	}
	if m.LowerBoundC == nil || *m.LowerBoundC != 24 {
		t.Errorf("LowerBoundC = %v, want 24", m.LowerBoundC)
	}
	if m.UpperBoundC == nil || *m.UpperBoundC != 24 {
		t.Errorf("UpperBoundC = %v, want 24", m.UpperBoundC)
	}
	if m.YesTokenID != "tok-a" || m.NoTokenID != "tok-b" {
		t.Errorf("tokens = %q/%q", m.YesTokenID, m.NoTokenID)
	}
	if len(m.OutcomePrices) != 2 || m.OutcomePrices[0] != 0.42 {
		t.Errorf("OutcomePrices = %v", m.OutcomePrices)
	}
	if m.BestAsk == nil || *m.BestAsk != 0.44 {
		t.Errorf("BestAsk = %v (string-encoded number should decode)", m.BestAsk)
	}
	// volume24hr absent, volume24hrClob fills in.
	if m.Volume24h == nil || *m.Volume24h != 88.25 {
		t.Errorf("Volume24h = %v, want 88.25", m.Volume24h)
	}
	if !m.AcceptingOrders {
		t.Error("AcceptingOrders = false")
	}
}

func TestGammaMarketBounds(t *testing.T) {
	tests := []struct {
		title string
		lower *int
		upper *int
	}{
		{"24°C", intp(24), intp(24)},
		{"20°C or below", nil, intp(20)},
		{"26°C or higher", intp(26), nil},
		{"Something else", nil, nil},
	}

	for _, tt := range tests {
		gm := GammaMarket{GroupItemTitle: tt.title}
		m := gm.ToModel()
		if !intpEq(m.LowerBoundC, tt.lower) || !intpEq(m.UpperBoundC, tt.upper) {
			t.Errorf("%q: bounds = %v/%v, want %v/%v",
				tt.title, fmtIntp(m.LowerBoundC), fmtIntp(m.UpperBoundC), fmtIntp(tt.lower), fmtIntp(tt.upper))
		}
	}
}

func TestSelectTokens(t *testing.T) {
	t.Run("labels out of order", func(t *testing.T) {
		gm := GammaMarket{
			Outcomes:     StringList{"No", "Yes"},
			ClobTokenIDs: StringList{"tok-no", "tok-yes"},
		}
		yes, no := gm.selectTokens()
		if yes != "tok-yes" || no != "tok-no" {
			t.Errorf("tokens = %q/%q", yes, no)
		}
	})

	t.Run("positional fallback without labels", func(t *testing.T) {
		gm := GammaMarket{
			ClobTokenIDs: StringList{"first", "second"},
		}
		yes, no := gm.selectTokens()
		if yes != "first" || no != "second" {
			t.Errorf("tokens = %q/%q", yes, no)
		}
	})

	t.Run("single token", func(t *testing.T) {
		gm := GammaMarket{ClobTokenIDs: StringList{"only"}}
		yes, no := gm.selectTokens()
		if yes != "only" || no != "" {
			t.Errorf("tokens = %q/%q", yes, no)
		}
	})
}

func TestBookToModel(t *testing.T) {
	t.Run("best bid is max, best ask is min", func(t *testing.T) {
		book := BookResponse{
			Bids: []BookWireLevel{
				{Price: "0.40", Size: "100"},
				{Price: "0.43", Size: "50"},
				{Price: "0.41", Size: "75"},
			},
			Asks: []BookWireLevel{
				{Price: "0.48", Size: "20"},
				{Price: "0.45", Size: "10"},
				{Price: "0.47", Size: "30"},
			},
		}

		top := book.ToModel()
		if top.Bid == nil || top.Bid.Price != 0.43 || top.Bid.Size != 50 {
			t.Errorf("Bid = %+v, want 0.43@50", top.Bid)
		}
		if top.Ask == nil || top.Ask.Price != 0.45 || top.Ask.Size != 10 {
			t.Errorf("Ask = %+v, want 0.45@10", top.Ask)
		}
	})

	t.Run("empty book", func(t *testing.T) {
		top := (&BookResponse{}).ToModel()
		if top.Bid != nil || top.Ask != nil {
			t.Errorf("top = %+v, want empty", top)
		}
	})

	t.Run("unparseable levels skipped", func(t *testing.T) {
		book := BookResponse{
			Bids: []BookWireLevel{
				{Price: "garbage", Size: "1"},
				{Price: "0.30", Size: "5"},
			},
		}
		top := book.ToModel()
		if top.Bid == nil || top.Bid.Price != 0.30 {
			t.Errorf("Bid = %+v, want 0.30", top.Bid)
		}
	})
}

func TestStringListDecoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"bare array", `["a", "b"]`, 2},
		{"encoded string", `"[\"a\", \"b\", \"c\"]"`, 3},
		{"null", `null`, 0},
		{"garbage string", `"not json"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			if err := json.Unmarshal([]byte(tt.raw), &l); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(l) != tt.want {
				t.Errorf("len = %d, want %d", len(l), tt.want)
			}
		})
	}
}

func intp(v int) *int { return &v }

func intpEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtIntp(p *int) any {
	if p == nil {
		return "nil"
	}
	return *p
}
