package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseForecastTime(t *testing.T) {
	loc := seoulLoc(t)

	tests := []struct {
		name    string
		ts      string
		want    time.Time
		wantErr bool
	}{
		{
			name: "naive local hour",
			ts:   "2026-08-05T14:00",
			want: time.Date(2026, 8, 5, 5, 0, 0, 0, time.UTC),
		},
		{
			name: "explicit offset wins",
			ts:   "2026-08-05T14:00:00+09:00",
			want: time.Date(2026, 8, 5, 5, 0, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			ts:      "not-a-time",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseForecastTime(tt.ts, loc)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseForecastTime(%q) = %v, want error", tt.ts, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseForecastTime(%q) error: %v", tt.ts, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseForecastTime(%q) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}

func TestIngestForecast(t *testing.T) {
	om := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("hourly") != "temperature_2m" || q.Get("timezone") != "Asia/Seoul" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{
  "timezone": "Asia/Seoul",
  "hourly": {
    "time": ["2026-08-25T14:00", "2026-08-25T15:00", "2026-08-25T16:00"],
    "temperature_2m": [29.1, 30.3, null]
  }
}`)
	}))
	defer om.Close()

	ing, st, _ := newTestIngestor(t, testURLs{om: om.URL}, nil)

	if err := ing.ingestForecast(context.Background()); err != nil {
		t.Fatalf("ingestForecast() = %v", err)
	}

	forecast, fetchedAt := st.Forecast()
	if forecast == nil {
		t.Fatal("forecast not stored")
	}
	if fetchedAt.IsZero() {
		t.Error("fetch time not stamped")
	}
	if forecast.Provider != "open-meteo" || forecast.Timezone != "Asia/Seoul" {
		t.Errorf("provider/timezone = %q/%q", forecast.Provider, forecast.Timezone)
	}
	if len(forecast.Hourly.Times) != 3 {
		t.Fatalf("len(times) = %d, want 3", len(forecast.Hourly.Times))
	}

	temps := forecast.Hourly.TempCByModel[forecast.DefaultModel]
	if len(temps) != 3 {
		t.Fatalf("len(temps) = %d, want 3", len(temps))
	}
	if temps[1] == nil || *temps[1] != 30.3 {
		t.Errorf("temps[1] = %v, want 30.3", temps[1])
	}
	// Null slots survive so the series stays aligned with the time axis.
	if temps[2] != nil {
		t.Errorf("temps[2] = %v, want nil", *temps[2])
	}
}
