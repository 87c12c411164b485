package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jwpark/polytemp/internal/config"
	"github.com/jwpark/polytemp/internal/dayhigh"
	"github.com/jwpark/polytemp/internal/health"
	"github.com/jwpark/polytemp/internal/ingest"
	"github.com/jwpark/polytemp/internal/state"
	"github.com/jwpark/polytemp/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testNow(t *testing.T) (time.Time, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(2026, 8, 25, 15, 0, 0, 0, loc), loc
}

func newTestServer(t *testing.T, mutate func(*Deps)) *Server {
	t.Helper()
	now, loc := testNow(t)

	cfg := config.Config{}
	cfg.Service = config.ServiceConfig{
		Station:    "RKSI",
		Timezone:   "Asia/Seoul",
		SlugPrefix: "highest-temperature-in-seoul-on",
	}

	db, err := store.Open(context.Background(), config.DBConfig{}, testLogger())
	if err != nil {
		t.Fatalf("open disabled store: %v", err)
	}

	d := Deps{
		Config:  cfg,
		Loc:     loc,
		State:   state.New(),
		Health:  health.NewMonitor("market", "event", "awc", "wunderground", "forecast", "portfolio"),
		Store:   db,
		Tracker: dayhigh.NewTracker(nil, testLogger()),
		Logger:  testLogger(),
		Now:     func() time.Time { return now },
	}
	if mutate != nil {
		mutate(&d)
	}
	return New(d)
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload struct {
		Status     string         `json:"status"`
		Version    string         `json:"version"`
		Components map[string]any `json:"components"`
	}
	decodeBody(t, rec, &payload)

	if payload.Status != "healthy" {
		t.Errorf("status = %q, want healthy", payload.Status)
	}
	if payload.Components["database"] != "disabled" {
		t.Errorf("database = %v, want disabled", payload.Components["database"])
	}
	if payload.Version == "" {
		t.Error("version missing")
	}
	if _, ok := payload.Components["sources"]; !ok {
		t.Error("sources missing from components")
	}

	// A failed source degrades but does not fail the check.
	s.health.Failure("awc", errors.New("upstream exploded"))
	rec = doRequest(t, s, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded status = %d, want 200", rec.Code)
	}
	decodeBody(t, rec, &payload)
	if payload.Status != "degraded" {
		t.Errorf("status = %q, want degraded", payload.Status)
	}
}

func TestRefresh(t *testing.T) {
	var runs atomic.Int32
	block := make(chan struct{})
	started := make(chan struct{})

	s := newTestServer(t, func(d *Deps) {
		sources := []ingest.Source{
			{Name: "awc", TTL: time.Hour, Run: func(ctx context.Context) error {
				runs.Add(1)
				return nil
			}},
			{Name: "market", TTL: time.Hour, Run: func(ctx context.Context) error {
				close(started)
				<-block
				return nil
			}},
		}
		d.Supervisor = ingest.NewSupervisor(sources, d.Health, d.Logger)
	})

	if rec := doRequest(t, s, http.MethodPost, "/api/sources/nope/refresh"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown source status = %d, want 404", rec.Code)
	}

	if rec := doRequest(t, s, http.MethodPost, "/api/sources/awc/refresh"); rec.Code != http.StatusAccepted {
		t.Errorf("refresh status = %d, want 202", rec.Code)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}

	// A second refresh while one is in flight conflicts.
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- doRequest(t, s, http.MethodPost, "/api/sources/market/refresh") }()
	<-started

	if rec := doRequest(t, s, http.MethodPost, "/api/sources/market/refresh"); rec.Code != http.StatusConflict {
		t.Errorf("busy status = %d, want 409", rec.Code)
	}

	close(block)
	if rec := <-done; rec.Code != http.StatusAccepted {
		t.Errorf("blocked refresh status = %d, want 202", rec.Code)
	}
}

func TestStoreBackedEndpointsUnavailable(t *testing.T) {
	s := newTestServer(t, nil)

	targets := []string{
		"/api/trends/dates",
		"/api/trends/markets?date=2026-08-25",
		"/api/trends?date=2026-08-25",
		"/api/new-highs?date=2026-08-25",
		"/api/event-study?date=2026-08-25",
	}
	for _, target := range targets {
		if rec := doRequest(t, s, http.MethodGet, target); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", target, rec.Code)
		}
	}
}

func TestQueryValidation(t *testing.T) {
	s := newTestServer(t, nil)

	// Validation runs before the persistence guard, so a disabled
	// store still yields 400 for a bad query.
	targets := []string{
		"/api/trends/markets",
		"/api/trends/markets?date=tomorrow",
		"/api/trends?date=2026-8-25",
		"/api/trends?date=2026-08-25&interval_minutes=abc",
		"/api/trends?date=2026-08-25&interval_minutes=0",
		"/api/trends?date=2026-08-25&mode=linear",
		"/api/new-highs",
		"/api/event-study?date=2026-08-25&pre_minutes=0",
		"/api/event-study?date=2026-08-25&high_c=warm",
	}
	for _, target := range targets {
		if rec := doRequest(t, s, http.MethodGet, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", target, rec.Code)
		}
	}
}
