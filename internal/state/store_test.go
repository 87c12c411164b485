package state

import (
	"testing"
	"time"

	"github.com/jwpark/polytemp/internal/model"
)

func TestEnsureSlugResetsMarketState(t *testing.T) {
	s := New()
	now := time.Now()

	if !s.EnsureSlug("highest-temperature-in-seoul-on-august-25") {
		t.Fatal("first slug should report a change")
	}
	s.SetEvent(&model.Event{Slug: "highest-temperature-in-seoul-on-august-25"}, now)
	s.SetOutcomes([]model.Outcome{{MarketID: "m1"}}, now)

	if s.EnsureSlug("highest-temperature-in-seoul-on-august-25") {
		t.Error("same slug should not report a change")
	}
	if ev, _ := s.Event(); ev == nil {
		t.Fatal("same slug must keep the event")
	}

	// Date rollover.
	if !s.EnsureSlug("highest-temperature-in-seoul-on-august-26") {
		t.Fatal("new slug should report a change")
	}
	ev, fetchedAt := s.Event()
	if ev != nil || !fetchedAt.IsZero() {
		t.Error("rollover must clear the event")
	}
	if outcomes, _ := s.Outcomes(); len(outcomes) != 0 {
		t.Error("rollover must clear outcomes")
	}

	// Weather state survives the rollover.
	s.SetObservations([]model.Observation{{Station: "RKSI", TempC: 24}})
	s.EnsureSlug("highest-temperature-in-seoul-on-august-27")
	if len(s.Observations()) != 1 {
		t.Error("rollover must not clear observations")
	}
}

func TestNilEventWithFetchTime(t *testing.T) {
	s := New()
	now := time.Now()
	s.SetEvent(nil, now)
	ev, fetchedAt := s.Event()
	if ev != nil {
		t.Error("event should be nil")
	}
	if !fetchedAt.Equal(now) {
		t.Error("fetch time must be stored even for a nil event")
	}
}

func TestCopiesAreIndependent(t *testing.T) {
	s := New()
	s.SetOutcomes([]model.Outcome{{MarketID: "m1"}, {MarketID: "m2"}}, time.Now())

	outcomes, _ := s.Outcomes()
	outcomes[0].MarketID = "mutated"

	again, _ := s.Outcomes()
	if again[0].MarketID != "m1" {
		t.Error("mutating a returned slice affected the store")
	}

	obs := []model.Observation{{Station: "RKSI", TempC: 21}}
	s.SetObservations(obs)
	obs[0].TempC = 99
	if s.Observations()[0].TempC != 21 {
		t.Error("mutating the input slice affected the store")
	}
}

func TestSnapshot(t *testing.T) {
	s := New()
	now := time.Now()
	s.EnsureSlug("slug-a")
	s.SetEvent(&model.Event{Slug: "slug-a"}, now)
	s.SetOutcomes([]model.Outcome{{MarketID: "m1"}}, now)
	s.SetObservations([]model.Observation{{TempC: 22.5}})
	s.SetHistory(&model.StationHistory{Station: "RKSI"})
	s.SetForecast(&model.Forecast{Provider: "open-meteo"}, now)
	s.SetPortfolio(&model.Balance{Balance: "100"}, []model.Position{{Asset: "tok"}})

	snap := s.Snapshot()
	if snap.Slug != "slug-a" || snap.Event == nil || len(snap.Outcomes) != 1 ||
		len(snap.Observations) != 1 || snap.History == nil || snap.Forecast == nil ||
		snap.Balance == nil || len(snap.Positions) != 1 {
		t.Errorf("incomplete snapshot: %+v", snap)
	}

	snap.Outcomes[0].MarketID = "mutated"
	if fresh := s.Snapshot(); fresh.Outcomes[0].MarketID != "m1" {
		t.Error("snapshot shares memory with the store")
	}
}
