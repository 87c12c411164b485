// Package state holds the latest value from every ingestion source
// behind one mutex.
//
// Writers replace whole values; readers copy out. Rows are treated as
// immutable once stored, so slice clones are shallow. The mutex is
// never held across I/O.
package state

import (
	"slices"
	"sync"
	"time"

	"github.com/jwpark/polytemp/internal/model"
)

// Store is the in-memory shared state.
type Store struct {
	mu sync.Mutex

	slug           string
	event          *model.Event
	eventFetchedAt time.Time
	outcomes       []model.Outcome
	outcomesSetAt  time.Time

	observations []model.Observation
	history      *model.StationHistory

	forecast          *model.Forecast
	forecastFetchedAt time.Time

	balance   *model.Balance
	positions []model.Position
}

// Snapshot is a consistent copy of everything, taken under one lock
// acquisition.
type Snapshot struct {
	Slug              string
	Event             *model.Event
	EventFetchedAt    time.Time
	Outcomes          []model.Outcome
	OutcomesSetAt     time.Time
	Observations      []model.Observation
	History           *model.StationHistory
	Forecast          *model.Forecast
	ForecastFetchedAt time.Time
	Balance           *model.Balance
	Positions         []model.Position
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// EnsureSlug switches the store to the given market-group slug. On a
// change it atomically clears the per-day market state (event,
// outcomes) and reports true.
func (s *Store) EnsureSlug(slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slug == slug {
		return false
	}
	s.slug = slug
	s.event = nil
	s.eventFetchedAt = time.Time{}
	s.outcomes = nil
	s.outcomesSetAt = time.Time{}
	return true
}

// Slug returns the current market-group slug.
func (s *Store) Slug() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slug
}

// Event returns the cached event and when it was fetched. The event
// may be nil either before the first fetch or when the day has no
// event listed; a non-zero fetch time distinguishes the latter.
func (s *Store) Event() (*model.Event, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event, s.eventFetchedAt
}

// SetEvent stores the event (nil is a valid "no event listed" result).
func (s *Store) SetEvent(ev *model.Event, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.event = ev
	s.eventFetchedAt = fetchedAt
}

// Outcomes returns the current dashboard rows.
func (s *Store) Outcomes() ([]model.Outcome, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.outcomes), s.outcomesSetAt
}

// SetOutcomes replaces the dashboard rows.
func (s *Store) SetOutcomes(outcomes []model.Outcome, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = slices.Clone(outcomes)
	s.outcomesSetAt = at
}

// Observations returns the current chronological reading list.
func (s *Store) Observations() []model.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.observations)
}

// SetObservations replaces the reading list.
func (s *Store) SetObservations(obs []model.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observations = slices.Clone(obs)
}

// History returns the latest scrape result.
func (s *Store) History() *model.StationHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// SetHistory stores a scrape result.
func (s *Store) SetHistory(h *model.StationHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = h
}

// Forecast returns the latest forecast and when it was fetched.
func (s *Store) Forecast() (*model.Forecast, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forecast, s.forecastFetchedAt
}

// SetForecast stores a forecast.
func (s *Store) SetForecast(f *model.Forecast, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecast = f
	s.forecastFetchedAt = fetchedAt
}

// Portfolio returns the latest balance and positions.
func (s *Store) Portfolio() (*model.Balance, []model.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, slices.Clone(s.positions)
}

// SetPortfolio replaces the portfolio snapshot.
func (s *Store) SetPortfolio(b *model.Balance, positions []model.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = b
	s.positions = slices.Clone(positions)
}

// Snapshot copies the whole store in a single lock acquisition.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Slug:              s.slug,
		Event:             s.event,
		EventFetchedAt:    s.eventFetchedAt,
		Outcomes:          slices.Clone(s.outcomes),
		OutcomesSetAt:     s.outcomesSetAt,
		Observations:      slices.Clone(s.observations),
		History:           s.history,
		Forecast:          s.forecast,
		ForecastFetchedAt: s.forecastFetchedAt,
		Balance:           s.balance,
		Positions:         slices.Clone(s.positions),
	}
}
