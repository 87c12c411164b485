package dayhigh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jwpark/polytemp/internal/model"
)

// MaxLoader loads the last persisted whole-degree high for a
// (station, source, date), or nil when none was recorded.
type MaxLoader interface {
	LoadDayHigh(ctx context.Context, station, source, date string) (*float64, error)
}

type key struct {
	station string
	source  string
	date    string
}

// Tracker keeps per-date running maxima. The first time a date is
// touched the persisted high is loaded so a restart does not re-report
// old highs as new.
type Tracker struct {
	loader MaxLoader // may be nil
	logger *slog.Logger

	mu     sync.Mutex
	maxima map[key]float64
	loaded map[key]bool
}

// NewTracker creates a tracker. loader may be nil when persistence is
// not configured.
func NewTracker(loader MaxLoader, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		loader: loader,
		logger: logger,
		maxima: make(map[key]float64),
		loaded: make(map[key]bool),
	}
}

// Observe feeds one reading into the tracker. It returns a change
// record when the running maximum advanced by more than the float
// tolerance, nil otherwise. Maxima never decrease within a date.
func (t *Tracker) Observe(ctx context.Context, station, source, date string, observedAt time.Time, tempC float64) *model.DayHighChange {
	k := key{station: station, source: source, date: date}
	t.ensureLoaded(ctx, k)

	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.maxima[k]
	if ok && tempC <= cur+tolerance {
		return nil
	}

	change := &model.DayHighChange{
		Station:    station,
		Source:     source,
		LocalDate:  date,
		ObservedAt: observedAt,
		HighC:      Round(tempC),
	}
	if ok {
		prev := Round(cur)
		change.PreviousHighC = &prev
	}
	t.maxima[k] = tempC
	return change
}

// Current returns the running maximum for a date, if any.
func (t *Tracker) Current(station, source, date string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.maxima[key{station: station, source: source, date: date}]
	return v, ok
}

// ensureLoaded performs the lazy cold-start load. The store query runs
// outside the lock; a load error is treated as "no prior high".
func (t *Tracker) ensureLoaded(ctx context.Context, k key) {
	t.mu.Lock()
	if t.loaded[k] || t.loader == nil {
		if t.loader == nil {
			t.loaded[k] = true
		}
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	prior, err := t.loader.LoadDayHigh(ctx, k.station, k.source, k.date)
	if err != nil {
		t.logger.Warn("day high load failed, starting fresh",
			"station", k.station,
			"source", k.source,
			"date", k.date,
			"error", err,
		)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded[k] {
		return
	}
	t.loaded[k] = true
	if prior == nil {
		return
	}
	if cur, ok := t.maxima[k]; !ok || *prior > cur {
		t.maxima[k] = *prior
	}
}
