// Package health tracks the last outcome of each ingestion source.
package health

import (
	"sync"
	"time"

	"github.com/jwpark/polytemp/internal/model"
)

// maxErrorLen caps stored error messages so one giant upstream body
// cannot bloat every health snapshot.
const maxErrorLen = 500

// Monitor records per-source success/failure timestamps.
type Monitor struct {
	mu      sync.RWMutex
	entries map[string]model.SourceHealth
}

// NewMonitor seeds the monitor with the given source names so a source
// that has never run still appears in snapshots.
func NewMonitor(sources ...string) *Monitor {
	entries := make(map[string]model.SourceHealth, len(sources))
	for _, s := range sources {
		entries[s] = model.SourceHealth{}
	}
	return &Monitor{entries: entries}
}

// Success marks a source healthy: it stamps lastSuccessAt and clears
// any previous error.
func (m *Monitor) Success(source string) {
	now := time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[source]
	e.LastSuccessAt = &now
	e.LastErrorAt = nil
	e.LastError = ""
	m.entries[source] = e
}

// Failure records an error for a source. The previous lastSuccessAt is
// preserved so staleness stays observable.
func (m *Monitor) Failure(source string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	now := time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[source]
	e.LastErrorAt = &now
	e.LastError = msg
	m.entries[source] = e
}

// Snapshot returns a copy of all entries.
func (m *Monitor) Snapshot() map[string]model.SourceHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]model.SourceHealth, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

// Healthy reports whether no source currently has an unresolved error.
func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.LastError != "" {
			return false
		}
	}
	return true
}
