// Package dayhigh maintains the running daily temperature maximum and
// the change log it produces.
package dayhigh

import (
	"math"
	"sort"

	"github.com/jwpark/polytemp/internal/model"
)

// tolerance guards against float jitter re-reporting the same maximum.
const tolerance = 1e-6

// Round rounds half away from zero: 0.5 -> 1, -0.5 -> -1.
func Round(v float64) int {
	if v >= 0 {
		return int(math.Floor(v + 0.5))
	}
	return int(math.Ceil(v - 0.5))
}

// ComputeHigh returns the whole-degree maximum of temps, or nil when
// there are no readings.
func ComputeHigh(temps []float64) *int {
	if len(temps) == 0 {
		return nil
	}
	max := temps[0]
	for _, v := range temps[1:] {
		if v > max {
			max = v
		}
	}
	h := Round(max)
	return &h
}

// Replay reconstructs the day-high change log from a set of readings,
// applied in chronological order. Unlike the live tracker it advances
// on whole degrees only: replayed changes feed whole-degree bucket
// selection, and sub-degree plateaus would read as no-op events.
func Replay(station, source, date string, readings []model.Observation) []model.DayHighChange {
	ordered := make([]model.Observation, len(readings))
	copy(ordered, readings)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].ObservedAt.Before(ordered[b].ObservedAt)
	})

	var changes []model.DayHighChange
	cur := 0
	seen := false
	for _, r := range ordered {
		whole := Round(r.TempC)
		if seen && whole <= cur {
			continue
		}
		change := model.DayHighChange{
			Station:    station,
			Source:     source,
			LocalDate:  date,
			ObservedAt: r.ObservedAt,
			HighC:      whole,
		}
		if seen {
			prev := cur
			change.PreviousHighC = &prev
		}
		changes = append(changes, change)
		cur = whole
		seen = true
	}
	return changes
}
