// Package timeseries aligns irregular records onto fixed anchor grids.
package timeseries

import (
	"fmt"
	"sort"
	"time"
)

// Mode selects how a record is chosen for an anchor.
type Mode int

const (
	// Carry picks the latest record at or before the anchor
	// (last observation carried forward).
	Carry Mode = iota
	// Closest picks the record nearest to the anchor on either side.
	// Ties favor the later record.
	Closest
)

// ParseMode parses the wire names "carry" and "closest".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "carry":
		return Carry, nil
	case "closest":
		return Closest, nil
	default:
		return 0, fmt.Errorf("unknown resample mode %q", s)
	}
}

func (m Mode) String() string {
	switch m {
	case Carry:
		return "carry"
	case Closest:
		return "closest"
	}
	return "unknown"
}

// Align returns, for each anchor, the index into times of the aligned
// record, or -1 when no record qualifies. The input need not be sorted
// and is not modified; records are sorted once per call and each anchor
// is resolved by binary search.
func Align(times []time.Time, anchors []time.Time, mode Mode) []int {
	out := make([]int, len(anchors))
	if len(times) == 0 {
		for i := range out {
			out[i] = -1
		}
		return out
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return times[order[a]].Before(times[order[b]])
	})
	sorted := make([]time.Time, len(times))
	for i, idx := range order {
		sorted[i] = times[idx]
	}

	for i, anchor := range anchors {
		out[i] = pick(sorted, order, anchor, mode)
	}
	return out
}

func pick(sorted []time.Time, order []int, anchor time.Time, mode Mode) int {
	switch mode {
	case Closest:
		// First record at or after the anchor.
		succ := sort.Search(len(sorted), func(i int) bool {
			return !sorted[i].Before(anchor)
		})
		pred := succ - 1
		switch {
		case succ == len(sorted):
			return order[pred]
		case pred < 0:
			return order[succ]
		default:
			dSucc := sorted[succ].Sub(anchor)
			dPred := anchor.Sub(sorted[pred])
			// On a tie the later record wins.
			if dPred < dSucc {
				return order[pred]
			}
			return order[succ]
		}
	default: // Carry
		// Last record at or before the anchor.
		idx := sort.Search(len(sorted), func(i int) bool {
			return sorted[i].After(anchor)
		}) - 1
		if idx < 0 {
			return -1
		}
		return order[idx]
	}
}

// AlignRecords aligns arbitrary records by their timestamps, returning
// one record copy (or nil) per anchor.
func AlignRecords[T any](records []T, at func(T) time.Time, anchors []time.Time, mode Mode) []*T {
	times := make([]time.Time, len(records))
	for i, r := range records {
		times[i] = at(r)
	}
	indices := Align(times, anchors, mode)
	out := make([]*T, len(anchors))
	for i, idx := range indices {
		if idx >= 0 {
			v := records[idx]
			out[i] = &v
		}
	}
	return out
}

// AnchorRange builds a strictly increasing grid from start to end
// inclusive at a fixed step.
func AnchorRange(start, end time.Time, step time.Duration) []time.Time {
	if step <= 0 || end.Before(start) {
		return nil
	}
	var anchors []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		anchors = append(anchors, t)
	}
	return anchors
}
