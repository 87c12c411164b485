// Package buckets classifies whole-degree temperatures into the market
// buckets of an event.
package buckets

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jwpark/polytemp/internal/model"
)

var celsiusRe = regexp.MustCompile(`(-?\d+)\s*°\s*C`)

// ParseBounds extracts inclusive celsius bounds from a bucket title.
// "24°C or below" yields an open lower side, "30°C or higher" an open
// upper side, and a bare "27°C" an exact single-degree bucket.
func ParseBounds(title string) (lower, upper *int) {
	m := celsiusRe.FindStringSubmatch(title)
	if m == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, nil
	}
	lowered := strings.ToLower(title)
	switch {
	case strings.Contains(lowered, "or below"):
		return nil, &v
	case strings.Contains(lowered, "or higher"):
		return &v, nil
	default:
		return &v, &v
	}
}

// Match reports whether the whole-degree temperature falls inside the
// market's bucket.
func Match(m model.Market, highC int) bool {
	return MatchBounds(m.LowerBoundC, m.UpperBoundC, highC)
}

// MatchBounds reports whether highC falls inside the inclusive bounds.
// A nil bound is open; with both bounds nil nothing matches.
func MatchBounds(lower, upper *int, highC int) bool {
	if lower == nil && upper == nil {
		return false
	}
	if lower != nil && highC < *lower {
		return false
	}
	if upper != nil && highC > *upper {
		return false
	}
	return true
}

// Sort orders markets by threshold ascending, keeping unthresholded
// markets last in their original relative order.
func Sort(markets []model.Market) []model.Market {
	out := make([]model.Market, len(markets))
	copy(out, markets)
	sort.SliceStable(out, func(a, b int) bool {
		ta, tb := out[a].ThresholdC, out[b].ThresholdC
		switch {
		case ta != nil && tb != nil:
			return *ta < *tb
		case ta != nil:
			return true
		default:
			return false
		}
	})
	return out
}

// Resolve returns the id of the market whose bucket contains highC.
// With no temperature, or when no bucket matches, it falls back to the
// middle bucket of the threshold-sorted list. Empty input yields "".
func Resolve(markets []model.Market, highC *int) string {
	if len(markets) == 0 {
		return ""
	}
	if highC != nil {
		for _, m := range markets {
			if Match(m, *highC) {
				return m.GammaID
			}
		}
	}
	ordered := Sort(markets)
	return ordered[len(ordered)/2].GammaID
}
