// Package marketday holds the civil-date math for a daily market:
// which local date a wall-clock instant belongs to, the market-group
// slug for that date, and the anchor axis spanning it.
package marketday

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// DateOf returns the civil date of t in loc.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseDate parses a civil date into local midnight.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// Slug builds the market-group slug for the local date of t,
// e.g. "highest-temperature-in-seoul-on-august-25". The month is the
// lowercase full name and the day carries no leading zero.
func Slug(prefix string, t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("%s-%s-%d", prefix, strings.ToLower(local.Month().String()), local.Day())
}

// HistoryDatePath formats the local date the way daily-history URLs
// expect: year-month-day with no zero padding ("2026-8-5").
func HistoryDatePath(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return fmt.Sprintf("%d-%d-%d", local.Year(), int(local.Month()), local.Day())
}

// DayBounds returns the UTC half-open interval [start, end) covering
// the civil date in loc.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	// AddDate follows DST transitions; the local day may not be 24h.
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC(), nil
}

// DayAxis returns the anchor grid for the civil date: local midnight
// inclusive up to (not including) the next midnight, at a fixed step.
func DayAxis(date string, loc *time.Location, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("day axis step must be positive, got %s", step)
	}
	start, err := ParseDate(date, loc)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 0, 1)
	var anchors []time.Time
	for t := start; t.Before(end); t = t.Add(step) {
		anchors = append(anchors, t)
	}
	return anchors, nil
}
