package store

import (
	"context"
	"time"
)

// EventRow is one persisted market-group event.
type EventRow struct {
	ID           string
	Slug         string
	GammaEventID string
	Title        string
	DateLocal    string
}

// MarketRow is one persisted bucket market. The JSON names mirror the
// table columns: trend responses serve these rows as stored.
type MarketRow struct {
	ID             string `json:"id"`
	GammaMarketID  string `json:"gamma_market_id"`
	ConditionID    string `json:"condition_id"`
	Slug           string `json:"market_slug"`
	Question       string `json:"question"`
	GroupItemTitle string `json:"group_item_title"`
	ThresholdC     *int   `json:"group_item_threshold"`
	LowerBoundC    *int   `json:"lower_bound_celsius"`
	UpperBoundC    *int   `json:"upper_bound_celsius"`
	YesTokenID     string `json:"yes_token_id"`
	NoTokenID      string `json:"no_token_id"`
}

// SnapshotRow is one top-of-book capture for a market.
type SnapshotRow struct {
	CapturedAt      time.Time
	YesBestBid      *float64
	YesBestAsk      *float64
	NoBestBid       *float64
	NoBestAsk       *float64
	YesBidSize      *float64
	YesAskSize      *float64
	NoBidSize       *float64
	NoAskSize       *float64
	Volume24h       *float64
	AcceptingOrders bool
}

// ChangeRow is one day-high change record.
type ChangeRow struct {
	ObservedAt    time.Time
	PreviousHighC *int
	HighC         int
	Source        string
}

// TempObsRow is one temperature observation.
type TempObsRow struct {
	ObservedAt time.Time
	TempC      float64
	Source     string
}

// EventDates returns local dates with a persisted event, newest first.
func (c *Client) EventDates(ctx context.Context, limit int) ([]string, error) {
	rows, err := c.Select(ctx, "events",
		[]string{"date_local::text AS date_local"},
		nil,
		[]Order{{Column: "date_local", Desc: true}},
		limit,
	)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(rows))
	for _, r := range rows {
		if d := asString(r["date_local"]); d != "" {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

// EventForDate returns the event persisted for a local date, or nil.
func (c *Client) EventForDate(ctx context.Context, dateLocal string) (*EventRow, error) {
	rows, err := c.Select(ctx, "events",
		[]string{"id::text AS id", "slug", "gamma_event_id", "title", "date_local::text AS date_local"},
		[]Filter{Eq("date_local", dateLocal)},
		[]Order{{Column: "last_seen_at", Desc: true}},
		1,
	)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	r := rows[0]
	return &EventRow{
		ID:           asString(r["id"]),
		Slug:         asString(r["slug"]),
		GammaEventID: asString(r["gamma_event_id"]),
		Title:        asString(r["title"]),
		DateLocal:    asString(r["date_local"]),
	}, nil
}

// MarketsForEvent returns an event's bucket markets ordered by
// threshold, thresholdless rows last.
func (c *Client) MarketsForEvent(ctx context.Context, eventID string) ([]MarketRow, error) {
	rows, err := c.Select(ctx, "event_markets",
		[]string{
			"id::text AS id", "gamma_market_id", "condition_id", "market_slug",
			"question", "group_item_title", "group_item_threshold",
			"lower_bound_celsius", "upper_bound_celsius",
			"yes_token_id", "no_token_id",
		},
		[]Filter{Eq("event_id", eventID)},
		[]Order{{Column: "group_item_threshold"}, {Column: "gamma_market_id"}},
		0,
	)
	if err != nil {
		return nil, err
	}

	out := make([]MarketRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, MarketRow{
			ID:             asString(r["id"]),
			GammaMarketID:  asString(r["gamma_market_id"]),
			ConditionID:    asString(r["condition_id"]),
			Slug:           asString(r["market_slug"]),
			Question:       asString(r["question"]),
			GroupItemTitle: asString(r["group_item_title"]),
			ThresholdC:     asInt(r["group_item_threshold"]),
			LowerBoundC:    asInt(r["lower_bound_celsius"]),
			UpperBoundC:    asInt(r["upper_bound_celsius"]),
			YesTokenID:     asString(r["yes_token_id"]),
			NoTokenID:      asString(r["no_token_id"]),
		})
	}
	return out, nil
}

// SnapshotsForMarket returns a market's captures inside [from, to],
// oldest first. A zero to leaves the window open-ended.
func (c *Client) SnapshotsForMarket(ctx context.Context, marketID string, from, to time.Time) ([]SnapshotRow, error) {
	filters := []Filter{Eq("market_id", marketID), Gte("captured_at", from)}
	if !to.IsZero() {
		filters = append(filters, Lte("captured_at", to))
	}

	rows, err := c.Select(ctx, "market_snapshots",
		[]string{
			"captured_at", "yes_best_bid", "yes_best_ask", "no_best_bid", "no_best_ask",
			"yes_bid_size", "yes_ask_size", "no_bid_size", "no_ask_size",
			"volume24h", "accepting_orders",
		},
		filters,
		[]Order{{Column: "captured_at"}},
		0,
	)
	if err != nil {
		return nil, err
	}

	out := make([]SnapshotRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, SnapshotRow{
			CapturedAt:      asTime(r["captured_at"]),
			YesBestBid:      asFloat(r["yes_best_bid"]),
			YesBestAsk:      asFloat(r["yes_best_ask"]),
			NoBestBid:       asFloat(r["no_best_bid"]),
			NoBestAsk:       asFloat(r["no_best_ask"]),
			YesBidSize:      asFloat(r["yes_bid_size"]),
			YesAskSize:      asFloat(r["yes_ask_size"]),
			NoBidSize:       asFloat(r["no_bid_size"]),
			NoAskSize:       asFloat(r["no_ask_size"]),
			Volume24h:       asFloat(r["volume24h"]),
			AcceptingOrders: asBool(r["accepting_orders"]),
		})
	}
	return out, nil
}

// DayHighChanges returns the change log for a station and local date
// in observation order.
func (c *Client) DayHighChanges(ctx context.Context, station, dateLocal string) ([]ChangeRow, error) {
	rows, err := c.Select(ctx, "weather_day_high_changes",
		[]string{"observed_at", "previous_high_celsius", "high_celsius", "source"},
		[]Filter{Eq("station", station), Eq("date_local", dateLocal)},
		[]Order{{Column: "observed_at"}},
		0,
	)
	if err != nil {
		return nil, err
	}

	out := make([]ChangeRow, 0, len(rows))
	for _, r := range rows {
		high := asInt(r["high_celsius"])
		if high == nil {
			continue
		}
		out = append(out, ChangeRow{
			ObservedAt:    asTime(r["observed_at"]),
			PreviousHighC: asInt(r["previous_high_celsius"]),
			HighC:         *high,
			Source:        asString(r["source"]),
		})
	}
	return out, nil
}

// TempObservations returns a station's readings inside [from, to],
// oldest first. An empty source matches every source.
func (c *Client) TempObservations(ctx context.Context, station, source string, from, to time.Time) ([]TempObsRow, error) {
	filters := []Filter{Eq("station", station)}
	if source != "" {
		filters = append(filters, Eq("source", source))
	}
	filters = append(filters, Gte("observed_at", from))
	if !to.IsZero() {
		filters = append(filters, Lte("observed_at", to))
	}

	rows, err := c.Select(ctx, "weather_metar_obs",
		[]string{"observed_at", "temp_c", "source"},
		filters,
		[]Order{{Column: "observed_at"}},
		0,
	)
	if err != nil {
		return nil, err
	}

	out := make([]TempObsRow, 0, len(rows))
	for _, r := range rows {
		temp := asFloat(r["temp_c"])
		if temp == nil {
			continue
		}
		out = append(out, TempObsRow{
			ObservedAt: asTime(r["observed_at"]),
			TempC:      *temp,
			Source:     asString(r["source"]),
		})
	}
	return out, nil
}

// LoadDayHigh returns the highest persisted whole-degree high for a
// (station, source, date), or nil when none was recorded.
func (c *Client) LoadDayHigh(ctx context.Context, station, source, date string) (*float64, error) {
	rows, err := c.Select(ctx, "weather_day_high_changes",
		[]string{"high_celsius"},
		[]Filter{Eq("station", station), Eq("source", source), Eq("date_local", date)},
		[]Order{{Column: "high_celsius", Desc: true}},
		1,
	)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return asFloat(rows[0]["high_celsius"]), nil
}

// Row values surface from pgx with driver-dependent widths; these
// coercions narrow them at the query boundary.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case int32:
		f := float64(n)
		return &f
	}
	return nil
}

func asInt(v any) *int {
	switch n := v.(type) {
	case int64:
		i := int(n)
		return &i
	case int32:
		i := int(n)
		return &i
	case float64:
		i := int(n)
		return &i
	}
	return nil
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
