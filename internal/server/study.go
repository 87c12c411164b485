package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jwpark/polytemp/internal/dayhigh"
	"github.com/jwpark/polytemp/internal/marketday"
	"github.com/jwpark/polytemp/internal/model"
	"github.com/jwpark/polytemp/internal/store"
	"github.com/jwpark/polytemp/internal/timeseries"
)

// highEvent is one day-high advance, persisted or replayed.
type highEvent struct {
	ObservedAt    time.Time
	PreviousHighC *int
	HighC         int
	Source        string
}

type newHighsQuery struct {
	Date string `validate:"required,datetime=2006-01-02"`
}

func (s *Server) handleNewHighs(w http.ResponseWriter, r *http.Request) {
	q := newHighsQuery{Date: r.URL.Query().Get("date")}
	if err := validate.Struct(q); err != nil {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if !s.requireStore(w) {
		return
	}

	events, err := s.newHighEvents(r.Context(), q.Date)
	if err != nil {
		s.logger.Warn("new-high query failed", "date", q.Date, "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	payload := make([]map[string]any, 0, len(events))
	for _, e := range events {
		payload = append(payload, map[string]any{
			"observed_at":           e.ObservedAt.UTC().Format(time.RFC3339),
			"observed_local":        e.ObservedAt.In(s.loc).Format("15:04"),
			"previous_high_celsius": e.PreviousHighC,
			"high_celsius":          e.HighC,
			"source":                e.Source,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"date_local": q.Date,
		"events":     payload,
	})
}

// newHighEvents returns the persisted change log for a date, or, when
// nothing was logged, the log replayed from the persisted observations.
func (s *Server) newHighEvents(ctx context.Context, date string) ([]highEvent, error) {
	station := s.cfg.Service.Station
	changes, err := s.store.DayHighChanges(ctx, station, date)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		events := make([]highEvent, 0, len(changes))
		for _, c := range changes {
			events = append(events, highEvent{
				ObservedAt:    c.ObservedAt,
				PreviousHighC: c.PreviousHighC,
				HighC:         c.HighC,
				Source:        c.Source,
			})
		}
		return events, nil
	}

	from, to, err := marketday.DayBounds(date, s.loc)
	if err != nil {
		return nil, err
	}
	obs, err := s.store.TempObservations(ctx, station, "awc", from, to)
	if err != nil {
		return nil, err
	}
	readings := make([]model.Observation, 0, len(obs))
	for _, o := range obs {
		readings = append(readings, model.Observation{
			Station:    station,
			Source:     o.Source,
			ObservedAt: o.ObservedAt,
			TempC:      o.TempC,
		})
	}

	events := make([]highEvent, 0)
	for _, c := range dayhigh.Replay(station, "awc", date, readings) {
		events = append(events, highEvent{
			ObservedAt:    c.ObservedAt,
			PreviousHighC: c.PreviousHighC,
			HighC:         c.HighC,
			Source:        c.Source,
		})
	}
	return events, nil
}

type eventStudyQuery struct {
	Date            string `validate:"required,datetime=2006-01-02"`
	HighC           *int
	PreMinutes      int    `validate:"min=1,max=720"`
	PostMinutes     int    `validate:"min=1,max=720"`
	IntervalMinutes int    `validate:"min=1,max=120"`
	Markets         string `validate:"required"`
	Mode            string `validate:"oneof=closest carry"`
}

type studyPoint struct {
	OffsetMinutes   int      `json:"offset_minutes"`
	AnchorUTC       string   `json:"anchor_utc"`
	AnchorLocal     string   `json:"anchor_local"`
	CapturedAt      *string  `json:"captured_at"`
	YesBestBid      *float64 `json:"yes_best_bid"`
	YesBestAsk      *float64 `json:"yes_best_ask"`
	NoBestBid       *float64 `json:"no_best_bid"`
	NoBestAsk       *float64 `json:"no_best_ask"`
	YesBidSize      *float64 `json:"yes_bid_size"`
	YesAskSize      *float64 `json:"yes_ask_size"`
	NoBidSize       *float64 `json:"no_bid_size"`
	NoAskSize       *float64 `json:"no_ask_size"`
	AcceptingOrders *bool    `json:"accepting_orders"`
}

func (s *Server) handleEventStudy(w http.ResponseWriter, r *http.Request) {
	q, err := bindEventStudyQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.requireStore(w) {
		return
	}

	ctx := r.Context()
	event, marketsAll, ok := s.eventWithMarkets(ctx, w, q.Date)
	if !ok {
		return
	}

	highs, err := s.newHighEvents(ctx, q.Date)
	if err != nil {
		s.logger.Warn("new-high query failed", "date", q.Date, "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if len(highs) == 0 {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"meta":   map[string]any{"date_local": q.Date},
			"event":  nil,
			"series": []any{},
		})
		return
	}

	selected := highs[len(highs)-1]
	if q.HighC != nil {
		for _, h := range highs {
			if h.HighC == *q.HighC {
				selected = h
				break
			}
		}
	}

	marketIDs := studyMarketIDs(q.Markets, marketsAll, selected.HighC)

	observedAt := selected.ObservedAt
	start := observedAt.Add(-time.Duration(q.PreMinutes) * time.Minute)
	end := observedAt.Add(time.Duration(q.PostMinutes) * time.Minute)

	var offsets []int
	var anchors []time.Time
	for off := -q.PreMinutes; off <= q.PostMinutes; off += q.IntervalMinutes {
		offsets = append(offsets, off)
		anchors = append(anchors, observedAt.Add(time.Duration(off)*time.Minute))
	}
	mode, _ := timeseries.ParseMode(q.Mode)

	series := make([]map[string]any, 0, len(marketIDs))
	for _, marketID := range marketIDs {
		snapshots, err := s.store.SnapshotsForMarket(ctx, marketID, start, end)
		if err != nil {
			s.logger.Warn("snapshot query failed", "market_id", marketID, "error", err)
			s.writeError(w, http.StatusInternalServerError, "query failed")
			return
		}
		aligned := timeseries.AlignRecords(snapshots,
			func(r store.SnapshotRow) time.Time { return r.CapturedAt },
			anchors, mode)

		points := make([]studyPoint, 0, len(anchors))
		for i, anchor := range anchors {
			point := studyPoint{
				OffsetMinutes: offsets[i],
				AnchorUTC:     anchor.UTC().Format(time.RFC3339),
				AnchorLocal:   anchor.In(s.loc).Format("15:04"),
			}
			if row := aligned[i]; row != nil {
				ts := row.CapturedAt.UTC().Format(time.RFC3339)
				point.CapturedAt = &ts
				point.YesBestBid = row.YesBestBid
				point.YesBestAsk = row.YesBestAsk
				point.NoBestBid = row.NoBestBid
				point.NoBestAsk = row.NoBestAsk
				point.YesBidSize = row.YesBidSize
				point.YesAskSize = row.YesAskSize
				point.NoBidSize = row.NoBidSize
				point.NoAskSize = row.NoAskSize
				accepting := row.AcceptingOrders
				point.AcceptingOrders = &accepting
			}
			points = append(points, point)
		}

		var label string
		for _, m := range marketsAll {
			if m.ID == marketID {
				label = m.GroupItemTitle
				break
			}
		}
		series = append(series, map[string]any{
			"market_id":    marketID,
			"market_label": label,
			"points":       points,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"meta": map[string]any{
			"date_local":       q.Date,
			"event_id":         event.ID,
			"slug":             event.Slug,
			"high_celsius":     selected.HighC,
			"observed_at":      observedAt.UTC().Format(time.RFC3339),
			"observed_local":   observedAt.In(s.loc).Format("15:04"),
			"pre_minutes":      q.PreMinutes,
			"post_minutes":     q.PostMinutes,
			"interval_minutes": q.IntervalMinutes,
			"mode":             q.Mode,
		},
		"event": map[string]any{
			"previous_high_celsius": selected.PreviousHighC,
			"high_celsius":          selected.HighC,
			"observed_at":           observedAt.UTC().Format(time.RFC3339),
			"observed_local":        observedAt.In(s.loc).Format("15:04"),
		},
		"series": series,
	})
}

// studyMarketIDs resolves the requested market tokens: "prev" and "new"
// select the buckets below and at the new high, anything else must be
// a market id from the event's catalog. Duplicates collapse in order.
func studyMarketIDs(tokens string, markets []store.MarketRow, highC int) []string {
	var ids []string
	for _, token := range strings.Split(tokens, ",") {
		token = strings.TrimSpace(token)
		switch token {
		case "":
		case "prev":
			prev := highC - 1
			if id := defaultMarketID(markets, &prev); id != "" {
				ids = append(ids, id)
			}
		case "new":
			if id := defaultMarketID(markets, &highC); id != "" {
				ids = append(ids, id)
			}
		default:
			for _, m := range markets {
				if m.ID == token {
					ids = append(ids, token)
					break
				}
			}
		}
	}

	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func bindEventStudyQuery(r *http.Request) (eventStudyQuery, error) {
	values := r.URL.Query()
	q := eventStudyQuery{
		Date:            values.Get("date"),
		PreMinutes:      60,
		PostMinutes:     120,
		IntervalMinutes: 5,
		Markets:         "prev,new",
		Mode:            "closest",
	}
	if raw := values.Get("high_c"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("high_c must be an integer")
		}
		q.HighC = &n
	}
	for name, dst := range map[string]*int{
		"pre_minutes":      &q.PreMinutes,
		"post_minutes":     &q.PostMinutes,
		"interval_minutes": &q.IntervalMinutes,
	} {
		if raw := values.Get(name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return q, fmt.Errorf("%s must be an integer", name)
			}
			*dst = n
		}
	}
	if raw := values.Get("markets"); raw != "" {
		q.Markets = raw
	}
	if raw := values.Get("mode"); raw != "" {
		q.Mode = raw
	}
	if err := validate.Struct(q); err != nil {
		return q, fmt.Errorf("invalid query: %v", err)
	}
	return q, nil
}
