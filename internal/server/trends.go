package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jwpark/polytemp/internal/buckets"
	"github.com/jwpark/polytemp/internal/dayhigh"
	"github.com/jwpark/polytemp/internal/marketday"
	"github.com/jwpark/polytemp/internal/store"
	"github.com/jwpark/polytemp/internal/timeseries"
)

func (s *Server) handleTrendDates(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	dates, err := s.store.EventDates(r.Context(), 0)
	if err != nil {
		s.logger.Warn("trend dates query failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	seen := make(map[string]bool, len(dates))
	distinct := make([]string, 0, len(dates))
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			distinct = append(distinct, d)
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"dates": distinct})
}

type trendMarketsQuery struct {
	Date string `validate:"required,datetime=2006-01-02"`
}

func (s *Server) handleTrendMarkets(w http.ResponseWriter, r *http.Request) {
	q := trendMarketsQuery{Date: r.URL.Query().Get("date")}
	if err := validate.Struct(q); err != nil {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if !s.requireStore(w) {
		return
	}

	ctx := r.Context()
	event, markets, ok := s.eventWithMarkets(ctx, w, q.Date)
	if !ok {
		return
	}

	highC, err := s.computeDayHigh(ctx, q.Date)
	if err != nil {
		s.logger.Warn("day high query failed", "date", q.Date, "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"date_local":        q.Date,
		"slug":              event.Slug,
		"event_id":          event.ID,
		"day_high_c":        highC,
		"default_market_id": defaultMarketID(markets, highC),
		"markets":           markets,
	})
}

type trendsQuery struct {
	Date            string `validate:"required,datetime=2006-01-02"`
	MarketID        string
	Start           string `validate:"required"`
	End             string `validate:"required"`
	IntervalMinutes int    `validate:"min=1,max=240"`
	Mode            string `validate:"oneof=closest carry"`
}

type trendPoint struct {
	AnchorLocal     string   `json:"anchor_local"`
	AnchorUTC       string   `json:"anchor_utc"`
	CapturedAt      *string  `json:"captured_at"`
	TempC           *float64 `json:"temp_c"`
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

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	q, err := bindTrendsQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.requireStore(w) {
		return
	}

	ctx := r.Context()
	event, markets, ok := s.eventWithMarkets(ctx, w, q.Date)
	if !ok {
		return
	}

	marketID := q.MarketID
	if marketID == "" {
		highC, err := s.computeDayHigh(ctx, q.Date)
		if err != nil {
			s.logger.Warn("day high query failed", "date", q.Date, "error", err)
			s.writeError(w, http.StatusInternalServerError, "query failed")
			return
		}
		marketID = defaultMarketID(markets, highC)
	}
	if marketID == "" {
		s.writeError(w, http.StatusNotFound, "market not found")
		return
	}

	start, err := localDayTime(q.Date, q.Start, s.loc)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := localDayTime(q.Date, q.End, s.loc)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !end.After(start) {
		s.writeError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	snapshots, err := s.store.SnapshotsForMarket(ctx, marketID, start.UTC(), end.UTC())
	if err != nil {
		s.logger.Warn("snapshot query failed", "market_id", marketID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	anchors := timeseries.AnchorRange(start, end, time.Duration(q.IntervalMinutes)*time.Minute)
	mode, _ := timeseries.ParseMode(q.Mode)

	aligned := timeseries.AlignRecords(snapshots,
		func(r store.SnapshotRow) time.Time { return r.CapturedAt },
		anchors, mode)

	temps, tempSource, err := s.tempSeries(ctx, q.Date, anchors)
	if err != nil {
		s.logger.Warn("temperature query failed", "date", q.Date, "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	series := make([]trendPoint, 0, len(anchors))
	missing := 0
	for i, anchor := range anchors {
		point := trendPoint{
			AnchorLocal: anchor.In(s.loc).Format("15:04"),
			AnchorUTC:   anchor.UTC().Format(time.RFC3339),
			TempC:       temps[i],
		}
		if row := aligned[i]; row != nil {
			fillPoint(&point, row)
		} else {
			missing++
		}
		series = append(series, point)
	}

	var marketLabel string
	for _, m := range markets {
		if m.ID == marketID {
			marketLabel = m.GroupItemTitle
			break
		}
	}

	coverage := map[string]any{
		"snapshots":        len(snapshots),
		"first_snapshot":   nil,
		"last_snapshot":    nil,
		"resampled_points": len(series),
		"missing_points":   missing,
	}
	if len(snapshots) > 0 {
		coverage["first_snapshot"] = snapshots[0].CapturedAt.UTC().Format(time.RFC3339)
		coverage["last_snapshot"] = snapshots[len(snapshots)-1].CapturedAt.UTC().Format(time.RFC3339)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"meta": map[string]any{
			"date_local":       q.Date,
			"slug":             event.Slug,
			"event_id":         event.ID,
			"market_id":        marketID,
			"market_label":     marketLabel,
			"temp_source":      tempSource,
			"timezone":         s.loc.String(),
			"interval_minutes": q.IntervalMinutes,
			"start_local":      q.Start,
			"end_local":        q.End,
			"mode":             q.Mode,
		},
		"coverage": coverage,
		"series":   series,
	})
}

func bindTrendsQuery(r *http.Request) (trendsQuery, error) {
	values := r.URL.Query()
	q := trendsQuery{
		Date:            values.Get("date"),
		MarketID:        values.Get("market_id"),
		Start:           values.Get("start"),
		End:             values.Get("end"),
		IntervalMinutes: 15,
		Mode:            "closest",
	}
	if q.Start == "" {
		q.Start = "00:00"
	}
	if q.End == "" {
		q.End = "24:00"
	}
	if raw := values.Get("interval_minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("interval_minutes must be an integer")
		}
		q.IntervalMinutes = n
	}
	if raw := values.Get("mode"); raw != "" {
		q.Mode = raw
	}
	if err := validate.Struct(q); err != nil {
		return q, fmt.Errorf("invalid query: %v", err)
	}
	return q, nil
}

// eventWithMarkets loads the persisted event and its market catalog,
// writing the error response itself when the lookup fails.
func (s *Server) eventWithMarkets(ctx context.Context, w http.ResponseWriter, date string) (*store.EventRow, []store.MarketRow, bool) {
	event, err := s.store.EventForDate(ctx, date)
	if err != nil {
		s.logger.Warn("event query failed", "date", date, "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return nil, nil, false
	}
	if event == nil {
		s.writeError(w, http.StatusNotFound, "no event for date")
		return nil, nil, false
	}

	markets, err := s.store.MarketsForEvent(ctx, event.ID)
	if err != nil {
		s.logger.Warn("market query failed", "event_id", event.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "query failed")
		return nil, nil, false
	}
	return event, markets, true
}

// computeDayHigh resolves the day's running high: the latest persisted
// change record, else the maximum persisted observation.
func (s *Server) computeDayHigh(ctx context.Context, date string) (*int, error) {
	changes, err := s.store.DayHighChanges(ctx, s.cfg.Service.Station, date)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		h := changes[len(changes)-1].HighC
		return &h, nil
	}

	from, to, err := marketday.DayBounds(date, s.loc)
	if err != nil {
		return nil, err
	}
	obs, err := s.store.TempObservations(ctx, s.cfg.Service.Station, "", from, to)
	if err != nil {
		return nil, err
	}
	temps := make([]float64, 0, len(obs))
	for _, o := range obs {
		temps = append(temps, o.TempC)
	}
	return dayhigh.ComputeHigh(temps), nil
}

// defaultMarketID picks the market whose bucket holds the day high,
// falling back to the middle of the threshold-ordered catalog.
func defaultMarketID(markets []store.MarketRow, highC *int) string {
	if len(markets) == 0 {
		return ""
	}
	if highC != nil {
		for _, m := range markets {
			if buckets.MatchBounds(m.LowerBoundC, m.UpperBoundC, *highC) {
				return m.ID
			}
		}
	}
	return markets[len(markets)/2].ID
}

// tempSeries carries the day's persisted temperatures onto the anchor
// grid. An empty day yields a nil-filled series and no source tag.
func (s *Server) tempSeries(ctx context.Context, date string, anchors []time.Time) ([]*float64, string, error) {
	from, to, err := marketday.DayBounds(date, s.loc)
	if err != nil {
		return nil, "", err
	}
	obs, err := s.store.TempObservations(ctx, s.cfg.Service.Station, "awc", from, to)
	if err != nil {
		return nil, "", err
	}
	if len(obs) == 0 {
		return make([]*float64, len(anchors)), "", nil
	}

	aligned := timeseries.AlignRecords(obs,
		func(o store.TempObsRow) time.Time { return o.ObservedAt },
		anchors, timeseries.Carry)
	out := make([]*float64, len(anchors))
	for i, rec := range aligned {
		if rec != nil {
			t := rec.TempC
			out[i] = &t
		}
	}
	return out, "awc", nil
}

// localDayTime resolves "HH:MM" against a local date; "24:00" means
// midnight of the next day.
func localDayTime(date, hhmm string, loc *time.Location) (time.Time, error) {
	day, err := marketday.ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}

	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("time %q must be HH:MM", hhmm)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("time %q must be HH:MM", hhmm)
	}
	if hour == 24 && minute == 0 {
		return day.AddDate(0, 0, 1), nil
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("time %q must be HH:MM", hhmm)
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}

func fillPoint(p *trendPoint, row *store.SnapshotRow) {
	ts := row.CapturedAt.UTC().Format(time.RFC3339)
	p.CapturedAt = &ts
	p.YesBestBid = row.YesBestBid
	p.YesBestAsk = row.YesBestAsk
	p.NoBestBid = row.NoBestBid
	p.NoBestAsk = row.NoBestAsk
	p.YesBidSize = row.YesBidSize
	p.YesAskSize = row.YesAskSize
	p.NoBidSize = row.NoBidSize
	p.NoAskSize = row.NoAskSize
	accepting := row.AcceptingOrders
	p.AcceptingOrders = &accepting
}
