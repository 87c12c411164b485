package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwpark/polytemp/internal/dayhigh"
	"github.com/jwpark/polytemp/internal/metrics"
	"github.com/jwpark/polytemp/internal/model"
	"github.com/jwpark/polytemp/internal/store"
)

// Writes in this file are best-effort: a failure is counted, logged at
// debug level and dropped. Ingestion health never depends on the
// database.

func (ing *Ingestor) persistEventSnapshot(ctx context.Context, ev *model.Event, outcomes []model.Outcome, capturedAt time.Time) {
	if !ing.store.Enabled() || ev == nil || ev.GammaID == "" {
		return
	}

	eventRows, err := ing.store.Upsert(ctx, "events", []map[string]any{{
		"date_local":     ev.LocalDate,
		"slug":           ev.Slug,
		"gamma_event_id": ev.GammaID,
		"title":          ev.Title,
		"last_seen_at":   capturedAt,
	}}, []string{"slug"}, "id::text AS id")
	metrics.RecordPersist("events", err)
	if err != nil {
		ing.logger.Debug("persist events failed", "slug", ev.Slug, "error", err)
		return
	}
	if len(eventRows) == 0 {
		return
	}
	eventID := rowString(eventRows[0], "id")
	if eventID == "" {
		return
	}

	marketRows := make([]map[string]any, 0, len(ev.Markets))
	for _, m := range ev.Markets {
		if m.GammaID == "" || m.YesTokenID == "" || m.NoTokenID == "" {
			continue
		}
		marketRows = append(marketRows, map[string]any{
			"event_id":             eventID,
			"gamma_market_id":      m.GammaID,
			"condition_id":         m.ConditionID,
			"market_slug":          m.Slug,
			"question":             m.Question,
			"group_item_title":     m.GroupItemTitle,
			"group_item_threshold": m.ThresholdC,
			"lower_bound_celsius":  m.LowerBoundC,
			"upper_bound_celsius":  m.UpperBoundC,
			"yes_token_id":         m.YesTokenID,
			"no_token_id":          m.NoTokenID,
		})
	}
	if len(marketRows) > 0 {
		_, err = ing.store.Upsert(ctx, "event_markets", marketRows,
			[]string{"event_id", "gamma_market_id"})
		metrics.RecordPersist("event_markets", err)
		if err != nil {
			ing.logger.Debug("persist event markets failed", "slug", ev.Slug, "error", err)
			return
		}
	}

	idRows, err := ing.store.Select(ctx, "event_markets",
		[]string{"id::text AS id", "gamma_market_id"},
		[]store.Filter{store.Eq("event_id", eventID)},
		nil, 0,
	)
	if err != nil {
		ing.logger.Debug("load market row ids failed", "slug", ev.Slug, "error", err)
		return
	}
	idByGamma := make(map[string]string, len(idRows))
	for _, row := range idRows {
		if gammaID := rowString(row, "gamma_market_id"); gammaID != "" {
			idByGamma[gammaID] = rowString(row, "id")
		}
	}

	quotes := make(map[string]model.Outcome, len(outcomes))
	for _, o := range outcomes {
		quotes[o.MarketID] = o
	}

	snapRows := make([]map[string]any, 0, len(ev.Markets))
	for _, m := range ev.Markets {
		marketID := idByGamma[m.GammaID]
		outcome, ok := quotes[m.GammaID]
		if marketID == "" || !ok {
			continue
		}
		snapRows = append(snapRows, map[string]any{
			"captured_at":      capturedAt,
			"event_id":         eventID,
			"market_id":        marketID,
			"accepting_orders": m.AcceptingOrders,
			"yes_best_bid":     levelPrice(outcome.Yes.Bid),
			"yes_best_ask":     levelPrice(outcome.Yes.Ask),
			"no_best_bid":      levelPrice(outcome.No.Bid),
			"no_best_ask":      levelPrice(outcome.No.Ask),
			"yes_bid_size":     levelSize(outcome.Yes.Bid),
			"yes_ask_size":     levelSize(outcome.Yes.Ask),
			"no_bid_size":      levelSize(outcome.No.Bid),
			"no_ask_size":      levelSize(outcome.No.Ask),
			"volume24h":        m.Volume24h,
			"source":           "clob_orderbook",
		})
	}
	if len(snapRows) == 0 {
		return
	}
	_, err = ing.store.Upsert(ctx, "market_snapshots", snapRows,
		[]string{"market_id", "captured_at"})
	metrics.RecordPersist("market_snapshots", err)
	if err != nil {
		ing.logger.Debug("persist snapshots failed", "slug", ev.Slug, "error", err)
	}
}

func (ing *Ingestor) persistObservations(ctx context.Context, obs []model.Observation) {
	if !ing.store.Enabled() || len(obs) == 0 {
		return
	}

	rows := make([]map[string]any, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, map[string]any{
			"station":         o.Station,
			"source":          o.Source,
			"observed_at":     o.ObservedAt,
			"temp_c":          o.TempC,
			"dewpoint_c":      o.DewpointC,
			"wind_dir_deg":    o.WindDirDeg,
			"wind_speed_kt":   o.WindSpeedKt,
			"wind_gust_kt":    o.WindGustKt,
			"pressure_hpa":    o.PressureHpa,
			"visibility":      o.Visibility,
			"flight_category": o.FlightCategory,
			"raw_text":        o.RawText,
		})
	}

	_, err := ing.store.Upsert(ctx, "weather_metar_obs", rows,
		[]string{"station", "source", "observed_at"})
	metrics.RecordPersist("weather_metar_obs", err)
	if err != nil {
		ing.logger.Debug("persist metar failed", "error", err)
	}
}

func (ing *Ingestor) persistHistory(ctx context.Context, history *model.StationHistory, capturedAt time.Time) {
	if !ing.store.Enabled() || history == nil {
		return
	}

	if history.Latest != nil {
		_, err := ing.store.Upsert(ctx, "weather_wu_obs", []map[string]any{{
			"station":     history.Station,
			"observed_at": history.Latest.ObservedAt,
			"temp_c":      history.Latest.TempC,
			"source_url":  history.SourceURL,
		}}, []string{"station", "observed_at"})
		metrics.RecordPersist("weather_wu_obs", err)
		if err != nil {
			ing.logger.Debug("persist wu observation failed", "error", err)
		}
	}

	if history.DayHighC != nil {
		// The page's published high is re-upserted each scrape; the
		// conflict key makes the write idempotent per plateau.
		_, err := ing.store.Upsert(ctx, "weather_day_high_changes", []map[string]any{{
			"station":               history.Station,
			"source":                "wunderground",
			"date_local":            history.LocalDate,
			"observed_at":           capturedAt,
			"previous_high_celsius": nil,
			"high_celsius":          dayhigh.Round(*history.DayHighC),
		}}, []string{"station", "source", "date_local", "high_celsius"})
		metrics.RecordPersist("weather_day_high_changes", err)
		if err != nil {
			ing.logger.Debug("persist scraped high failed", "error", err)
		}
	}
}

func (ing *Ingestor) persistDayHighChange(ctx context.Context, change *model.DayHighChange) {
	if !ing.store.Enabled() || change == nil {
		return
	}

	_, err := ing.store.Upsert(ctx, "weather_day_high_changes", []map[string]any{{
		"station":               change.Station,
		"source":                change.Source,
		"date_local":            change.LocalDate,
		"observed_at":           change.ObservedAt,
		"previous_high_celsius": change.PreviousHighC,
		"high_celsius":          change.HighC,
	}}, []string{"station", "source", "date_local", "high_celsius"})
	metrics.RecordPersist("weather_day_high_changes", err)
	if err != nil {
		ing.logger.Debug("persist day high change failed", "error", err)
	}
}

// persistForecast writes one run row per model plus its hourly series,
// gated so a cached forecast is only written once.
func (ing *Ingestor) persistForecast(ctx context.Context, forecast *model.Forecast, fetchedAt time.Time) {
	if !ing.store.Enabled() || forecast == nil {
		return
	}

	ing.mu.Lock()
	last := ing.lastForecastPersist
	ing.mu.Unlock()
	if !fetchedAt.After(last) {
		return
	}

	runRows := make([]map[string]any, 0, len(forecast.Models))
	var hourlyRows []map[string]any
	for _, mdl := range forecast.Models {
		series := forecast.Hourly.TempCByModel[mdl]
		if series == nil {
			continue
		}
		runID := uuid.NewString()
		runRows = append(runRows, map[string]any{
			"id":      runID,
			"model":   mdl,
			"station": ing.cfg.Service.Station,
			"run_at":  fetchedAt,
			"source":  forecast.Provider,
		})
		for i, ts := range forecast.Hourly.Times {
			if i >= len(series) || series[i] == nil {
				continue
			}
			validAt, err := parseForecastTime(ts, ing.loc)
			if err != nil {
				continue
			}
			hourlyRows = append(hourlyRows, map[string]any{
				"run_id":   runID,
				"valid_at": validAt,
				"temp_c":   *series[i],
			})
		}
	}
	if len(runRows) == 0 {
		return
	}

	if _, err := ing.store.Insert(ctx, "forecast_runs", runRows); err != nil {
		metrics.RecordPersist("forecast_runs", err)
		ing.logger.Debug("persist forecast runs failed", "error", err)
		return
	}
	metrics.RecordPersist("forecast_runs", nil)

	_, err := ing.store.Insert(ctx, "forecast_hourly", hourlyRows)
	metrics.RecordPersist("forecast_hourly", err)
	if err != nil {
		ing.logger.Debug("persist forecast hourly failed", "error", err)
		return
	}

	ing.mu.Lock()
	if fetchedAt.After(ing.lastForecastPersist) {
		ing.lastForecastPersist = fetchedAt
	}
	ing.mu.Unlock()
}

func rowString(row map[string]any, col string) string {
	s, _ := row[col].(string)
	return s
}

func levelPrice(l *model.BookLevel) *float64 {
	if l == nil {
		return nil
	}
	return &l.Price
}

func levelSize(l *model.BookLevel) *float64 {
	if l == nil {
		return nil
	}
	return &l.Size
}
