package ingest

import (
	"context"

	"github.com/jwpark/polytemp/internal/marketday"
	"github.com/jwpark/polytemp/internal/metrics"
)

// ingestObservations is the METAR cycle: fetch the lookback window,
// replace the shared reading list, persist idempotently.
func (ing *Ingestor) ingestObservations(ctx context.Context) error {
	obs, err := ing.weather.Metars(ctx, ing.cfg.Service.Station, metarLookbackHours)
	if err != nil {
		return err
	}

	ing.state.SetObservations(obs)
	ing.persistObservations(ctx, obs)
	return nil
}

// ingestHistory is the daily-history scrape cycle. The page's own day
// high is persisted as the "wunderground" source; the latest spot
// reading feeds the running maximum tracked under
// "wunderground_observed".
func (ing *Ingestor) ingestHistory(ctx context.Context) error {
	now := ing.now()
	history, err := ing.weather.History(ctx, ing.cfg.Service.Station, now)
	if err != nil {
		return err
	}

	ing.state.SetHistory(history)

	station := ing.cfg.Service.Station
	date := marketday.DateOf(now, ing.loc)
	ing.persistHistory(ctx, history, now.UTC())

	if history.DayHighC != nil {
		metrics.SetDayHigh(station, "wunderground", *history.DayHighC)
	}

	if history.Latest != nil {
		change := ing.tracker.Observe(ctx, station, "wunderground_observed", date,
			history.Latest.ObservedAt, history.Latest.TempC)
		if change != nil {
			metrics.SetDayHigh(station, "wunderground_observed", float64(change.HighC))
			ing.logger.Info("day high advanced",
				"station", station,
				"date", date,
				"high_c", change.HighC,
			)
			ing.persistDayHighChange(ctx, change)
		}
	}
	return nil
}
