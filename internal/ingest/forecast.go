package ingest

import (
	"context"
	"time"
)

// ingestForecast is the hourly-forecast cycle.
func (ing *Ingestor) ingestForecast(ctx context.Context) error {
	forecast, err := ing.weather.Forecast(ctx)
	if err != nil {
		return err
	}

	fetchedAt := ing.now().UTC()
	ing.state.SetForecast(forecast, fetchedAt)
	ing.persistForecast(ctx, forecast, fetchedAt)
	return nil
}

// parseForecastTime parses a forecast timestamp. The hourly axis comes
// back naive in the requested timezone; an explicit offset wins when
// present.
func parseForecastTime(ts string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", ts, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
