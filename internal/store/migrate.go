package store

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist. A disabled client
// returns immediately.
func (c *Client) Migrate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS weather_metar_obs (
			id BIGSERIAL PRIMARY KEY,
			station TEXT NOT NULL,
			source TEXT NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL,
			temp_c DOUBLE PRECISION NOT NULL,
			dewpoint_c DOUBLE PRECISION,
			wind_dir_deg INTEGER,
			wind_speed_kt DOUBLE PRECISION,
			wind_gust_kt DOUBLE PRECISION,
			pressure_hpa DOUBLE PRECISION,
			visibility TEXT,
			flight_category TEXT,
			raw_text TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (station, source, observed_at)
		)`,

		`CREATE TABLE IF NOT EXISTS weather_wu_obs (
			id BIGSERIAL PRIMARY KEY,
			station TEXT NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL,
			temp_c DOUBLE PRECISION NOT NULL,
			source_url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (station, observed_at)
		)`,

		`CREATE TABLE IF NOT EXISTS weather_day_high_changes (
			id BIGSERIAL PRIMARY KEY,
			station TEXT NOT NULL,
			source TEXT NOT NULL,
			date_local DATE NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL,
			previous_high_celsius INTEGER,
			high_celsius INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (station, source, date_local, high_celsius)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_day_high_changes_date
			ON weather_day_high_changes (date_local, observed_at)`,

		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			date_local DATE NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			gamma_event_id TEXT NOT NULL,
			title TEXT,
			last_seen_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_date ON events (date_local)`,

		`CREATE TABLE IF NOT EXISTS event_markets (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			gamma_market_id TEXT NOT NULL,
			condition_id TEXT,
			market_slug TEXT,
			question TEXT,
			group_item_title TEXT,
			group_item_threshold INTEGER,
			lower_bound_celsius INTEGER,
			upper_bound_celsius INTEGER,
			yes_token_id TEXT NOT NULL,
			no_token_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (event_id, gamma_market_id)
		)`,

		`CREATE TABLE IF NOT EXISTS market_snapshots (
			id BIGSERIAL PRIMARY KEY,
			captured_at TIMESTAMPTZ NOT NULL,
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			market_id UUID NOT NULL REFERENCES event_markets(id) ON DELETE CASCADE,
			accepting_orders BOOLEAN,
			yes_best_bid DOUBLE PRECISION,
			yes_best_ask DOUBLE PRECISION,
			no_best_bid DOUBLE PRECISION,
			no_best_ask DOUBLE PRECISION,
			yes_bid_size DOUBLE PRECISION,
			yes_ask_size DOUBLE PRECISION,
			no_bid_size DOUBLE PRECISION,
			no_ask_size DOUBLE PRECISION,
			volume24h DOUBLE PRECISION,
			source TEXT NOT NULL,
			UNIQUE (market_id, captured_at)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_market_snapshots_event
			ON market_snapshots (event_id, captured_at)`,

		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id UUID PRIMARY KEY,
			model TEXT NOT NULL,
			station TEXT NOT NULL,
			run_at TIMESTAMPTZ NOT NULL,
			source TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS forecast_hourly (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES forecast_runs(id) ON DELETE CASCADE,
			valid_at TIMESTAMPTZ NOT NULL,
			temp_c DOUBLE PRECISION NOT NULL,
			UNIQUE (run_id, valid_at)
		)`,
	}

	for _, stmt := range migrations {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
