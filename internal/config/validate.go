package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Service.Station == "" {
		return errors.New("service.station is required")
	}
	if c.Service.SlugPrefix == "" {
		return errors.New("service.slug_prefix is required")
	}
	if c.Service.Timezone == "" {
		return errors.New("service.timezone is required")
	}
	if _, err := time.LoadLocation(c.Service.Timezone); err != nil {
		return fmt.Errorf("service.timezone %q is not a valid IANA name: %w", c.Service.Timezone, err)
	}
	if c.Service.Latitude < -90 || c.Service.Latitude > 90 {
		return errors.New("service.latitude must be within [-90, 90]")
	}
	if c.Service.Longitude < -180 || c.Service.Longitude > 180 {
		return errors.New("service.longitude must be within [-180, 180]")
	}

	if c.Sources.ForecastDays < 1 || c.Sources.ForecastDays > 16 {
		return errors.New("sources.forecast_days must be within [1, 16]")
	}
	if c.Sources.HTTPTimeout <= 0 {
		return errors.New("sources.http_timeout must be positive")
	}
	if c.Sources.ClobRateLimit <= 0 {
		return errors.New("sources.clob_rate_limit must be positive")
	}

	for name, ttl := range map[string]time.Duration{
		"ttl.market":       c.TTL.Market,
		"ttl.event":        c.TTL.Event,
		"ttl.awc":          c.TTL.AWC,
		"ttl.wunderground": c.TTL.Wunderground,
		"ttl.forecast":     c.TTL.Forecast,
		"ttl.portfolio":    c.TTL.Portfolio,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.TTL.Event < c.TTL.Market {
		return errors.New("ttl.event must be >= ttl.market")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return errors.New("database.host is required when database.enabled")
		}
		if c.Database.Name == "" {
			return errors.New("database.name is required when database.enabled")
		}
		if c.Database.User == "" {
			return errors.New("database.user is required when database.enabled")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return errors.New("database.min_conns must be <= database.max_conns")
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("server.port must be within [1, 65535]")
	}
	if c.Server.WSPushInterval <= 0 {
		return errors.New("server.ws_push_interval must be positive")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	for _, s := range c.Ingestion.DisabledSources {
		switch s {
		case "market", "awc", "wunderground", "forecast", "portfolio":
		default:
			return fmt.Errorf("ingestion.disabled_sources contains unknown source %q", s)
		}
	}

	return nil
}
