package config

import (
	"time"
)

// Config is the root configuration for a collector instance.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Sources     SourcesConfig     `yaml:"sources"`
	TTL         TTLConfig         `yaml:"ttl"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Database    DBConfig          `yaml:"database"`
	Server      ServerConfig      `yaml:"server"`
	Ingestion   IngestionConfig   `yaml:"ingestion"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServiceConfig identifies the station and market group this instance
// collects.
type ServiceConfig struct {
	Name       string  `yaml:"name"`
	Station    string  `yaml:"station"`     // ICAO station id, e.g. "RKSI"
	Timezone   string  `yaml:"timezone"`    // IANA name, e.g. "Asia/Seoul"
	SlugPrefix string  `yaml:"slug_prefix"` // Market-group slug prefix
	Latitude   float64 `yaml:"latitude"`
	Longitude  float64 `yaml:"longitude"`
}

// SourcesConfig holds upstream endpoints and HTTP settings.
type SourcesConfig struct {
	GammaURL        string `yaml:"gamma_url"`
	ClobURL         string `yaml:"clob_url"`
	DataURL         string `yaml:"data_url"`
	AWCURL          string `yaml:"awc_url"`
	WundergroundURL string `yaml:"wunderground_url"`
	// WundergroundHistoryPath is the station-specific history path; the
	// unpadded local date is appended ("/history/daily/kr/incheon/RKSI/date").
	WundergroundHistoryPath string        `yaml:"wunderground_history_path"`
	OpenMeteoURL            string        `yaml:"openmeteo_url"`
	ForecastModels          []string      `yaml:"forecast_models"`
	ForecastDays            int           `yaml:"forecast_days"`
	HTTPTimeout             time.Duration `yaml:"http_timeout"`
	ClobRateLimit           float64       `yaml:"clob_rate_limit"` // order-book requests per second
	ClobRateBurst           int           `yaml:"clob_rate_burst"`
}

// TTLConfig paces the ingestion loops. Each loop sleeps
// max(0, ttl - elapsed) between cycles.
type TTLConfig struct {
	Market       time.Duration `yaml:"market"`
	Event        time.Duration `yaml:"event"` // must be >= market
	AWC          time.Duration `yaml:"awc"`
	Wunderground time.Duration `yaml:"wunderground"`
	Forecast     time.Duration `yaml:"forecast"`
	Portfolio    time.Duration `yaml:"portfolio"`
}

// CredentialsConfig holds optional account credentials. All empty is a
// valid configuration: portfolio features silently return nothing.
type CredentialsConfig struct {
	UserAddress   string `yaml:"user_address"`
	APIKey        string `yaml:"api_key"`
	APISecret     string `yaml:"api_secret"`
	APIPassphrase string `yaml:"api_passphrase"`
}

// DBConfig holds the persistence connection. Disabled means every
// store operation is a no-op.
type DBConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	WSPushInterval time.Duration `yaml:"ws_push_interval"`
}

// IngestionConfig controls which source loops run.
type IngestionConfig struct {
	// DisabledSources names loops to skip: "market", "awc",
	// "wunderground", "forecast", "portfolio". The event fetch rides
	// the market loop and cannot be disabled on its own.
	DisabledSources []string `yaml:"disabled_sources"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SourceDisabled reports whether a named source loop is disabled.
func (c IngestionConfig) SourceDisabled(name string) bool {
	for _, s := range c.DisabledSources {
		if s == name {
			return true
		}
	}
	return false
}

// Location resolves the configured market timezone.
func (c ServiceConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
