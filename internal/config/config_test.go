package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collector.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
service:
  name: test-collector
  station: RKSI
  timezone: Asia/Seoul
ttl:
  market: 10s
  event: 5m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "test-collector" {
		t.Errorf("service.name = %q", cfg.Service.Name)
	}
	if cfg.TTL.Market != 10*time.Second {
		t.Errorf("ttl.market = %v, want 10s", cfg.TTL.Market)
	}
	if cfg.TTL.Event != 5*time.Minute {
		t.Errorf("ttl.event = %v, want 5m", cfg.TTL.Event)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing file should fail")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeTempConfig(t, "service: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid yaml should fail")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")
	t.Setenv("TEST_API_KEY", "key-123")

	path := writeTempConfig(t, `
database:
  enabled: true
  host: localhost
  name: polytemp
  user: collector
  password: ${TEST_DB_PASSWORD}
credentials:
  api_key: ${TEST_API_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("database.password = %q, want expanded env value", cfg.Database.Password)
	}
	if cfg.Credentials.APIKey != "key-123" {
		t.Errorf("credentials.api_key = %q, want expanded env value", cfg.Credentials.APIKey)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempConfig(t, `
service:
  station: RKSI
`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}

	if cfg.Service.Timezone != DefaultTimezone {
		t.Errorf("timezone = %q, want default", cfg.Service.Timezone)
	}
	if cfg.Sources.GammaURL != DefaultGammaURL {
		t.Errorf("gamma_url = %q, want default", cfg.Sources.GammaURL)
	}
	if cfg.Sources.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("http_timeout = %v, want default", cfg.Sources.HTTPTimeout)
	}
	if cfg.TTL.Market != DefaultMarketTTL || cfg.TTL.Event != DefaultEventTTL {
		t.Errorf("ttls = %v/%v, want defaults", cfg.TTL.Market, cfg.TTL.Event)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("server.port = %d, want default", cfg.Server.Port)
	}
	if len(cfg.Sources.ForecastModels) != 3 {
		t.Errorf("forecast_models = %v, want defaults", cfg.Sources.ForecastModels)
	}
	if cfg.Database.Enabled {
		t.Error("database should default to disabled")
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempConfig(t, `
service:
  station: RKSI
`)
	if _, err := LoadAndValidate(path); err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}

	bad := writeTempConfig(t, `
service:
  station: RKSI
  timezone: Not/AZone
`)
	if _, err := LoadAndValidate(bad); err == nil {
		t.Error("LoadAndValidate() with bad timezone should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"missing station", func(c *Config) { c.Service.Station = "" }, "service.station"},
		{"bad timezone", func(c *Config) { c.Service.Timezone = "Mars/Olympus" }, "service.timezone"},
		{"bad latitude", func(c *Config) { c.Service.Latitude = 99 }, "service.latitude"},
		{"zero ttl", func(c *Config) { c.TTL.AWC = 0 }, "ttl.awc"},
		{"event ttl finer than market", func(c *Config) { c.TTL.Event = c.TTL.Market / 2 }, "ttl.event"},
		{"forecast days out of range", func(c *Config) { c.Sources.ForecastDays = 20 }, "forecast_days"},
		{"db enabled without host", func(c *Config) { c.Database.Enabled = true }, "database.host"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"unknown disabled source", func(c *Config) { c.Ingestion.DisabledSources = []string{"solar"} }, "disabled_sources"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSourceDisabled(t *testing.T) {
	ing := IngestionConfig{DisabledSources: []string{"portfolio"}}
	if !ing.SourceDisabled("portfolio") {
		t.Error("portfolio should be disabled")
	}
	if ing.SourceDisabled("market") {
		t.Error("market should not be disabled")
	}
}
