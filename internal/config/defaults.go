package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServiceName     = "polytemp-collector"
	DefaultStation         = "RKSI"
	DefaultTimezone        = "Asia/Seoul"
	DefaultSlugPrefix      = "highest-temperature-in-seoul-on"
	DefaultLatitude        = 37.469
	DefaultLongitude       = 126.451
	DefaultGammaURL        = "https://gamma-api.polymarket.com"
	DefaultClobURL         = "https://clob.polymarket.com"
	DefaultDataURL         = "https://data-api.polymarket.com"
	DefaultAWCURL          = "https://aviationweather.gov"
	DefaultWundergroundURL = "https://www.wunderground.com"
	DefaultWUHistoryPath   = "/history/daily/kr/incheon/RKSI/date"
	DefaultOpenMeteoURL    = "https://api.open-meteo.com"
	DefaultForecastDays    = 3
	DefaultHTTPTimeout     = 15 * time.Second
	DefaultClobRateLimit   = 8.0
	DefaultClobRateBurst   = 4
	DefaultMarketTTL       = 30 * time.Second
	DefaultEventTTL        = 15 * time.Minute
	DefaultAWCTTL          = 60 * time.Second
	DefaultWundergroundTTL = 5 * time.Minute
	DefaultForecastTTL     = 1 * time.Hour
	DefaultPortfolioTTL    = 15 * time.Minute
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultServerPort      = 8000
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultWSPushInterval  = 5 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// DefaultForecastModels are the hourly models requested from the
// forecast provider.
var DefaultForecastModels = []string{"kma_seamless", "kma_gdps", "kma_ldps"}

func (c *Config) applyDefaults() {
	// Service defaults
	if c.Service.Name == "" {
		c.Service.Name = DefaultServiceName
	}
	if c.Service.Station == "" {
		c.Service.Station = DefaultStation
	}
	if c.Service.Timezone == "" {
		c.Service.Timezone = DefaultTimezone
	}
	if c.Service.SlugPrefix == "" {
		c.Service.SlugPrefix = DefaultSlugPrefix
	}
	if c.Service.Latitude == 0 && c.Service.Longitude == 0 {
		c.Service.Latitude = DefaultLatitude
		c.Service.Longitude = DefaultLongitude
	}

	// Sources defaults
	if c.Sources.GammaURL == "" {
		c.Sources.GammaURL = DefaultGammaURL
	}
	if c.Sources.ClobURL == "" {
		c.Sources.ClobURL = DefaultClobURL
	}
	if c.Sources.DataURL == "" {
		c.Sources.DataURL = DefaultDataURL
	}
	if c.Sources.AWCURL == "" {
		c.Sources.AWCURL = DefaultAWCURL
	}
	if c.Sources.WundergroundURL == "" {
		c.Sources.WundergroundURL = DefaultWundergroundURL
	}
	if c.Sources.WundergroundHistoryPath == "" {
		c.Sources.WundergroundHistoryPath = DefaultWUHistoryPath
	}
	if c.Sources.OpenMeteoURL == "" {
		c.Sources.OpenMeteoURL = DefaultOpenMeteoURL
	}
	if len(c.Sources.ForecastModels) == 0 {
		c.Sources.ForecastModels = append([]string(nil), DefaultForecastModels...)
	}
	if c.Sources.ForecastDays == 0 {
		c.Sources.ForecastDays = DefaultForecastDays
	}
	if c.Sources.HTTPTimeout == 0 {
		c.Sources.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Sources.ClobRateLimit == 0 {
		c.Sources.ClobRateLimit = DefaultClobRateLimit
	}
	if c.Sources.ClobRateBurst == 0 {
		c.Sources.ClobRateBurst = DefaultClobRateBurst
	}

	// TTL defaults
	if c.TTL.Market == 0 {
		c.TTL.Market = DefaultMarketTTL
	}
	if c.TTL.Event == 0 {
		c.TTL.Event = DefaultEventTTL
	}
	if c.TTL.AWC == 0 {
		c.TTL.AWC = DefaultAWCTTL
	}
	if c.TTL.Wunderground == 0 {
		c.TTL.Wunderground = DefaultWundergroundTTL
	}
	if c.TTL.Forecast == 0 {
		c.TTL.Forecast = DefaultForecastTTL
	}
	if c.TTL.Portfolio == 0 {
		c.TTL.Portfolio = DefaultPortfolioTTL
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.WSPushInterval == 0 {
		c.Server.WSPushInterval = DefaultWSPushInterval
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
