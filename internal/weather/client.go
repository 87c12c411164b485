package weather

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Client provides access to the weather upstreams.
type Client struct {
	awcURL      string
	wuURL       string
	historyPath string
	omURL       string
	httpClient  *http.Client
	logger      *slog.Logger
	loc         *time.Location

	latitude     float64
	longitude    float64
	models       []string
	forecastDays int

	// breaker guards the Wunderground scrape, which throttles and
	// intermittently blocks non-browser clients.
	breaker *gobreaker.CircuitBreaker
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a weather client for the given API hosts.
func NewClient(awcURL, wuURL, omURL string, opts ...ClientOption) *Client {
	c := &Client{
		awcURL: awcURL,
		wuURL:  wuURL,
		omURL:  omURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:       slog.Default(),
		loc:          time.UTC,
		models:       []string{"kma_seamless"},
		forecastDays: 3,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "wunderground",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		})
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLocation sets the market timezone used to resolve scraped local
// times and to request forecasts.
func WithLocation(loc *time.Location) ClientOption {
	return func(c *Client) {
		c.loc = loc
	}
}

// WithHistoryPath sets the station-specific path of the daily history page.
func WithHistoryPath(path string) ClientOption {
	return func(c *Client) {
		c.historyPath = path
	}
}

// WithCoordinates sets the forecast grid point.
func WithCoordinates(lat, lon float64) ClientOption {
	return func(c *Client) {
		c.latitude = lat
		c.longitude = lon
	}
}

// WithForecastModels sets the forecast models and horizon.
func WithForecastModels(models []string, days int) ClientOption {
	return func(c *Client) {
		if len(models) > 0 {
			c.models = models
		}
		if days > 0 {
			c.forecastDays = days
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *gobreaker.CircuitBreaker) ClientOption {
	return func(c *Client) {
		c.breaker = cb
	}
}

// CloseIdleConnections closes idle connections held by the underlying
// HTTP client.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
