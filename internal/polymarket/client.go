package polymarket

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jwpark/polytemp/internal/auth"
)

// Client provides access to the Polymarket REST APIs.
type Client struct {
	gammaURL   string
	clobURL    string
	dataURL    string
	httpClient *http.Client
	logger     *slog.Logger

	// limiter throttles CLOB book requests so the per-market fan-out
	// stays under the public rate limit.
	limiter *rate.Limiter

	creds auth.Credentials
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Polymarket client for the given API hosts.
func NewClient(gammaURL, clobURL, dataURL string, opts ...ClientOption) *Client {
	c := &Client{
		gammaURL: gammaURL,
		clobURL:  clobURL,
		dataURL:  dataURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:  slog.Default(),
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}

	for _, opt := range opts {
		opt(c)
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

// WithCredentials sets the L2 API credentials for signed endpoints.
func WithCredentials(creds auth.Credentials) ClientOption {
	return func(c *Client) {
		c.creds = creds
	}
}

// WithRateLimit sets the request rate for CLOB book fetches.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// HasCredentials reports whether signed endpoints can be called.
func (c *Client) HasCredentials() bool {
	return c.creds.Complete()
}

// CloseIdleConnections closes idle connections held by the underlying
// HTTP client.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
