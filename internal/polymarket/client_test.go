package polymarket

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jwpark/polytemp/internal/auth"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://gamma.example.com", "https://clob.example.com", "https://data.example.com")

		if c.gammaURL != "https://gamma.example.com" {
			t.Errorf("gammaURL = %q", c.gammaURL)
		}
		if c.clobURL != "https://clob.example.com" {
			t.Errorf("clobURL = %q", c.clobURL)
		}
		if c.dataURL != "https://data.example.com" {
			t.Errorf("dataURL = %q", c.dataURL)
		}
		if c.httpClient.Timeout != 15*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 15*time.Second)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
		if c.limiter == nil {
			t.Error("limiter should not be nil")
		}
		if c.HasCredentials() {
			t.Error("HasCredentials() = true without credentials")
		}
	})

	t.Run("with options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		hc := &http.Client{Timeout: 3 * time.Second}
		creds := auth.Credentials{
			Address:    "0xabc",
			APIKey:     "key",
			Secret:     "c2VjcmV0LXNlY3JldC1zZWNyZXQ=",
			Passphrase: "pass",
		}

		c := NewClient("g", "c", "d",
			WithLogger(logger),
			WithHTTPClient(hc),
			WithCredentials(creds),
			WithRateLimit(50, 5),
		)

		if c.logger != logger {
			t.Error("logger not set")
		}
		if c.httpClient != hc {
			t.Error("http client not set")
		}
		if !c.HasCredentials() {
			t.Error("HasCredentials() = false with complete credentials")
		}
		if c.limiter.Burst() != 5 {
			t.Errorf("limiter burst = %d, want 5", c.limiter.Burst())
		}
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := NewClient("g", "c", "d", WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{
		StatusCode: 404,
		Message:    "Not Found",
		Body:       []byte(`{"error": "no such event"}`),
	}
	want := "polymarket api error 404: Not Found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !err.IsNotFound() {
		t.Error("IsNotFound() = false for 404")
	}
	if (&APIError{StatusCode: 500}).IsNotFound() {
		t.Error("IsNotFound() = true for 500")
	}
}

func TestDoRequest(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept header = %q", r.Header.Get("Accept"))
			}
			if r.URL.Query().Get("slug") != "test-slug" {
				t.Errorf("slug = %q", r.URL.Query().Get("slug"))
			}
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL, server.URL)
		query := make(map[string][]string)
		query["slug"] = []string{"test-slug"}
		body, err := c.doRequest(context.Background(), http.MethodGet, server.URL, "/events", query, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"ok": true}` {
			t.Errorf("body = %q", string(body))
		}
	})

	t.Run("error status returns APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`upstream exploded`))
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL, server.URL)
		_, err := c.doRequest(context.Background(), http.MethodGet, server.URL, "/events", nil, false)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		apiErr, ok := err.(*APIError)
		if !ok {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.StatusCode != 500 {
			t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
		}
		if !strings.Contains(string(apiErr.Body), "exploded") {
			t.Errorf("Body = %q", string(apiErr.Body))
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL, server.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.doRequest(ctx, http.MethodGet, server.URL, "/events", nil, false)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "context canceled") {
			t.Errorf("error = %v, want context canceled", err)
		}
	})

	t.Run("signed request carries auth headers", func(t *testing.T) {
		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		creds := auth.Credentials{
			Address:    "0xabc",
			APIKey:     "key-id",
			Secret:     "c2VjcmV0LXNlY3JldC1zZWNyZXQ=",
			Passphrase: "pass",
		}
		c := NewClient(server.URL, server.URL, server.URL, WithCredentials(creds))
		_, err := c.doRequest(context.Background(), http.MethodGet, server.URL, "/balance-allowance", nil, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, h := range []string{"POLY_ADDRESS", "POLY_API_KEY", "POLY_PASSPHRASE", "POLY_TIMESTAMP", "POLY_SIGNATURE"} {
			if got.Get(h) == "" {
				t.Errorf("missing header %s", h)
			}
		}
		if got.Get("POLY_ADDRESS") != "0xabc" {
			t.Errorf("POLY_ADDRESS = %q", got.Get("POLY_ADDRESS"))
		}
	})
}
