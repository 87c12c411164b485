package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwpark/polytemp/internal/config"
	"github.com/jwpark/polytemp/internal/dayhigh"
	"github.com/jwpark/polytemp/internal/health"
	"github.com/jwpark/polytemp/internal/ingest"
	"github.com/jwpark/polytemp/internal/state"
	"github.com/jwpark/polytemp/internal/store"
	"github.com/jwpark/polytemp/internal/version"
)

var validate = validator.New()

// Deps carries everything the HTTP layer reads. Supervisor may be nil
// when manual refresh is not wanted (tests mostly).
type Deps struct {
	Config     config.Config
	Loc        *time.Location
	State      *state.Store
	Health     *health.Monitor
	Store      *store.Client
	Tracker    *dayhigh.Tracker
	Supervisor *ingest.Supervisor
	Logger     *slog.Logger
	Now        func() time.Time
}

// Server handles the HTTP API. Construct with New, mount Handler, and
// run Run for the websocket push loop.
type Server struct {
	cfg        config.Config
	loc        *time.Location
	state      *state.Store
	health     *health.Monitor
	store      *store.Client
	tracker    *dayhigh.Tracker
	supervisor *ingest.Supervisor
	hub        *hub
	logger     *slog.Logger
	now        func() time.Time
	started    time.Time
}

// New creates a server.
func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Server{
		cfg:        d.Config,
		loc:        d.Loc,
		state:      d.State,
		health:     d.Health,
		store:      d.Store,
		tracker:    d.Tracker,
		supervisor: d.Supervisor,
		hub:        newHub(d.Logger),
		logger:     d.Logger,
		now:        d.Now,
		started:    d.Now(),
	}
}

// Handler returns the API mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/trends/dates", s.handleTrendDates)
	mux.HandleFunc("GET /api/trends/markets", s.handleTrendMarkets)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("GET /api/new-highs", s.handleNewHighs)
	mux.HandleFunc("GET /api/event-study", s.handleEventStudy)
	mux.HandleFunc("POST /api/sources/{name}/refresh", s.handleRefresh)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws/dashboard", s.handleWS)

	return mux
}

// Run drives the websocket hub and its push loop until ctx is done.
func (s *Server) Run(ctx context.Context) {
	go s.hub.run(ctx)

	interval := s.cfg.Server.WSPushInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.hub.clientCount() == 0 {
				continue
			}
			payload, err := json.Marshal(s.buildDashboard())
			if err != nil {
				s.logger.Debug("marshal dashboard push", "error", err)
				continue
			}
			s.hub.send(payload)
		}
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.supervisor == nil {
		s.writeError(w, http.StatusNotFound, "no sources registered")
		return
	}

	name := r.PathValue("name")
	err := s.supervisor.RunSource(r.Context(), name)
	switch {
	case errors.Is(err, ingest.ErrUnknownSource):
		s.writeError(w, http.StatusNotFound, "unknown source "+name)
	case errors.Is(err, ingest.ErrBusy):
		s.writeError(w, http.StatusConflict, "refresh already running for "+name)
	case err != nil:
		s.writeJSON(w, http.StatusBadGateway, map[string]string{
			"source": name,
			"error":  err.Error(),
		})
	default:
		s.writeJSON(w, http.StatusAccepted, map[string]string{
			"status": "accepted",
			"source": name,
		})
	}
}

type healthzPayload struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Commit        string         `json:"commit"`
	UptimeSeconds int64          `json:"uptimeSeconds"`
	Components    map[string]any `json:"components"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	payload := healthzPayload{
		Status:        "healthy",
		Version:       version.Version,
		Commit:        version.Commit,
		UptimeSeconds: int64(s.now().Sub(s.started).Seconds()),
		Components:    make(map[string]any),
	}

	if !s.store.Enabled() {
		payload.Components["database"] = "disabled"
	} else if err := s.store.Ping(ctx); err != nil {
		payload.Status = "unhealthy"
		payload.Components["database"] = map[string]string{
			"status": "disconnected",
			"error":  err.Error(),
		}
	} else {
		payload.Components["database"] = "connected"
	}

	payload.Components["sources"] = s.health.Snapshot()
	if payload.Status == "healthy" && !s.health.Healthy() {
		payload.Status = "degraded"
	}

	code := http.StatusOK
	if payload.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, payload)
}

// requireStore guards the endpoints that read persisted data.
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if !s.store.Enabled() {
		s.writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
