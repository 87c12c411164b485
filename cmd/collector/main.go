package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwpark/polytemp/internal/auth"
	"github.com/jwpark/polytemp/internal/config"
	"github.com/jwpark/polytemp/internal/dayhigh"
	"github.com/jwpark/polytemp/internal/health"
	"github.com/jwpark/polytemp/internal/ingest"
	"github.com/jwpark/polytemp/internal/metrics"
	"github.com/jwpark/polytemp/internal/polymarket"
	"github.com/jwpark/polytemp/internal/server"
	"github.com/jwpark/polytemp/internal/state"
	"github.com/jwpark/polytemp/internal/store"
	"github.com/jwpark/polytemp/internal/version"
	"github.com/jwpark/polytemp/internal/weather"
)

func main() {
	configPath := flag.String("config", "configs/collector.local.yaml", "path to config file")
	flag.Parse()

	// Bootstrap logger; replaced once config is loaded.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting collector",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	loc, err := time.LoadLocation(cfg.Service.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "timezone", cfg.Service.Timezone, "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"station", cfg.Service.Station,
		"timezone", cfg.Service.Timezone,
		"slug_prefix", cfg.Service.SlugPrefix,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database (optional)
	db, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if db.Enabled() {
		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database connected",
			"host", cfg.Database.Host,
			"database", cfg.Database.Name,
		)
	} else {
		logger.Info("persistence disabled; trend endpoints will return 503")
	}

	// Create upstream clients
	marketOpts := []polymarket.ClientOption{
		polymarket.WithLogger(logger),
		polymarket.WithTimeout(cfg.Sources.HTTPTimeout),
		polymarket.WithRateLimit(cfg.Sources.ClobRateLimit, cfg.Sources.ClobRateBurst),
	}
	if cfg.Credentials.UserAddress != "" {
		marketOpts = append(marketOpts, polymarket.WithCredentials(auth.Credentials{
			Address:    cfg.Credentials.UserAddress,
			APIKey:     cfg.Credentials.APIKey,
			Secret:     cfg.Credentials.APISecret,
			Passphrase: cfg.Credentials.APIPassphrase,
		}))
	}
	markets := polymarket.NewClient(cfg.Sources.GammaURL, cfg.Sources.ClobURL, cfg.Sources.DataURL, marketOpts...)

	wx := weather.NewClient(cfg.Sources.AWCURL, cfg.Sources.WundergroundURL, cfg.Sources.OpenMeteoURL,
		weather.WithLogger(logger),
		weather.WithTimeout(cfg.Sources.HTTPTimeout),
		weather.WithLocation(loc),
		weather.WithHistoryPath(cfg.Sources.WundergroundHistoryPath),
		weather.WithCoordinates(cfg.Service.Latitude, cfg.Service.Longitude),
		weather.WithForecastModels(cfg.Sources.ForecastModels, cfg.Sources.ForecastDays),
	)

	monitor := health.NewMonitor("market", "event", "awc", "wunderground", "forecast", "portfolio")
	memory := state.New()
	tracker := dayhigh.NewTracker(db, logger)

	ing := ingest.New(ingest.Deps{
		Config:  *cfg,
		Loc:     loc,
		Markets: markets,
		Weather: wx,
		State:   memory,
		Health:  monitor,
		Store:   db,
		Tracker: tracker,
		Logger:  logger,
	})
	supervisor := ingest.NewSupervisor(ing.Sources(), monitor, logger)

	srv := server.New(server.Deps{
		Config:     *cfg,
		Loc:        loc,
		State:      memory,
		Health:     monitor,
		Store:      db,
		Tracker:    tracker,
		Supervisor: supervisor,
		Logger:     logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting http server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Websocket push loop
	go srv.Run(ctx)

	// Ingestion loops
	supervisorDone := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(supervisorDone)
	}()

	metrics.SetBuildInfo(version.Version, version.Commit)

	logger.Info("collector running",
		"dashboard_url", fmt.Sprintf("http://localhost:%d/api/dashboard", cfg.Server.Port),
		"health_url", fmt.Sprintf("http://localhost:%d/healthz", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Let in-flight ingestion cycles finish before closing their sinks.
	<-supervisorDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	markets.CloseIdleConnections()
	wx.CloseIdleConnections()

	logger.Info("collector stopped")
}

// newLogger builds the structured logger described by the logging
// config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
