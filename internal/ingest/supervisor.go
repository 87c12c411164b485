package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jwpark/polytemp/internal/health"
	"github.com/jwpark/polytemp/internal/metrics"
)

var (
	// ErrUnknownSource reports a refresh of a source that does not run.
	ErrUnknownSource = errors.New("unknown source")

	// ErrBusy reports a refresh while a fetch is already in flight.
	ErrBusy = errors.New("fetch already in flight")
)

// Source is one self-pacing ingestion loop.
type Source struct {
	Name string
	TTL  time.Duration
	Run  func(ctx context.Context) error
}

// Supervisor owns the loop goroutines and the per-source single-flight
// guarantee.
type Supervisor struct {
	sources []Source
	byName  map[string]Source
	health  *health.Monitor
	logger  *slog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewSupervisor creates a supervisor for the given sources.
func NewSupervisor(sources []Source, monitor *health.Monitor, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]Source, len(sources))
	for _, src := range sources {
		byName[src.Name] = src
	}
	return &Supervisor{
		sources:  sources,
		byName:   byName,
		health:   monitor,
		logger:   logger,
		inFlight: make(map[string]bool, len(sources)),
	}
}

// Run starts every loop and blocks until the context is cancelled and
// all loops have exited.
func (s *Supervisor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range s.sources {
		src := src
		g.Go(func() error {
			s.loop(ctx, src)
			return nil
		})
	}
	return g.Wait()
}

// RunSource triggers one immediate cycle of a named source, for the
// manual refresh endpoint. It reports ErrBusy when the loop (or a
// previous refresh) is mid-fetch.
func (s *Supervisor) RunSource(ctx context.Context, name string) error {
	src, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	return s.runOnce(ctx, src)
}

func (s *Supervisor) loop(ctx context.Context, src Source) {
	s.logger.Info("source loop started", "source", src.Name, "ttl", src.TTL)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("source loop stopped", "source", src.Name)
			return
		case <-timer.C:
		}

		started := time.Now()
		if err := s.runOnce(ctx, src); errors.Is(err, ErrBusy) {
			// A manual refresh holds the slot; check again next tick.
			timer.Reset(src.TTL)
			continue
		}

		sleep := src.TTL - time.Since(started)
		if sleep < 0 {
			sleep = 0
		}
		timer.Reset(sleep)
	}
}

// runOnce performs one accounted fetch cycle: single-flight, metrics,
// health. A cycle cut short by shutdown is not recorded as a failure.
func (s *Supervisor) runOnce(ctx context.Context, src Source) error {
	if !s.acquire(src.Name) {
		return fmt.Errorf("%w: %s", ErrBusy, src.Name)
	}
	defer s.release(src.Name)

	started := time.Now()
	err := src.Run(ctx)
	elapsed := time.Since(started)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	metrics.RecordFetch(src.Name, elapsed, err)
	if err != nil {
		s.health.Failure(src.Name, err)
		s.logger.Warn("source cycle failed",
			"source", src.Name,
			"elapsed", elapsed,
			"error", err,
		)
		return err
	}

	s.health.Success(src.Name)
	s.logger.Debug("source cycle complete", "source", src.Name, "elapsed", elapsed)
	return nil
}

func (s *Supervisor) acquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[name] {
		return false
	}
	s.inFlight[name] = true
	return true
}

func (s *Supervisor) release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight[name] = false
}
