package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwpark/polytemp/internal/config"
)

// Client wraps a Postgres connection pool. A Client with a nil pool is
// disabled: every operation is a no-op returning empty results.
type Client struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to the configured database, or returns a disabled
// client when cfg.Enabled is false.
func Open(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return &Client{logger: logger}, nil
	}

	pool, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{pool: pool, logger: logger}, nil
}

func connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Enabled reports whether the client is backed by a live pool.
func (c *Client) Enabled() bool {
	return c != nil && c.pool != nil
}

// Ping verifies the connection is healthy. A disabled client is
// always healthy.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.pool.Ping(ctx)
}

// Close releases the pool. Safe on a disabled client.
func (c *Client) Close() {
	if c.Enabled() {
		c.pool.Close()
	}
}
