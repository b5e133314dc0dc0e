package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions sizes the connection pool. Every request borrows one
// connection for its transaction-scoped session, so MaxConns bounds the
// number of in-flight recordings. Zero values fall back to the defaults.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

const (
	defaultMaxConns = 20
	defaultMinConns = 2
)

// Connect opens the pool and verifies connectivity with a round-trip query
// before returning, so startup fails loudly instead of on the first price
// request.
func Connect(dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = defaultMaxConns
	cfg.MinConns = defaultMinConns
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.MaxConnLifetime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	var now time.Time
	if err := p.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		p.Close()
		return nil, fmt.Errorf("connectivity check: %w", err)
	}

	fmt.Printf("[DB] Price store reachable at %s (pool max=%d min=%d)\n",
		now.Format(time.RFC3339), cfg.MaxConns, cfg.MinConns)
	return p, nil
}
