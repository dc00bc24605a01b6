package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolConfig struct {
	URL      string
	MaxConns int

	// zero values fall back to the defaults below
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

const (
	defaultMaxConns       = 10
	defaultMaxIdle        = 5 * time.Minute
	defaultConnectTimeout = 5 * time.Second
)

func (c PoolConfig) withDefaults() PoolConfig {
	if c.MaxConns <= 0 {
		c.MaxConns = defaultMaxConns
	}
	if c.MaxConnIdleTime <= 0 {
		c.MaxConnIdleTime = defaultMaxIdle
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	return c
}

// NewPool opens a pgx pool and pings it once, so a bad DSN fails at start-up
// rather than on the first account lookup.
func NewPool(ctx context.Context, pc PoolConfig) (*pgxpool.Pool, error) {
	pc = pc.withDefaults()

	cfg, err := pgxpool.ParseConfig(pc.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	cfg.MaxConns = int32(pc.MaxConns)
	// the store never holds a connection across calls, so idle ones can go
	cfg.MaxConnIdleTime = pc.MaxConnIdleTime

	ctx, cancel := context.WithTimeout(ctx, pc.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}
