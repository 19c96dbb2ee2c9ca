package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB hands out a single lazily-established pool. Repeated Get calls reuse
// the same connection; the pool handles dead connections itself via its
// health check period.
type DB struct {
	DSN string

	once sync.Once
	pool *pgxpool.Pool
	err  error
}

func (d *DB) Get(ctx context.Context) (*pgxpool.Pool, error) {
	d.once.Do(func() {
		d.pool, d.err = Connect(ctx, d.DSN)
	})
	return d.pool, d.err
}

func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
