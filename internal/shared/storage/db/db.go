package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/sethvargo/go-retry"

	"resume-matcher/internal/shared/telemetry"
)

// Options sizes the connection pool and bounds the startup ping.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// ConnectRetries is how many extra pings Connect attempts, backing off
	// exponentially from RetryBase, before giving up.
	ConnectRetries int
	RetryBase      time.Duration
}

var openDB = sql.Open

// DefaultServerOptions suits the API and worker, which share the pool across
// concurrent analyses.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
		ConnectRetries:  4,
		RetryBase:       250 * time.Millisecond,
	}
}

// DefaultMigrateOptions suits a one-shot migration run.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		ConnectRetries:  2,
		RetryBase:       500 * time.Millisecond,
	}
}

// Merge returns o with every positive field of overrides applied.
// ConnectRetries is taken when it is zero or more.
func (o Options) Merge(overrides Options) Options {
	pickInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	pickDur := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	pickInt(&o.MaxOpenConns, overrides.MaxOpenConns)
	pickInt(&o.MaxIdleConns, overrides.MaxIdleConns)
	pickDur(&o.ConnMaxLifetime, overrides.ConnMaxLifetime)
	pickDur(&o.ConnMaxIdleTime, overrides.ConnMaxIdleTime)
	pickDur(&o.PingTimeout, overrides.PingTimeout)
	pickDur(&o.RetryBase, overrides.RetryBase)
	if overrides.ConnectRetries >= 0 {
		o.ConnectRetries = overrides.ConnectRetries
	}
	return o
}

// Connect opens a pgx-backed pool for databaseURL and pings it until it
// answers or the retries run out. Callers share the returned pool.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	pool, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(pool, opts)

	if err := pingWithRetry(ctx, pool, opts); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := pool.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return pool, nil
}

func pingWithRetry(ctx context.Context, pool *sql.DB, opts Options) error {
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	base := opts.RetryBase
	if base <= 0 {
		base = 250 * time.Millisecond
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(max(opts.ConnectRetries, 0)), retry.NewExponential(base))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := pool.PingContext(pingCtx); err != nil {
			telemetry.Warn("db.ping_failed", map[string]any{"attempt": attempt, "error": err})
			return retry.RetryableError(err)
		}
		return nil
	})
}

func configurePool(pool *sql.DB, opts Options) {
	opts = Options{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour, ConnectRetries: -1}.Merge(opts)
	pool.SetMaxOpenConns(opts.MaxOpenConns)
	pool.SetMaxIdleConns(opts.MaxIdleConns)
	pool.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}
