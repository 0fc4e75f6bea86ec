// Package database contains the logic for establishing connections to
// the PostgreSQL database.
//
// It handles:
//   - building a DSN from config
//   - creating a pgx connection pool (pgxpool)
//   - wiring query tracing/logging (pgx tracelog) in the local env
//   - running schema migrations (jackc/tern)
//
// The pool is the session factory every repository depends on: each
// repository call acquires a connection from it and releases the
// connection before returning, on every exit path.
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/users-store/config"
	"github.com/deppfellow/users-store/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// DatabasePingTimeout is the number of seconds to wait for the startup
// ping before considering the database unreachable.
const DatabasePingTimeout = 10

// Database wraps the pgx connection pool and a logger for lifecycle
// events (connect, close).
type Database struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger
}

// buildDSN assembles a postgres:// connection string from config.
//
// The password is URL-escaped so special characters cannot break the
// URL structure, and host/port are joined with net.JoinHostPort so
// IPv6 literals get their brackets.
func buildDSN(cfg *config.Config) string {
	hostPort := net.JoinHostPort(cfg.Postgres.Host, strconv.Itoa(cfg.Postgres.Port))
	encodedPassword := url.QueryEscape(cfg.Postgres.Password)

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.Postgres.User,
		encodedPassword,
		hostPort,
		cfg.Postgres.DB,
		cfg.Postgres.SSLMode,
	)
}

// New creates the PostgreSQL connection pool.
//
// Behavior:
//   - Build the DSN and parse it into a pgxpool config
//   - In the local env, attach a SQL tracelogger so every statement and
//     its arguments are logged (noisy, local only)
//   - Create the pool and ping it, so startup fails fast if the
//     database is down
func New(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	if cfg.Env == "local" {
		globalLevel := log.GetLevel()
		pgxLogger := logger.NewPgxLogger(globalLevel)

		pgxPoolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: logger.GetPgxTraceLogLevel(globalLevel),
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, DatabasePingTimeout*time.Second)
	defer cancel()
	if err = pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("connected to the database")

	return &Database{Pool: pool, log: log}, nil
}

// Close closes the database connection pool. It blocks until all
// acquired connections are released.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}
