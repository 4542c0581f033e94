// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking. It backs the Postgres session store.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-fans/internal/config"
)

// Prepared statement names.
const (
	StmtHealthCheck   = "health_check"
	StmtSessionGet    = "session_get"
	StmtSessionUpsert = "session_upsert"
	StmtSessionDelete = "session_delete"
	StmtSessionSweep  = "session_sweep"
)

// Schema is applied on every new connection before statements are prepared.
const Schema = `
CREATE TABLE IF NOT EXISTS fan_sessions (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS fan_sessions_expires_at_idx ON fan_sessions (expires_at);`

// Statements maps prepared statement names to their SQL.
var Statements = map[string]string{
	StmtHealthCheck: "SELECT 1",

	// $2 is the caller's clock so expiry is evaluated consistently with Save.
	StmtSessionGet: "SELECT data FROM fan_sessions WHERE id = $1 AND expires_at > $2",
	StmtSessionUpsert: `INSERT INTO fan_sessions (id, data, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`,
	StmtSessionDelete: "DELETE FROM fan_sessions WHERE id = $1",
	StmtSessionSweep:  "DELETE FROM fan_sessions WHERE expires_at <= $1",
}

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set for the postgres session backend")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, Schema); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range Statements {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
