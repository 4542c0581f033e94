package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/scoracle-fans/internal/db"
	"github.com/albapepper/scoracle-fans/internal/wizard"
)

// Querier is the subset of pgxpool.Pool the Postgres store needs. Statement
// names refer to the prepared statements registered by package db.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the fan_sessions table. Expired rows are
// invisible to Get and removed by Sweep.
type PostgresStore struct {
	q   Querier
	ttl time.Duration
	now func() time.Time
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(q Querier, ttl time.Duration) *PostgresStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostgresStore{q: q, ttl: ttl, now: time.Now}
}

func (p *PostgresStore) Backend() string { return "postgres" }

func (p *PostgresStore) Ping(ctx context.Context) error {
	var n int
	if err := p.q.QueryRow(ctx, db.StmtHealthCheck).Scan(&n); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

func (p *PostgresStore) Create(ctx context.Context) (*wizard.Session, error) {
	s := newSession(p.now())
	if err := p.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*wizard.Session, error) {
	var data []byte
	err := p.q.QueryRow(ctx, db.StmtSessionGet, id, p.now().UTC()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return decode(data)
}

func (p *PostgresStore) Save(ctx context.Context, s *wizard.Session) error {
	now := p.now().UTC()
	s.UpdatedAt = now
	data, err := encode(s)
	if err != nil {
		return err
	}
	if _, err := p.q.Exec(ctx, db.StmtSessionUpsert, s.ID, data, s.CreatedAt, now, now.Add(p.ttl)); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.q.Exec(ctx, db.StmtSessionDelete, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Sweep deletes expired rows and reports how many were removed.
func (p *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	tag, err := p.q.Exec(ctx, db.StmtSessionSweep, p.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
