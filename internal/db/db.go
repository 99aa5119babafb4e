// Package db provides PostgreSQL persistence for predictions, feedback,
// preference profiles and pipeline runs. Complex nested records are
// stored as JSONB keyed by their natural identifiers; not-found reads
// return (nil, nil).
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a PostgreSQL connection pool. It satisfies the store
// interfaces of the scoring engine, the learning pipeline and the
// adaptation service.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS decision_patterns (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		pattern    JSONB NOT NULL,
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_patterns_user ON decision_patterns (user_id) WHERE active`,
	`CREATE TABLE IF NOT EXISTS labeled_decisions (
		user_id     TEXT NOT NULL,
		prospect_id TEXT NOT NULL,
		decision    JSONB NOT NULL,
		decided_at  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, prospect_id)
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id          UUID PRIMARY KEY,
		user_id     TEXT NOT NULL DEFAULT '',
		prospect_id TEXT NOT NULL,
		prediction  JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id           UUID PRIMARY KEY,
		user_id      TEXT NOT NULL,
		team_id      TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		record       JSONB NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_pending ON feedback (user_id, submitted_at) WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS preference_profiles (
		user_id    TEXT PRIMARY KEY,
		team_id    TEXT NOT NULL DEFAULT '',
		profile    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS team_profiles (
		team_id    TEXT PRIMARY KEY,
		profile    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id         UUID PRIMARY KEY,
		user_id    TEXT NOT NULL DEFAULT '',
		team_id    TEXT NOT NULL DEFAULT '',
		run        JSONB NOT NULL,
		started_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the schema if it does not exist. Safe to run on every
// startup.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}
