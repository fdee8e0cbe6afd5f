// Package store persists OAuth credentials and the API transaction log in
// Postgres.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the bridge's tables when they do not exist yet. The schema
// is small enough that idempotent DDL beats a migration tool here.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS api_configs (
			id UUID PRIMARY KEY,
			service TEXT NOT NULL UNIQUE,
			client_id TEXT,
			client_secret TEXT,
			base_url TEXT,
			oauth_token TEXT,
			refresh_token TEXT,
			token_expiry TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			request_method TEXT NOT NULL,
			request_url TEXT NOT NULL,
			request_body JSONB,
			response_status INT,
			response_body JSONB,
			duration_ms BIGINT,
			success BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS error_logs (
			id UUID PRIMARY KEY,
			error_type TEXT NOT NULL,
			error_message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_error_logs_created_at ON error_logs (created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
