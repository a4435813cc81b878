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
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id             UUID PRIMARY KEY,
	chat_name      TEXT        NOT NULL,
	total_messages INTEGER     NOT NULL,
	participants   INTEGER     NOT NULL,
	break_minutes  INTEGER     NOT NULL,
	summarized     BOOLEAN     NOT NULL DEFAULT false,
	empty          BOOLEAN     NOT NULL DEFAULT false,
	error          TEXT        NOT NULL DEFAULT '',
	duration_ms    BIGINT      NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS analysis_runs_created_at_idx ON analysis_runs (created_at DESC);
`

// EnsureSchema creates the run-metadata table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
