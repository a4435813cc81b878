package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is the metadata kept for one analysis. Message content is never stored.
type Run struct {
	ID            uuid.UUID
	ChatName      string
	TotalMessages int
	Participants  int
	BreakMinutes  int
	Summarized    bool
	Empty         bool
	Error         string
	Duration      time.Duration
	CreatedAt     time.Time
}

// RecordAnalysis inserts one run row.
func (s *Store) RecordAnalysis(ctx context.Context, run Run) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO analysis_runs (id, chat_name, total_messages, participants, break_minutes, summarized, empty, error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		run.ID, run.ChatName, run.TotalMessages, run.Participants, run.BreakMinutes,
		run.Summarized, run.Empty, run.Error, run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}
	return nil
}

// GetRun fetches a run by ID.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, chat_name, total_messages, participants, break_minutes, summarized, empty, error, duration_ms, created_at
		FROM analysis_runs WHERE id = $1`, id)

	var r Run
	var durationMS int64
	err := row.Scan(&r.ID, &r.ChatName, &r.TotalMessages, &r.Participants, &r.BreakMinutes,
		&r.Summarized, &r.Empty, &r.Error, &durationMS, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get analysis run: %w", err)
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return &r, nil
}
