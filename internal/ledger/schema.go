package ledger

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        source TEXT NOT NULL,
        output_dir TEXT NOT NULL,
        preprocessing TEXT NOT NULL,
        status TEXT NOT NULL,
        started_at TEXT NOT NULL,
        finished_at TEXT,
        image_count INTEGER NOT NULL DEFAULT 0,
        error_message TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS run_images (
        run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
        participant_id TEXT NOT NULL,
        session_id TEXT NOT NULL,
        source_path TEXT NOT NULL,
        output_path TEXT,
        gamma REAL NOT NULL DEFAULT 0,
        status TEXT NOT NULL,
        error_message TEXT,
        PRIMARY KEY (run_id, participant_id, session_id)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
}

func (s *Store) applyMigrations(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
