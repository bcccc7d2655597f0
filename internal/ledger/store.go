package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"capsgen/internal/config"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LedgerDir, "runs.db"))
}

// OpenPath opens the ledger database at an explicit location. Pragmas ride
// in the DSN so that every pooled connection gets them, not just the first;
// worker goroutines insert concurrently and need the busy timeout on each.
func OpenPath(dbPath string) (*Store, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a new run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, source, output_dir, preprocessing, status, started_at, image_count)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Source,
		run.OutputDir,
		run.Preprocessing,
		RunStatusRunning,
		started.Format(time.RFC3339Nano),
		run.ImageCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordImage persists the outcome of one per-image job.
func (s *Store) RecordImage(ctx context.Context, record ImageRecord) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO run_images
            (run_id, participant_id, session_id, source_path, output_path, gamma, status, error_message)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.ParticipantID,
		record.SessionID,
		record.SourcePath,
		nullableString(record.OutputPath),
		record.Gamma,
		record.Status,
		nullableString(record.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("insert run image: %w", err)
	}
	return nil
}

// FinishRun marks a run completed or failed.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, imageCount int, errorMessage string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs
         SET status = ?, finished_at = ?, image_count = ?, error_message = ?
         WHERE id = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		imageCount,
		nullableString(errorMessage),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun fetches one run by identifier, or nil when absent.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunImages returns the per-image outcomes of one run ordered by participant.
func (s *Store) RunImages(ctx context.Context, runID string) ([]*ImageRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, participant_id, session_id, source_path, output_path, gamma, status, error_message
         FROM run_images WHERE run_id = ? ORDER BY participant_id, session_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run images: %w", err)
	}
	defer rows.Close()

	var records []*ImageRecord
	for rows.Next() {
		var (
			record       ImageRecord
			statusStr    string
			outputPath   sql.NullString
			errorMessage sql.NullString
		)
		if err := rows.Scan(
			&record.RunID,
			&record.ParticipantID,
			&record.SessionID,
			&record.SourcePath,
			&outputPath,
			&record.Gamma,
			&statusStr,
			&errorMessage,
		); err != nil {
			return nil, err
		}
		record.Status = ImageStatus(statusStr)
		record.OutputPath = outputPath.String
		record.ErrorMessage = errorMessage.String
		records = append(records, &record)
	}
	return records, rows.Err()
}

const runColumns = "id, source, output_dir, preprocessing, status, started_at, finished_at, image_count, error_message"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		statusStr    string
		startedRaw   string
		finishedRaw  sql.NullString
		errorMessage sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Source,
		&run.OutputDir,
		&run.Preprocessing,
		&statusStr,
		&startedRaw,
		&finishedRaw,
		&run.ImageCount,
		&errorMessage,
	); err != nil {
		return nil, err
	}
	run.Status = RunStatus(statusStr)
	run.ErrorMessage = errorMessage.String
	if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := time.Parse(time.RFC3339Nano, finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
