package runrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists runs and invocations in SQLite. The database lives in the
// run's log directory so an aborted run leaves a queryable record behind.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the run database and applies the schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure record directory: %w", err)
	}

	dbPath := filepath.Join(dir, "run.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// BeginRun inserts a new run row with the discovered sample count.
func (s *Store) BeginRun(ctx context.Context, runID string, samples int, outputDir string) error {
	return s.execWithRetry(ctx,
		`INSERT INTO runs (id, samples, output_dir, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, samples, outputDir, string(StatusRunning), timestamp(time.Now()))
}

// FinishRun records the run's terminal status.
func (s *Store) FinishRun(ctx context.Context, runID string, success bool) error {
	status := StatusSucceeded
	if !success {
		status = StatusFailed
	}
	return s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		string(status), timestamp(time.Now()), runID)
}

// CreateInvocation inserts a pending invocation.
func (s *Store) CreateInvocation(ctx context.Context, inv *Invocation) error {
	if inv.Status == "" {
		inv.Status = StatusPending
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	return s.execWithRetry(ctx,
		`INSERT INTO invocations (id, run_id, stage, sample, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.RunID, inv.Stage, inv.Sample, string(inv.Status), timestamp(inv.CreatedAt))
}

// MarkRunning transitions an invocation to running.
func (s *Store) MarkRunning(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return s.execWithRetry(ctx,
		`UPDATE invocations SET status = ?, started_at = ? WHERE id = ?`,
		string(StatusRunning), timestamp(now), id)
}

// MarkSucceeded records success plus the produced output paths.
func (s *Store) MarkSucceeded(ctx context.Context, id string, outputs []string) error {
	payload, err := json.Marshal(outputs)
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}
	now := time.Now().UTC()
	return s.execWithRetry(ctx,
		`UPDATE invocations SET status = ?, finished_at = ?, exit_code = 0, outputs_json = ? WHERE id = ?`,
		string(StatusSucceeded), timestamp(now), string(payload), id)
}

// MarkFailed records failure with the exit code and message.
func (s *Store) MarkFailed(ctx context.Context, id string, exitCode int, message string) error {
	now := time.Now().UTC()
	return s.execWithRetry(ctx,
		`UPDATE invocations SET status = ?, finished_at = ?, exit_code = ?, error_message = ? WHERE id = ?`,
		string(StatusFailed), timestamp(now), exitCode, strings.TrimSpace(message), id)
}

// SetPublishError records a results-tree copy failure without touching the
// invocation's computed status.
func (s *Store) SetPublishError(ctx context.Context, id string, message string) error {
	return s.execWithRetry(ctx,
		`UPDATE invocations SET publish_error = ? WHERE id = ?`,
		strings.TrimSpace(message), id)
}

// ListInvocations returns a run's invocations in creation order.
func (s *Store) ListInvocations(ctx context.Context, runID string) ([]Invocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, stage, sample, status, created_at, started_at, finished_at,
                exit_code, error_message, outputs_json, publish_error
         FROM invocations WHERE run_id = ? ORDER BY created_at, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var result []Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

// SampleCompleted reports whether sample's invocation for the named stage
// succeeded.
func (s *Store) SampleCompleted(ctx context.Context, runID, sample, stageName string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM invocations WHERE run_id = ? AND sample = ? AND stage = ? AND status = ?`,
		runID, sample, stageName, string(StatusSucceeded))
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("query completion: %w", err)
	}
	return count > 0, nil
}

// Summary aggregates the run's invocation statuses.
func (s *Store) Summary(ctx context.Context, runID string) (Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM invocations WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return Summary{}, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	sum := Summary{RunID: runID}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, err
		}
		sum.Total += count
		switch Status(status) {
		case StatusSucceeded:
			sum.Succeeded += count
		case StatusFailed:
			sum.Failed += count
		default:
			sum.Pending += count
		}
	}
	return sum, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvocation(row rowScanner) (Invocation, error) {
	var (
		inv          Invocation
		status       string
		createdAt    string
		startedAt    sql.NullString
		finishedAt   sql.NullString
		exitCode     sql.NullInt64
		outputsJSON  string
		publishError sql.NullString
	)
	if err := row.Scan(&inv.ID, &inv.RunID, &inv.Stage, &inv.Sample, &status, &createdAt,
		&startedAt, &finishedAt, &exitCode, &inv.ErrorMessage, &outputsJSON, &publishError); err != nil {
		return Invocation{}, fmt.Errorf("scan invocation: %w", err)
	}
	inv.Status = Status(status)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		inv.CreatedAt = ts
	}
	if startedAt.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, startedAt.String); err == nil {
			inv.StartedAt = &ts
		}
	}
	if finishedAt.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
			inv.FinishedAt = &ts
		}
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		inv.ExitCode = &code
	}
	if publishError.Valid {
		inv.PublishError = publishError.String
	}
	if err := json.Unmarshal([]byte(outputsJSON), &inv.Outputs); err != nil {
		return Invocation{}, fmt.Errorf("decode outputs: %w", err)
	}
	return inv, nil
}
