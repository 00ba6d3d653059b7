package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested job does not exist.
var ErrNotFound = errors.New("job not found")

// Store manages job history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
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

// StartJob inserts a new running job and returns it.
func (s *Store) StartJob(ctx context.Context, inputPath, outputPath string, targetI float64, bitrate string) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		ID:         uuid.NewString(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Status:     StatusRunning,
		TargetI:    targetI,
		Bitrate:    bitrate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            id, input_path, output_path, status, target_i, bitrate,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.InputPath,
		job.OutputPath,
		string(job.Status),
		job.TargetI,
		job.Bitrate,
		timestamp(job.CreatedAt),
		timestamp(job.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// CompleteJob marks a job as completed and records its statistics.
func (s *Store) CompleteJob(ctx context.Context, id string, durationSeconds float64, stats Stats) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET
            status = ?, input_i = ?, input_tp = ?, input_lra = ?,
            input_thresh = ?, target_offset = ?, input_bytes = ?,
            output_bytes = ?, duration_seconds = ?, updated_at = ?
        WHERE id = ?`,
		string(StatusCompleted),
		nullableString(stats.InputI),
		nullableString(stats.InputTP),
		nullableString(stats.InputLRA),
		nullableString(stats.InputThresh),
		nullableString(stats.TargetOffset),
		stats.InputBytes,
		stats.OutputBytes,
		durationSeconds,
		timestamp(time.Now().UTC()),
		id,
	)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return requireRow(res)
}

// FailJob marks a job as failed with the given message.
func (s *Store) FailJob(ctx context.Context, id string, message string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(StatusFailed),
		nullableString(message),
		timestamp(time.Now().UTC()),
		id,
	)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return requireRow(res)
}

// GetJob loads a single job by ID.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns the most recent jobs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Job, error) {
	query := selectColumns + " ORDER BY created_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// Clear removes all history entries and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM jobs")
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

// Prune deletes the oldest entries beyond keep. keep <= 0 retains everything.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM jobs WHERE id NOT IN (
            SELECT id FROM jobs ORDER BY created_at DESC, id DESC LIMIT ?
        )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT
    id, input_path, output_path, status, target_i, bitrate,
    input_i, input_tp, input_lra, input_thresh, target_offset,
    input_bytes, output_bytes, duration_seconds, error_message,
    created_at, updated_at
FROM jobs`

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*Job, error) {
	var job Job
	var status string
	var inputI, inputTP, inputLRA, inputThresh, targetOffset, errorMessage sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&job.ID,
		&job.InputPath,
		&job.OutputPath,
		&status,
		&job.TargetI,
		&job.Bitrate,
		&inputI,
		&inputTP,
		&inputLRA,
		&inputThresh,
		&targetOffset,
		&job.InputBytes,
		&job.OutputBytes,
		&job.DurationSeconds,
		&errorMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = Status(status)
	job.InputI = inputI.String
	job.InputTP = inputTP.String
	job.InputLRA = inputLRA.String
	job.InputThresh = inputThresh.String
	job.TargetOffset = targetOffset.String
	job.ErrorMessage = errorMessage.String
	job.CreatedAt = parseTimestamp(createdAt)
	job.UpdatedAt = parseTimestamp(updatedAt)
	return &job, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// timestampLayout is fixed-width so the TEXT columns sort chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
