package jobs

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteRegistry persists jobs in a SQLite database so status survives
// process restarts.
type SQLiteRegistry struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the jobs database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteRegistry, error) {
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

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteRegistry{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (r *SQLiteRegistry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Path returns the database file location.
func (r *SQLiteRegistry) Path() string { return r.path }

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

func (r *SQLiteRegistry) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = r.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Submit implements Registry.
func (r *SQLiteRegistry) Submit(ctx context.Context, profileID, configJSON string) (Job, error) {
	job := newJob(profileID, configJSON)
	_, err := r.execWithRetry(ctx,
		`INSERT INTO jobs (id, profile_id, config_json, status, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		job.ID, job.ProfileID, nullableString(job.Config), string(job.Status),
		job.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Job{}, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// Start implements Registry.
func (r *SQLiteRegistry) Start(ctx context.Context, id string) error {
	return r.transition(ctx, "start", id, StatusRunning, func(job Job) (sql.Result, error) {
		if job.Status != StatusPending {
			return nil, transitionError("start", id, job.Status, StatusRunning)
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		return r.execWithRetry(ctx,
			`UPDATE jobs SET status = ?, started_at = ? WHERE id = ? AND status = ?`,
			string(StatusRunning), now, id, string(StatusPending))
	})
}

// Complete implements Registry.
func (r *SQLiteRegistry) Complete(ctx context.Context, id, resultJSON string) error {
	return r.transition(ctx, "complete", id, StatusCompleted, func(job Job) (sql.Result, error) {
		if job.Status != StatusRunning {
			return nil, transitionError("complete", id, job.Status, StatusCompleted)
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		return r.execWithRetry(ctx,
			`UPDATE jobs SET status = ?, completed_at = ?, result_json = ? WHERE id = ? AND status = ?`,
			string(StatusCompleted), now, nullableString(resultJSON), id, string(StatusRunning))
	})
}

// Fail implements Registry.
func (r *SQLiteRegistry) Fail(ctx context.Context, id, message string) error {
	return r.transition(ctx, "fail", id, StatusFailed, func(job Job) (sql.Result, error) {
		if job.Status.Terminal() {
			return nil, transitionError("fail", id, job.Status, StatusFailed)
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		return r.execWithRetry(ctx,
			`UPDATE jobs SET status = ?, completed_at = ?, error = ? WHERE id = ? AND status IN (?, ?)`,
			string(StatusFailed), now, nullableString(message), id,
			string(StatusPending), string(StatusRunning))
	})
}

// transition applies a guarded status update. The UPDATE carries its own
// status predicate so a mutator racing through another connection cannot
// double-transition a job; zero affected rows means the state moved under
// us, reported with the status another mutator left behind.
func (r *SQLiteRegistry) transition(ctx context.Context, op, id string, target Status, apply func(Job) (sql.Result, error)) error {
	job, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	res, err := apply(job)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s job: rows affected: %w", op, err)
	}
	if affected == 0 {
		current, err := r.Get(ctx, id)
		if err != nil {
			return err
		}
		return transitionError(op, id, current.Status, target)
	}
	return nil
}

const jobColumns = `id, profile_id, config_json, status, created_at, started_at, completed_at, error, result_json`

// Get implements Registry.
func (r *SQLiteRegistry) Get(ctx context.Context, id string) (Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, notFound("get", id)
	}
	if err != nil {
		return Job{}, fmt.Errorf("query job: %w", err)
	}
	return job, nil
}

// List implements Registry.
func (r *SQLiteRegistry) List(ctx context.Context) ([]Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(scanner rowScanner) (Job, error) {
	var (
		job         Job
		config      sql.NullString
		status      string
		createdAt   string
		startedAt   sql.NullString
		completedAt sql.NullString
		errMsg      sql.NullString
		result      sql.NullString
	)
	if err := scanner.Scan(&job.ID, &job.ProfileID, &config, &status, &createdAt,
		&startedAt, &completedAt, &errMsg, &result); err != nil {
		return Job{}, err
	}
	job.Config = config.String
	job.Status = Status(status)
	job.Error = errMsg.String
	job.Result = result.String

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Job{}, fmt.Errorf("parse created_at: %w", err)
	}
	job.CreatedAt = created
	if job.StartedAt, err = parseNullableTime(startedAt); err != nil {
		return Job{}, fmt.Errorf("parse started_at: %w", err)
	}
	if job.CompletedAt, err = parseNullableTime(completedAt); err != nil {
		return Job{}, fmt.Errorf("parse completed_at: %w", err)
	}
	return job, nil
}

func parseNullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || strings.TrimSpace(value.String) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
