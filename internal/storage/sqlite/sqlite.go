package sqlite

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

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/slok/runcap/internal/conventions"
	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/storage/sqlite/migrations"
)

const (
	// lockRetryInterval is the interval between attempts to acquire the
	// migration file lock.
	lockRetryInterval = 50 * time.Millisecond
	// lockTimeout bounds how long we wait for another process to finish its
	// migrations.
	lockTimeout = 5 * time.Second
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository. Schema migrations are
// serialized across processes with a file lock next to the database, WAL
// handles concurrent access once the schema is in place.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	lock := flock.New(cfg.DBPath + conventions.LockFileSuffix)
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, lockRetryInterval)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not lock database %s: %w", cfg.DBPath, err)
	}
	if !locked {
		db.Close()
		return nil, fmt.Errorf("database %s is locked by another process", cfg.DBPath)
	}
	defer func() {
		if err := lock.Close(); err != nil {
			cfg.Logger.Warningf("Could not release database lock: %v", err)
		}
	}()

	if err := migrations.Up(ctx, db, cfg.Logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateRun records a new run in the repository.
func (r *Repository) CreateRun(ctx context.Context, run model.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}
	if len(run.Command) == 0 {
		return fmt.Errorf("run command is required: %w", model.ErrNotValid)
	}

	command, err := json.Marshal(run.Command)
	if err != nil {
		return fmt.Errorf("could not encode command: %w", err)
	}

	stdoutKind, stdoutData := captureColumns(run.Record.Stdout)
	stderrKind, stderrData := captureColumns(run.Record.Stderr)

	query := `
		INSERT INTO runs (
			id, command, engine,
			stdout_kind, stdout_data,
			stderr_kind, stderr_data,
			exit_code,
			created_at, duration_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		run.ID,
		string(command),
		string(run.Engine),
		stdoutKind,
		stdoutData,
		stderrKind,
		stderrData,
		run.Record.ExitCode,
		run.CreatedAt.Unix(),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.") {
			return fmt.Errorf("run already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert run: %w", err)
	}

	r.logger.Debugf("Created run in repository: %s", run.ID)
	return nil
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.Run, error) {
	query := `
		SELECT
			id, command, engine,
			stdout_kind, stdout_data,
			stderr_kind, stderr_data,
			exit_code,
			created_at, duration_ms
		FROM runs
		WHERE id = ?
	`

	run, err := r.scanOne(ctx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query run: %w", err)
	}

	return run, nil
}

// GetLastRun retrieves the most recently recorded run.
func (r *Repository) GetLastRun(ctx context.Context) (*model.Run, error) {
	query := `
		SELECT
			id, command, engine,
			stdout_kind, stdout_data,
			stderr_kind, stderr_data,
			exit_code,
			created_at, duration_ms
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	run, err := r.scanOne(ctx, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no runs recorded: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query run: %w", err)
	}

	return run, nil
}

// ListRuns returns all runs, newest first.
func (r *Repository) ListRuns(ctx context.Context) ([]model.Run, error) {
	query := `
		SELECT
			id, command, engine,
			stdout_kind, stdout_data,
			stderr_kind, stderr_data,
			exit_code,
			created_at, duration_ms
		FROM runs
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

// DeleteRun deletes a run.
func (r *Repository) DeleteRun(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted run from repository: %s", id)
	return nil
}

// DeleteAllRuns removes every recorded run.
func (r *Repository) DeleteAllRuns(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("could not delete runs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get rows affected: %w", err)
	}

	r.logger.Debugf("Deleted all %d runs from repository", rows)
	return int(rows), nil
}

func (r *Repository) scanOne(ctx context.Context, query string, args ...any) (*model.Run, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	run, err := r.scanRow(row)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanRow(s scanner) (model.Run, error) {
	var run model.Run
	var commandJSON string
	var stdoutKind, stderrKind sql.NullString
	var stdoutData, stderrData []byte
	var exitCode sql.NullInt64
	var createdAt, durationMS int64

	err := s.Scan(
		&run.ID,
		&commandJSON,
		&run.Engine,
		&stdoutKind,
		&stdoutData,
		&stderrKind,
		&stderrData,
		&exitCode,
		&createdAt,
		&durationMS,
	)
	if err != nil {
		return model.Run{}, err
	}

	if err := json.Unmarshal([]byte(commandJSON), &run.Command); err != nil {
		return model.Run{}, fmt.Errorf("could not decode command: %w", err)
	}

	run.Record.Stdout = captureFromColumns(stdoutKind, stdoutData)
	run.Record.Stderr = captureFromColumns(stderrKind, stderrData)
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.Record.ExitCode = &code
	}
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	run.Duration = time.Duration(durationMS) * time.Millisecond

	return run, nil
}

// captureColumns splits a captured value into its kind and raw data columns.
// An absent value maps to NULL on both.
func captureColumns(v *model.CapturedValue) (*string, []byte) {
	if v == nil {
		return nil, nil
	}
	kind := string(v.Kind)
	return &kind, v.Raw()
}

// captureFromColumns rebuilds a captured value from its columns. A NULL kind
// means the channel was absent on the original handle.
func captureFromColumns(kind sql.NullString, data []byte) *model.CapturedValue {
	if !kind.Valid {
		return nil
	}

	if model.ValueKind(kind.String) == model.ValueKindBinary {
		return &model.CapturedValue{Kind: model.ValueKindBinary, Bytes: data}
	}
	return &model.CapturedValue{Kind: model.ValueKindText, Text: string(data)}
}
