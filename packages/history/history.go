package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	spec_file   TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	results     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Store persists run results in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary initializes) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores one run and returns its id.
func (s *Store) Save(ctx context.Context, result *runner.RunResult) (string, error) {
	results, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode run results: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, spec_file, started_at, duration_ms, total, failed, results)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, result.SpecFile, result.StartedAt, result.Duration.Milliseconds(),
		result.Total(), result.Failed(), string(results),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

// Entry is a summary row of a stored run.
type Entry struct {
	ID        string
	SpecFile  string
	StartedAt time.Time
	Duration  time.Duration
	Total     int
	Failed    int
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, spec_file, started_at, duration_ms, total, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		if err := rows.Scan(&e.ID, &e.SpecFile, &e.StartedAt, &durationMs, &e.Total, &e.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Results returns the stored result document of a run as JSON.
func (s *Store) Results(ctx context.Context, id string) (string, error) {
	var results string
	err := s.db.QueryRowContext(ctx, `SELECT results FROM runs WHERE id = ?`, id).Scan(&results)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no run with id %s", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return results, nil
}

// Extract evaluates a gjson path against a stored run's result document,
// e.g. "pages.0.checks.#(passed==false)#.description".
func (s *Store) Extract(ctx context.Context, id, path string) (string, error) {
	results, err := s.Results(ctx, id)
	if err != nil {
		return "", err
	}
	value := gjson.Get(results, path)
	if !value.Exists() {
		return "", fmt.Errorf("path %q matched nothing in run %s", path, id)
	}
	return value.String(), nil
}
