// Package history persists past build runs to SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joik2ww/forge/internal/builder"
)

// Store provides SQLite-backed run history
type Store struct {
	db *sql.DB
}

// Run is one recorded orchestrator run
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Found      int
	Built      int
	Status     string
}

// Build is one recorded target outcome within a run
type Build struct {
	RunID        string
	BaseName     string
	SourcePath   string
	Succeeded    bool
	OutputPath   string
	ArtifactSize int64
	Error        string
}

// New creates a Store at the given database path, creating parent
// directories and running migrations as needed.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID generates a unique run identifier
func NewRunID() string {
	return uuid.NewString()
}

// BeginRun records the start of a run
func (s *Store) BeginRun(id string, startedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, status) VALUES (?, ?, 'running')`,
		id, startedAt)
	return err
}

// FinishRun records a run's final tally
func (s *Store) FinishRun(id string, found, built int, finishedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, found = ?, built = ?, status = 'completed' WHERE id = ?`,
		finishedAt, found, built, id)
	return err
}

// RecordBuild records one target's outcome within a run
func (s *Store) RecordBuild(runID string, res builder.Result) error {
	var errMsg string
	if res.Err != nil {
		errMsg = res.Err.Error()
	}
	_, err := s.db.Exec(`
		INSERT INTO builds (run_id, base_name, source_path, succeeded, output_path, artifact_size, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		res.Target.BaseName,
		res.Target.SourcePath,
		res.Succeeded,
		res.OutputPath,
		res.ArtifactSize,
		errMsg,
	)
	return err
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, found, built, status
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.StartedAt, &finished, &r.Found, &r.Built, &r.Status); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// ListBuilds returns all build records for a run
func (s *Store) ListBuilds(runID string) ([]*Build, error) {
	rows, err := s.db.Query(`
		SELECT run_id, base_name, source_path, succeeded, output_path, artifact_size, error
		FROM builds WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []*Build
	for rows.Next() {
		var b Build
		var output, errMsg sql.NullString
		var size sql.NullInt64
		if err := rows.Scan(&b.RunID, &b.BaseName, &b.SourcePath, &b.Succeeded, &output, &size, &errMsg); err != nil {
			return nil, err
		}
		b.OutputPath = output.String
		b.ArtifactSize = size.Int64
		b.Error = errMsg.String
		builds = append(builds, &b)
	}
	return builds, rows.Err()
}
