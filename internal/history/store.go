// Package history keeps a ledger of render runs in SQLite so repeated renders
// of the same inputs can be compared and audited.
package history

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// Run is one render invocation.
type Run struct {
	ID          string
	StartedAt   time.Time
	Trigger     string // render, watch, check
	FromVersion string
	ToVersion   string
	ChangesPath string
	OutputPath  string
	Modules     int
	Messages    int
	Digest      string // sha256 of the rendered document
	Duration    time.Duration
	Status      string
	Error       string
}

// Digest returns the hex sha256 of a rendered document.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Store manages the render history database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open creates or opens a history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, dbPath: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		triggered_by TEXT NOT NULL,
		from_version TEXT NOT NULL DEFAULT '',
		to_version TEXT NOT NULL DEFAULT '',
		changes_path TEXT NOT NULL DEFAULT '',
		output_path TEXT NOT NULL DEFAULT '',
		modules INTEGER NOT NULL DEFAULT 0,
		messages INTEGER NOT NULL DEFAULT 0,
		digest TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_output ON runs(output_path);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run. A missing ID, start time or status is filled in.
func (s *Store) Record(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()
	if run.Status == "" {
		run.Status = StatusOK
		if run.Error != "" {
			run.Status = StatusFailed
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, triggered_by, from_version, to_version, changes_path,
			output_path, modules, messages, digest, duration_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.Trigger, run.FromVersion, run.ToVersion, run.ChangesPath,
		run.OutputPath, run.Modules, run.Messages, run.Digest, run.Duration.Milliseconds(),
		run.Status, run.Error)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

const selectRuns = `
	SELECT id, started_at, triggered_by, from_version, to_version, changes_path, output_path,
		modules, messages, digest, duration_ms, status, error
	FROM runs`

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(selectRuns+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns the run with the given ID.
func (s *Store) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := scanRun(s.db.QueryRow(selectRuns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// LastSuccessful returns the newest successful run that wrote outputPath.
// ok is false when there is none.
func (s *Store) LastSuccessful(outputPath string) (run *Run, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err = scanRun(s.db.QueryRow(selectRuns+`
		WHERE output_path = ? AND status = ?
		ORDER BY started_at DESC, rowid DESC LIMIT 1`, outputPath, StatusOK))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return run, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var durationMS int64
	err := row.Scan(&run.ID, &run.StartedAt, &run.Trigger, &run.FromVersion, &run.ToVersion,
		&run.ChangesPath, &run.OutputPath, &run.Modules, &run.Messages, &run.Digest,
		&durationMS, &run.Status, &run.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
