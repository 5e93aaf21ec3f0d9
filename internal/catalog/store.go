package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Store persists catalog symbols in SQLite so a parsed target version can be
// reused across renders.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// OpenStore creates or opens a catalog database.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	store := &Store{db: db, dbPath: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS symbols (
			name TEXT PRIMARY KEY COLLATE NOCASE,
			kind TEXT NOT NULL DEFAULT '',
			file TEXT NOT NULL DEFAULT '',
			line INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Put inserts or replaces symbols in a single transaction.
func (s *Store) Put(symbols ...Symbol) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO symbols (name, kind, file, line) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET kind = excluded.kind, file = excluded.file, line = excluded.line
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sym := range symbols {
		if _, err := stmt.Exec(trimSeparator(sym.Name), sym.Kind, sym.File, sym.Line); err != nil {
			return fmt.Errorf("failed to store symbol %q: %w", sym.Name, err)
		}
	}
	return tx.Commit()
}

// Get looks up a single symbol.
func (s *Store) Get(name string) (Symbol, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sym Symbol
	err := s.db.QueryRow(
		`SELECT name, kind, file, line FROM symbols WHERE name = ?`, trimSeparator(name),
	).Scan(&sym.Name, &sym.Kind, &sym.File, &sym.Line)
	if err == sql.ErrNoRows {
		return Symbol{}, false, nil
	}
	if err != nil {
		return Symbol{}, false, fmt.Errorf("failed to query symbol %q: %w", name, err)
	}
	return sym, true, nil
}

// Count returns the number of stored symbols.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM symbols`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count symbols: %w", err)
	}
	return n, nil
}

// Snapshot loads every symbol into an immutable in-memory catalog.
func (s *Store) Snapshot() (*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT name, kind, file, line FROM symbols ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	defer rows.Close()

	var symbols []Symbol
	for rows.Next() {
		var sym Symbol
		if err := rows.Scan(&sym.Name, &sym.Kind, &sym.File, &sym.Line); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return NewMemory(symbols...), nil
}

func trimSeparator(name string) string {
	if len(name) > 0 && name[0] == '\\' {
		return name[1:]
	}
	return name
}
