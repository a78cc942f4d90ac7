// Package snapshot persists the last-notified library state in SQLite.
package snapshot

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// querier abstracts *sql.DB and *sql.Tx for shared query logic.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// Store provides access to the persisted snapshot.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (or creates) the snapshot database at path. The parent
// directory is created if absent. An unreadable or corrupt database is
// moved aside and replaced with an empty one: state corruption trades
// a burst of re-notifications for availability, it never fails a run.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "snapshot")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := open(path)
	if err != nil {
		logger.Warn("snapshot database unreadable, starting empty", "path", path, "error", err)
		if moveErr := os.Rename(path, path+".corrupt"); moveErr != nil && !os.IsNotExist(moveErr) {
			return nil, fmt.Errorf("move corrupt snapshot aside: %w", moveErr)
		}
		db, err = open(path)
		if err != nil {
			return nil, fmt.Errorf("recreate snapshot db: %w", err)
		}
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// NewStore wraps an existing database handle. The schema must already
// be applied; tests use this with in-memory databases.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger.With("component", "snapshot"), now: time.Now}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin starts a transaction.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx, now: s.now}, nil
}

// Tx wraps a database transaction with the same methods as Store.
type Tx struct {
	tx  *sql.Tx
	now func() time.Time
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
