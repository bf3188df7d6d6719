// Package db provides SQLite persistence for trackline.
//
// A single database file holds every resource. All other packages go through
// the DB type; it owns the connection, the schema, and transaction handling.
package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// DB wraps the SQLite connection.
type DB struct {
	sdb  *sql.DB
	path string
}

// Open opens the trackline database at the given path.
// Creates the parent directory if it doesn't exist.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(path)
}

var memSeq atomic.Int64

// OpenInMemory opens an in-memory database. Each call creates a new
// isolated database; ideal for testing. The DSN names the database and
// shares its cache so every pooled connection sees the same store.
func OpenInMemory() (*DB, error) {
	name := fmt.Sprintf("file:mem%d?mode=memory&cache=shared", memSeq.Add(1))
	return open(name)
}

func open(dsn string) (*DB, error) {
	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable foreign keys, WAL mode, and busy timeout for concurrent access
	if _, err := sdb.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	return &DB{sdb: sdb, path: dsn}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.sdb == nil {
		return nil
	}
	return d.sdb.Close()
}

// Path returns the database path.
func (d *DB) Path() string {
	return d.path
}

// Exec executes a query without returning rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.sdb.ExecContext(ctx, query, args...)
}

// Query executes a query that returns rows.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.sdb.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.sdb.QueryRowContext(ctx, query, args...)
}

// WithTx runs fn inside a transaction: commit on nil return, rollback and
// propagate on error. Cascade deletes rely on this being all-or-nothing.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.sdb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// IsUnique reports whether err is a UNIQUE or PRIMARY KEY violation.
func IsUnique(err error) bool {
	var se *sqlite.Error
	if !stderrors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// IsConstraint reports whether err is any SQLite constraint violation
// (CHECK, NOT NULL, FOREIGN KEY, UNIQUE, ...).
func IsConstraint(err error) bool {
	var se *sqlite.Error
	if !stderrors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// classify maps a storage error to the trackline taxonomy. Uniqueness
// violations become conflicts, other constraint trips become 400-class
// constraint errors, anything else is internal.
func classify(op string, err error) error {
	switch {
	case IsUnique(err):
		return trackerrors.Conflict(op + ": row already exists")
	case IsConstraint(err):
		return trackerrors.Constraint(err)
	default:
		return trackerrors.Internal(op, err)
	}
}
