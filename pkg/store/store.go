// Package store persists the control plane's entities in SQLite and exposes
// the typed queries the HTTP API and the session loops run against.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("entity not found")

// ErrConstraint is returned by writes the database rejects for violating a
// schema constraint, typically a foreign key pointing at a missing row.
var ErrConstraint = errors.New("constraint violation")

// isConstraintViolation matches both the plain and extended sqlite
// constraint result codes.
func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// Store wraps the shared database handle. All methods are safe for
// concurrent use; sqlite serializes writers underneath.
type Store struct {
	db *sqlx.DB
}

// New creates a Store over an open database handle.
func New(db *sqlx.DB) *Store {
	if db == nil {
		panic("store.New: db must not be nil")
	}
	return &Store{db: db}
}

// updatableColumns lists, per table, the columns UpdateTextField may touch.
// Column names never come from request input without passing this gate;
// values are always bound as parameters.
var updatableColumns = map[string]map[string]bool{
	"hosts":      {"alias": true, "attributes": true, "ip": true, "active": true, "last_checkin": true},
	"scripts":    {"name": true, "version": true, "output_regex": true, "labels": true, "script_content": true},
	"schedules":  {"active": true, "timer_cron": true, "timer_ts": true},
	"executions": {"request": true, "response": true, "output": true},
	"users":      {"password": true, "roles": true, "active": true},
}

// UpdateTextField sets a single column on one row. The column must be on the
// table's allowlist; the id and value are bound as parameters.
func (s *Store) UpdateTextField(ctx context.Context, table, id, column, value string) error {
	cols, ok := updatableColumns[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	if !cols[column] {
		return fmt.Errorf("column %q of table %q is not updatable", column, table)
	}
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column)
	if _, err := s.db.ExecContext(ctx, query, value, id); err != nil {
		return fmt.Errorf("failed to update %s.%s: %w", table, column, err)
	}
	return nil
}
