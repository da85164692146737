// Package db persists completed training sessions, their repetitions, and
// the form issues observed along the way. The analysis pipeline never touches
// this package directly; callers record results after the fact.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sessions database handle.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) the sessions database at path.
// Use ":memory:" for an ephemeral database in tests.
func NewDB(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}

	// modernc sqlite serializes access internally; a single connection
	// avoids table-lock errors from concurrent writers.
	handle.SetMaxOpenConns(1)

	if _, err := handle.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		handle.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &DB{handle}, nil
}
