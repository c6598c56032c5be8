package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver registration.
)

// DB wraps the sql.DB handle so repositories share one place for
// connection concerns.
type DB struct {
	*sql.DB
}

// NewConnection opens the SQLite database at path and applies the
// pragmas the service relies on. A single connection is enough for
// this workload and sidesteps SQLite's writer contention.
func NewConnection(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{DB: db}, nil
}
