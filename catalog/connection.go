// Package catalog maintains a local SQLite index of whole-slide image files:
// path, vendor, geometry, and resolution, grouped by scan.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"
)

// ConnectionConfig holds settings for the SQLite connection.
type ConnectionConfig struct {
	// Path is the database file path.
	Path string
	// BusyTimeoutMS is how long to wait for locks, in milliseconds.
	BusyTimeoutMS int
	// MaxOpenConns limits concurrent connections. SQLite behaves best with
	// a single writer.
	MaxOpenConns int
	// MaxIdleConns limits idle connections in the pool.
	MaxIdleConns int
	// ConnMaxLifetime limits connection reuse (0 = no limit).
	ConnMaxLifetime time.Duration
}

// DefaultConnectionConfig returns sensible SQLite defaults: WAL journal,
// five second busy timeout, single connection.
func DefaultConnectionConfig(path string) ConnectionConfig {
	return ConnectionConfig{
		Path:          path,
		BusyTimeoutMS: 5000,
		MaxOpenConns:  1,
		MaxIdleConns:  1,
	}
}

// newConnection opens the catalog database with WAL mode enabled and
// verifies the connection before returning it.
func newConnection(config ConnectionConfig) (*sql.DB, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("catalog: database path is required")
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", config.BusyTimeoutMS),
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("catalog: %s: %w", pragma, err)
		}
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	return db, nil
}
