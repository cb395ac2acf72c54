// Package database opens the SQLite store shared by the decision cache and
// the lookup cache.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmunix/strmsync/internal/migrations"

	_ "modernc.org/sqlite"
)

const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"

// Open opens the SQLite database at path with WAL mode enabled and applies
// pending migrations. It creates the parent directory if it does not exist.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Single connection: workers and the reconciler serialize on it.
	db.SetMaxOpenConns(1)

	if err := migrations.Up(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory opens a migrated in-memory database. It is meant for tests.
func OpenMemory(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrations.Up(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
