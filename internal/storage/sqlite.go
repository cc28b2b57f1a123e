// Package storage implements the confirmation log on SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultHistoryCap is the number of confirmation records retained when no
// cap is configured.
const DefaultHistoryCap = 50

// SQLiteStore implements service.ConfirmationStore using SQLite.
type SQLiteStore struct {
	db         *sql.DB
	dbPath     string
	historyCap int
}

// NewSQLiteStore opens (or creates) the confirmation log database. cap
// bounds the number of retained records; values below 1 fall back to
// DefaultHistoryCap.
func NewSQLiteStore(dbPath string, cap int) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}
	if cap < 1 {
		cap = DefaultHistoryCap
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:         db,
		dbPath:     dbPath,
		historyCap: cap,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context must not be nil")
	}
	return ctx.Err()
}
