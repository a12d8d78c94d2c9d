// Package storage owns the SQLite engine: opening the database, running
// embedded migrations, mapping driver errors to the shared taxonomy and
// fanning out change notifications for reactive queries.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the single source of truth. All repositories must route through
// the same Store instance per database file.
type Store struct {
	db       *sql.DB
	notifier *Notifier
}

// Open opens (or creates) the SQLite database at dbPath, applies pending
// migrations and returns a ready Store.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// foreign_keys is off by default in SQLite; the cascade and set-null
	// rules of the schema depend on it.
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:       db,
		notifier: NewNotifier(),
	}, nil
}

// DB exposes the underlying handle to the repository layer.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Notifier exposes the change notifier shared by all repositories.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
