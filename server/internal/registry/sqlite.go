package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Registry backed by a local sqlite database, for deployments
// where known threads should survive a server restart.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the registry database at the given path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS threads (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create threads table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Has reports whether the thread id has been registered.
func (s *SQLite) Has(ctx context.Context, threadID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM threads WHERE id = ?", threadID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up thread: %w", err)
	}
	return count > 0, nil
}

// Add registers the thread id.
func (s *SQLite) Add(ctx context.Context, threadID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO threads (id, created_at) VALUES (?, ?)",
		threadID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to register thread: %w", err)
	}
	return nil
}
