// Package sqlite provides a SQLite-backed command history store using
// modernc.org/sqlite (pure Go, no CGO).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/recall/internal/core/history"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// busyTimeout is how long, in milliseconds, a writer waits on a locked database.
const busyTimeout = 5000

// HistoryStore implements history.Store backed by SQLite.
type HistoryStore struct {
	db *sql.DB
}

var _ history.Store = (*HistoryStore)(nil)

// OpenHistoryStore opens (creating if needed) the database at path and
// migrates its schema. Callers must Close the store when done.
func OpenHistoryStore(ctx context.Context, path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// One connection so PRAGMAs apply to every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &HistoryStore{db: db}, nil
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Load returns all history entries, oldest first.
func (s *HistoryStore) Load(ctx context.Context) ([]history.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT command, multiline, recorded_at
		FROM history_entries
		ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []history.Entry{}
	for rows.Next() {
		var (
			e          history.Entry
			multiline  int
			recordedAt string
		)
		if err := rows.Scan(&e.Command, &multiline, &recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan history entry: %w", err)
		}

		e.Multiline = multiline != 0
		if recordedAt != "" {
			e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
			if err != nil {
				return nil, fmt.Errorf("sqlite: parse recorded_at %q: %w", recordedAt, err)
			}
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load history rows: %w", err)
	}

	return entries, nil
}

// Save replaces the stored entries in a single transaction.
func (s *HistoryStore) Save(ctx context.Context, entries []history.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM history_entries"); err != nil {
		return fmt.Errorf("sqlite: clear history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history_entries (seq, command, multiline, recorded_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range entries {
		multiline := 0
		if e.Multiline {
			multiline = 1
		}

		var recordedAt string
		if !e.RecordedAt.IsZero() {
			recordedAt = e.RecordedAt.UTC().Format(time.RFC3339Nano)
		}

		if _, err := stmt.ExecContext(ctx, i, e.Command, multiline, recordedAt); err != nil {
			return fmt.Errorf("sqlite: insert history entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit save: %w", err)
	}
	return nil
}

// Clear removes all history entries.
func (s *HistoryStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM history_entries"); err != nil {
		return fmt.Errorf("sqlite: clear history: %w", err)
	}
	return nil
}
