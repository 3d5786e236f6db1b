// Package jsonfile stores the command history as a JSON file guarded by a
// flock(2) lock file.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hay-kot/recall/internal/core/history"
)

// historyFile is the root JSON structure stored on disk.
type historyFile struct {
	Entries []history.Entry `json:"entries"`
}

// HistoryStore implements history.Store using a JSON file for persistence.
// Writes take an exclusive file lock so consoles sharing one history file do
// not interleave.
type HistoryStore struct {
	path string
	mu   sync.RWMutex
}

var _ history.Store = (*HistoryStore)(nil)

// NewHistoryStore creates a new JSON file history store at the given path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *HistoryStore) Path() string {
	return s.path
}

// Load returns all history entries, oldest first.
func (s *HistoryStore) Load(ctx context.Context) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var f historyFile
	err := withSharedLock(s.path, func() error {
		var err error
		f, err = s.load()
		return err
	})
	if err != nil {
		return nil, err
	}

	if f.Entries == nil {
		return []history.Entry{}, nil
	}
	return f.Entries, nil
}

// Save replaces the stored entries.
func (s *HistoryStore) Save(ctx context.Context, entries []history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries == nil {
		entries = []history.Entry{}
	}

	return withExclusiveLock(s.path, func() error {
		return s.save(historyFile{Entries: entries})
	})
}

// Clear removes all history entries.
func (s *HistoryStore) Clear(ctx context.Context) error {
	return s.Save(ctx, nil)
}

// load reads the history file from disk.
// Returns empty historyFile if file doesn't exist.
func (s *HistoryStore) load() (historyFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return historyFile{}, nil
		}
		return historyFile{}, fmt.Errorf("read history file: %w", err)
	}

	if len(data) == 0 {
		return historyFile{}, nil
	}

	var f historyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return historyFile{}, fmt.Errorf("history file corrupted (run 'recall history clear' to reset): %w", err)
	}

	return f, nil
}

// save writes the history file to disk atomically.
func (s *HistoryStore) save(f historyFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename history file: %w", err)
	}

	return nil
}
