package history

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a history position does not exist.
var ErrNotFound = errors.New("history entry not found")

// Store defines persistence operations for command history. Stores keep
// entries verbatim and in order; grouping and size rules belong to History.
type Store interface {
	// Load returns all persisted entries, oldest first. A store that has never
	// been written returns an empty slice.
	Load(ctx context.Context) ([]Entry, error)
	// Save replaces the persisted entries with the given ones.
	Save(ctx context.Context, entries []Entry) error
	// Clear removes all persisted entries.
	Clear(ctx context.Context) error
}
