// Package history implements the console command history: an ordered log of
// entered commands with a recall cursor, prefix and regex search, command
// grouping and size capping.
package history

import (
	"fmt"
	"slices"
	"sync"
	"time"
	"unicode/utf8"
)

// Entry is a command recorded in the history.
type Entry struct {
	Command    string    `json:"command"`
	Multiline  bool      `json:"multiline"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Recall is a copy of an entry together with its position in the history.
type Recall struct {
	Entry
	Position int `json:"position"`
}

// History holds the ordered command log and the recall cursor.
//
// The cursor ranges over [0, Len()]. Len() is the idle state; any other value
// means a recall is in progress. Every exported method holds the lock for the
// whole call, so a periodic saver may run alongside the input loop.
type History struct {
	mu      sync.Mutex
	opts    Options
	entries []Entry
	cursor  int
	seen    map[string]int // command -> last index it was inserted at
	dirty   bool
	gen     uint64 // bumped on every change, see Snapshot
	now     func() time.Time
}

// New creates an empty history. It returns an error if opts are invalid.
func New(opts Options) (*History, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid history options: %w", err)
	}

	opts.Ignore = slices.Clone(opts.Ignore)
	if opts.GroupingPolicy == "" {
		opts.GroupingPolicy = GroupKeepFirst
	}

	return &History{
		opts: opts,
		seen: make(map[string]int),
		now:  time.Now,
	}, nil
}

// Options returns the options the history was created with.
func (h *History) Options() Options {
	o := h.opts
	o.Ignore = slices.Clone(h.opts.Ignore)
	return o
}

// Add logs a command. It is a no-op when the history is disabled, when the
// command is shorter than MinCommandSize or matches an ignore pattern, and,
// under GroupKeepFirst, when grouping is on and the command was already seen.
func (h *History) Add(command string, multiline bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.opts.Enabled {
		return
	}

	if utf8.RuneCountInString(command) < h.opts.MinCommandSize {
		return
	}

	if h.opts.ignored(command) {
		return
	}

	if h.opts.CommandGrouping {
		if _, ok := h.seen[command]; ok {
			if h.opts.GroupingPolicy != GroupMoveToEnd {
				return
			}
			h.entries = slices.DeleteFunc(h.entries, func(e Entry) bool {
				return e.Command == command
			})
		}
	}

	h.entries = append(h.entries, Entry{
		Command:    command,
		Multiline:  multiline,
		RecordedAt: h.now(),
	})

	if h.opts.MaxHistorySize > 0 && len(h.entries) > h.opts.MaxHistorySize {
		drop := len(h.entries) - h.opts.MaxHistorySize
		h.entries = slices.Delete(h.entries, 0, drop)
	}

	h.rebuildSeen()
	h.cursor = len(h.entries)
	h.markDirty()
}

// Previous moves the cursor one entry back, wrapping from the oldest entry to
// the newest. With a non-empty search it keeps stepping back until an entry
// matches, trying every entry at most once. Matching is a prefix test, or an
// ECMAScript regex test anywhere in the command when regex is true.
//
// When nothing matches it returns false and the cursor stays on the first
// position it stepped to.
func (h *History) Previous(search string, regex bool) (Recall, bool) {
	return h.step(-1, search, regex)
}

// Next is Previous moving forward, wrapping from the newest entry to the oldest.
func (h *History) Next(search string, regex bool) (Recall, bool) {
	return h.step(+1, search, regex)
}

func (h *History) step(dir int, search string, regex bool) (Recall, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return Recall{}, false
	}

	h.cursor = h.wrap(h.cursor + dir)

	if search != "" {
		pos, ok := h.find(newMatcher(search, regex), dir)
		if !ok {
			return Recall{}, false
		}
		h.cursor = pos
	}

	return h.get(h.cursor)
}

// find checks entries starting at the cursor, moving in dir, until m matches
// or the search comes back around to where it started.
func (h *History) find(m matcher, dir int) (int, bool) {
	pos := h.cursor
	for range len(h.entries) {
		if m.match(h.entries[pos].Command) {
			return pos, true
		}
		pos = h.wrap(pos + dir)
	}
	return h.cursor, false
}

func (h *History) wrap(pos int) int {
	switch {
	case pos < 0:
		return len(h.entries) - 1
	case pos >= len(h.entries):
		return 0
	default:
		return pos
	}
}

// ResetPointer puts the cursor back in the idle state.
func (h *History) ResetPointer() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor = len(h.entries)
}

// Get returns the entry at index and moves the cursor there. Out of range
// indexes return false and leave the cursor alone.
func (h *History) Get(index int) (Recall, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.get(index)
}

func (h *History) get(index int) (Recall, bool) {
	if index < 0 || index >= len(h.entries) {
		return Recall{}, false
	}

	h.cursor = index
	return Recall{Entry: h.entries[index], Position: index}, true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Truncate shrinks the history to n entries, keeping the oldest ones, and
// returns the resulting length. It never grows the history; Truncate(0)
// empties it.
func (h *History) Truncate(n int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n = max(n, 0)
	if n < len(h.entries) {
		h.entries = slices.Clip(h.entries[:n])
		h.rebuildSeen()
		h.cursor = min(h.cursor, n)
		h.markDirty()
	}

	return len(h.entries)
}

// Cursor returns the current recall position.
func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.entries)
}

// Matches returns every entry matching search, newest first, without moving
// the cursor. An empty search matches everything.
func (h *History) Matches(search string, regex bool) []Recall {
	h.mu.Lock()
	defer h.mu.Unlock()

	m := newMatcher(search, regex)

	var out []Recall
	for i := len(h.entries) - 1; i >= 0; i-- {
		if search != "" && !m.match(h.entries[i].Command) {
			continue
		}
		out = append(out, Recall{Entry: h.entries[i], Position: i})
	}
	return out
}

// Dirty reports whether the history changed since it was last saved.
func (h *History) Dirty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dirty
}

// Snapshot returns a copy of the entries and a generation number to hand
// back to MarkSaved once the copy has been persisted.
func (h *History) Snapshot() ([]Entry, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.entries), h.gen
}

// MarkSaved clears the dirty flag if nothing changed since the Snapshot that
// returned gen.
func (h *History) MarkSaved(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen == h.gen {
		h.dirty = false
	}
}

// Seed replaces the entries with ones loaded from a store. Entries are taken
// verbatim: grouping and the size cap are not re-applied. The cursor goes
// idle and the history is clean afterwards.
func (h *History) Seed(entries []Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = slices.Clone(entries)
	h.rebuildSeen()
	h.cursor = len(h.entries)
	h.dirty = false
	h.gen++
}

func (h *History) markDirty() {
	h.dirty = true
	h.gen++
}

func (h *History) rebuildSeen() {
	clear(h.seen)
	for i, e := range h.entries {
		h.seen[e.Command] = i
	}
}
