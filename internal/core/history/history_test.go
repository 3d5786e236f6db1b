package history

import (
	"sync"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHistory returns an enabled history with no minimum command size, so
// single-letter commands are logged, after applying mutate to the options.
func newTestHistory(t *testing.T, mutate func(*Options)) *History {
	t.Helper()

	opts := DefaultOptions()
	opts.Enabled = true
	opts.MinCommandSize = 0
	if mutate != nil {
		mutate(&opts)
	}

	h, err := New(opts)
	require.NoError(t, err)

	clock := time.Date(2024, 4, 3, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return h
}

func commands(h *History) []string {
	var out []string
	for _, e := range h.Entries() {
		out = append(out, e.Command)
	}
	return out
}

func addAll(h *History, cmds ...string) {
	for _, c := range cmds {
		h.Add(c, false)
	}
}

func TestAdd_Disabled(t *testing.T) {
	h := newTestHistory(t, func(o *Options) { o.Enabled = false })

	h.Add("console.log(1)", false)

	assert.Equal(t, 0, h.Len())
	assert.False(t, h.Dirty())
}

func TestAdd_AppendsAndGoesIdle(t *testing.T) {
	h := newTestHistory(t, nil)

	h.Add("first", false)
	h.Add("second\nline", true)

	require.Equal(t, 2, h.Len())
	assert.Equal(t, 2, h.Cursor())
	assert.True(t, h.Dirty())

	entries := h.Entries()
	assert.False(t, entries[0].Multiline)
	assert.True(t, entries[1].Multiline)
	assert.True(t, entries[1].RecordedAt.After(entries[0].RecordedAt))
}

func TestAdd_MinCommandSize(t *testing.T) {
	h := newTestHistory(t, func(o *Options) { o.MinCommandSize = 4 })

	h.Add("ab", false)
	assert.Equal(t, 0, h.Len())

	h.Add("abcd", false)
	assert.Equal(t, 1, h.Len())

	// Length is counted in characters, not bytes.
	h.Add("ééé", false)
	assert.Equal(t, 1, h.Len())
}

func TestAdd_Grouping(t *testing.T) {
	h := newTestHistory(t, func(o *Options) { o.CommandGrouping = true })

	h.Add("x", false)
	h.Add("y", false)
	h.Add("x", false)

	assert.Equal(t, []string{"x", "y"}, commands(h))

	got, ok := h.Get(0)
	require.True(t, ok)
	assert.Equal(t, "x", got.Command)
	assert.Equal(t, 0, got.Position)
}

func TestAdd_GroupingSuppressedDoesNotTouchState(t *testing.T) {
	h := newTestHistory(t, func(o *Options) { o.CommandGrouping = true })

	h.Add("x", false)
	_, gen := h.Snapshot()
	h.MarkSaved(gen)
	h.Previous("", false)

	h.Add("x", false)

	assert.False(t, h.Dirty())
	assert.Equal(t, 0, h.Cursor(), "suppressed add must not reset the cursor")
}

func TestAdd_NoGrouping(t *testing.T) {
	h := newTestHistory(t, nil)

	h.Add("x", false)
	h.Add("x", false)

	assert.Equal(t, 2, h.Len())
}

func TestAdd_GroupingMoveToEnd(t *testing.T) {
	h := newTestHistory(t, func(o *Options) {
		o.CommandGrouping = true
		o.GroupingPolicy = GroupMoveToEnd
	})

	addAll(h, "x", "y", "z", "x")

	assert.Equal(t, []string{"y", "z", "x"}, commands(h))
	assert.Equal(t, 3, h.Cursor())
}

func TestAdd_MaxHistorySize(t *testing.T) {
	h := newTestHistory(t, func(o *Options) { o.MaxHistorySize = 3 })

	addAll(h, "a", "b", "c", "d")

	assert.Equal(t, []string{"b", "c", "d"}, commands(h))
	assert.Equal(t, 3, h.Cursor())
}

func TestAdd_EvictedCommandCanBeGroupedAgain(t *testing.T) {
	h := newTestHistory(t, func(o *Options) {
		o.MaxHistorySize = 2
		o.CommandGrouping = true
	})

	addAll(h, "a", "b", "c", "a")

	assert.Equal(t, []string{"c", "a"}, commands(h))
}

func TestAdd_Ignore(t *testing.T) {
	h := newTestHistory(t, func(o *Options) {
		o.Ignore = []string{"exit", "clear*", "git *"}
	})

	addAll(h, "exit", "clear -x", "git status", "ls -la", "exit now")

	assert.Equal(t, []string{"ls -la", "exit now"}, commands(h))
}

func TestAdd_IgnoreMatchesAcrossSlashes(t *testing.T) {
	h := newTestHistory(t, func(o *Options) {
		o.Ignore = []string{"cd *", "git *", "*/secret/*", "rm /tmp/[ab]"}
	})

	addAll(h,
		"cd /tmp",
		"git log a/b",
		"cat ~/secret/token",
		"rm /tmp/a",
		"rm /tmp/c",
		"ls /var/log",
	)

	assert.Equal(t, []string{"rm /tmp/c", "ls /var/log"}, commands(h))
}

func TestResetPointer(t *testing.T) {
	tests := []struct {
		name string
		cmds []string
	}{
		{name: "empty", cmds: nil},
		{name: "one entry", cmds: []string{"a"}},
		{name: "several entries", cmds: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHistory(t, nil)
			addAll(h, tt.cmds...)
			h.Previous("", false)
			h.Previous("", false)

			h.ResetPointer()

			assert.Equal(t, h.Len(), h.Cursor())
		})
	}
}

func TestPrevious_Wraparound(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "a", "b", "c")

	var got []string
	for range 4 {
		r, ok := h.Previous("", false)
		require.True(t, ok)
		got = append(got, r.Command)
	}

	assert.Equal(t, []string{"c", "b", "a", "c"}, got)
}

func TestNext_Wraparound(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "a", "b", "c")

	var got []string
	for range 4 {
		r, ok := h.Next("", false)
		require.True(t, ok)
		got = append(got, r.Command)
	}

	assert.Equal(t, []string{"a", "b", "c", "a"}, got)
}

func TestPrevious_PositionMatchesCursor(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "a", "b", "c")

	r, ok := h.Previous("", false)
	require.True(t, ok)
	assert.Equal(t, 2, r.Position)
	assert.Equal(t, 2, h.Cursor())
}

func TestPrevious_EmptyHistory(t *testing.T) {
	h := newTestHistory(t, nil)

	_, ok := h.Previous("", false)
	assert.False(t, ok)
	_, ok = h.Next("x", true)
	assert.False(t, ok)
	assert.Equal(t, 0, h.Cursor())
}

func TestPrevious_PrefixSearch(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "log(1)", "log(2)", "err(3)")

	r, ok := h.Previous("log", false)
	require.True(t, ok)
	assert.Equal(t, "log(2)", r.Command)
	assert.Equal(t, 1, r.Position)

	r, ok = h.Previous("log", false)
	require.True(t, ok)
	assert.Equal(t, "log(1)", r.Command)

	// Wraps past err(3) back to the newest match.
	r, ok = h.Previous("log", false)
	require.True(t, ok)
	assert.Equal(t, "log(2)", r.Command)
}

func TestNext_PrefixSearch(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "log(1)", "err(2)", "log(3)")

	r, ok := h.Next("log", false)
	require.True(t, ok)
	assert.Equal(t, "log(1)", r.Command)

	r, ok = h.Next("log", false)
	require.True(t, ok)
	assert.Equal(t, "log(3)", r.Command)
}

func TestPrevious_NoMatchLeavesCursorOnFirstStep(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "alpha", "beta", "gamma")

	_, ok := h.Previous("zzz", false)
	assert.False(t, ok)
	assert.Equal(t, 2, h.Cursor())

	_, ok = h.Previous("zzz", false)
	assert.False(t, ok)
	assert.Equal(t, 1, h.Cursor())
}

func TestPrevious_RegexSearch(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "log(1)", "log(2)", "err(3)", "warn(4)")

	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{name: "anywhere in command", pattern: `\(3\)`, want: "err(3)"},
		{name: "anchored", pattern: `^log`, want: "log(2)"},
		{name: "lookahead", pattern: `log(?=\(1)`, want: "log(1)"},
		{name: "alternation", pattern: `err|warn`, want: "warn(4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.ResetPointer()

			r, ok := h.Previous(tt.pattern, true)
			require.True(t, ok)
			assert.Equal(t, tt.want, r.Command)
		})
	}
}

func TestPrevious_InvalidRegex(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "[a]", "b", "c")

	assert.NotPanics(t, func() {
		_, ok := h.Previous("[", true)
		assert.False(t, ok)
	})

	// The same text as a prefix still matches.
	h.ResetPointer()
	r, ok := h.Previous("[", false)
	require.True(t, ok)
	assert.Equal(t, "[a]", r.Command)
}

func TestGet(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "a", "b", "c")

	r, ok := h.Get(1)
	require.True(t, ok)
	assert.Equal(t, "b", r.Command)
	assert.Equal(t, 1, r.Position)
	assert.Equal(t, 1, h.Cursor())

	for _, idx := range []int{-1, 3, 42} {
		_, ok := h.Get(idx)
		assert.False(t, ok, "index %d", idx)
		assert.Equal(t, 1, h.Cursor(), "index %d must not move the cursor", idx)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	h := newTestHistory(t, nil)
	h.Add("a", false)

	r, ok := h.Get(0)
	require.True(t, ok)
	r.Command = "changed"

	assert.Equal(t, []string{"a"}, commands(h))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []string
	}{
		{name: "never grows", n: 10, want: []string{"a", "b", "c"}},
		{name: "same length", n: 3, want: []string{"a", "b", "c"}},
		{name: "keeps oldest", n: 1, want: []string{"a"}},
		{name: "zero empties", n: 0, want: nil},
		{name: "negative empties", n: -5, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHistory(t, nil)
			addAll(h, "a", "b", "c")

			got := h.Truncate(tt.n)

			assert.Equal(t, len(tt.want), got)
			assert.Equal(t, tt.want, commands(h))
			assert.LessOrEqual(t, h.Cursor(), h.Len())
		})
	}
}

func TestTruncate_NoOpKeepsClean(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "a", "b")
	_, gen := h.Snapshot()
	h.MarkSaved(gen)

	h.Truncate(5)

	assert.False(t, h.Dirty())
}

func TestTruncate_AllowsGroupedCommandAgain(t *testing.T) {
	h := newTestHistory(t, func(o *Options) { o.CommandGrouping = true })
	addAll(h, "a", "b")

	h.Truncate(1)
	h.Add("b", false)

	assert.Equal(t, []string{"a", "b"}, commands(h))
}

func TestSnapshot_MarkSaved(t *testing.T) {
	h := newTestHistory(t, nil)
	h.Add("a", false)

	entries, gen := h.Snapshot()
	require.Len(t, entries, 1)

	h.Add("b", false)
	h.MarkSaved(gen)
	assert.True(t, h.Dirty(), "add after snapshot must keep the history dirty")

	_, gen = h.Snapshot()
	h.MarkSaved(gen)
	assert.False(t, h.Dirty())
}

func TestSeed(t *testing.T) {
	h := newTestHistory(t, func(o *Options) {
		o.CommandGrouping = true
		o.MaxHistorySize = 2
	})
	h.Add("old", false)

	h.Seed([]Entry{{Command: "a"}, {Command: "a"}, {Command: "b"}})

	assert.Equal(t, []string{"a", "a", "b"}, commands(h), "seeded entries are kept verbatim")
	assert.Equal(t, 3, h.Cursor())
	assert.False(t, h.Dirty())

	h.Add("b", false)
	assert.Equal(t, 3, h.Len(), "seeded commands take part in grouping")
}

func TestMatches(t *testing.T) {
	h := newTestHistory(t, nil)
	addAll(h, "log(1)", "err(2)", "log(3)")
	h.Previous("", false)

	got := h.Matches("log", false)

	require.Len(t, got, 2)
	assert.Equal(t, "log(3)", got[0].Command)
	assert.Equal(t, 2, got[0].Position)
	assert.Equal(t, "log(1)", got[1].Command)
	assert.Equal(t, 2, h.Cursor(), "Matches must not move the cursor")

	assert.Len(t, h.Matches("", false), 3)
	assert.Empty(t, h.Matches("(", true))
}

func TestHistory_ConcurrentSave(t *testing.T) {
	h := newTestHistory(t, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 100 {
			h.Add("cmd", false)
		}
	}()
	go func() {
		defer wg.Done()
		for range 100 {
			if h.Dirty() {
				_, gen := h.Snapshot()
				h.MarkSaved(gen)
			}
		}
	}()
	wg.Wait()

	assert.Equal(t, 100, h.Len())
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		field  string
	}{
		{name: "negative min size", mutate: func(o *Options) { o.MinCommandSize = -1 }, field: "min_command_size"},
		{name: "negative max size", mutate: func(o *Options) { o.MaxHistorySize = -1 }, field: "max_history_size"},
		{name: "unknown policy", mutate: func(o *Options) { o.GroupingPolicy = "newest" }, field: "grouping_policy"},
		{name: "bad glob", mutate: func(o *Options) { o.Ignore = []string{"[abc"} }, field: "ignore[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)

			_, err := New(opts)

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.field, fieldErrs[0].Field)
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.False(t, opts.Enabled)
	assert.False(t, opts.CommandGrouping)
	assert.Equal(t, 4, opts.MinCommandSize)
	assert.Equal(t, 0, opts.MaxHistorySize)
	assert.NoError(t, opts.Validate())
}
