package history

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// GroupingPolicy decides what happens to a repeated command when command
// grouping is enabled.
type GroupingPolicy string

const (
	// GroupKeepFirst drops the repeated command; the earlier entry stays where it is.
	GroupKeepFirst GroupingPolicy = "keep-first"
	// GroupMoveToEnd removes the earlier entry and appends the command again,
	// the way most shells promote a repeated command.
	GroupMoveToEnd GroupingPolicy = "move-to-end"
)

// Options configures a History. They are validated once by New and never
// change afterwards.
type Options struct {
	// Enabled turns command logging on. A disabled history still answers
	// recall calls for entries seeded from a store.
	Enabled bool
	// CommandGrouping suppresses commands already present in the history.
	CommandGrouping bool
	// GroupingPolicy applies when CommandGrouping is set. Empty means GroupKeepFirst.
	GroupingPolicy GroupingPolicy
	// MinCommandSize is the minimum command length, in characters, that gets logged.
	MinCommandSize int
	// MaxHistorySize caps the number of entries. 0 means unlimited.
	MaxHistorySize int
	// Ignore lists glob patterns; matching commands are never logged.
	Ignore []string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Enabled:         false,
		CommandGrouping: false,
		GroupingPolicy:  GroupKeepFirst,
		MinCommandSize:  4,
		MaxHistorySize:  0,
	}
}

// Validate reports every invalid field as criterio.FieldErrors.
func (o Options) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if o.MinCommandSize < 0 {
		errs = errs.Append("min_command_size", fmt.Errorf("must not be negative, got %d", o.MinCommandSize))
	}

	if o.MaxHistorySize < 0 {
		errs = errs.Append("max_history_size", fmt.Errorf("must not be negative, got %d", o.MaxHistorySize))
	}

	switch o.GroupingPolicy {
	case "", GroupKeepFirst, GroupMoveToEnd:
	default:
		errs = errs.Append("grouping_policy", fmt.Errorf("unknown policy %q (want %s or %s)", o.GroupingPolicy, GroupKeepFirst, GroupMoveToEnd))
	}

	for i, pattern := range o.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("ignore[%d]", i), fmt.Errorf("invalid glob pattern %q", pattern))
		}
	}

	return errs.ToError()
}

// slashStandIn replaces '/' before glob matching. doublestar treats '/' as a
// path separator that '*' cannot cross; commands are plain text, so a
// pattern like "cd *" must match "cd /tmp".
const slashStandIn = "\x00"

// ignored reports whether command matches one of the ignore patterns.
func (o Options) ignored(command string) bool {
	command = strings.ReplaceAll(command, "/", slashStandIn)
	for _, pattern := range o.Ignore {
		pattern = strings.ReplaceAll(pattern, "/", slashStandIn)
		if ok, _ := doublestar.Match(pattern, command); ok {
			return true
		}
	}
	return false
}
