// Package console connects console input events to the command history and
// to the evaluator that runs submitted commands.
package console

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/recall/internal/core/history"
)

// Saver persists the history when it has unsaved changes.
type Saver interface {
	SaveIfDirty(ctx context.Context) (bool, error)
}

// Session is one console's state: its history, the text typed before recall
// started, and where submitted commands go.
type Session struct {
	history      *history.History
	eval         Evaluator
	saver        Saver
	saveOnSubmit bool
	log          zerolog.Logger

	// search is the text typed so far. Recall uses it as the prefix (or
	// pattern) and it does not change while the user walks the history.
	search string
}

// New creates a Session. saver may be nil, in which case Record never saves.
func New(h *history.History, eval Evaluator, saver Saver, saveOnSubmit bool, log zerolog.Logger) *Session {
	return &Session{
		history:      h,
		eval:         eval,
		saver:        saver,
		saveOnSubmit: saveOnSubmit,
		log:          log,
	}
}

// History returns the session's command history.
func (s *Session) History() *history.History {
	return s.history
}

// Record logs a submitted line and gets the session ready for the next one.
// Blank lines are not logged. When the session saves on submit, the history
// is written before Record returns; a failed save is logged, not returned.
func (s *Session) Record(ctx context.Context, line string) bool {
	s.search = ""
	defer s.history.ResetPointer()

	if strings.TrimSpace(line) == "" {
		return false
	}

	s.history.Add(line, strings.Contains(line, "\n"))

	if s.saveOnSubmit && s.saver != nil {
		if _, err := s.saver.SaveIfDirty(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to save history")
		}
	}

	return true
}

// Evaluate runs a line through the evaluator.
func (s *Session) Evaluate(ctx context.Context, line string) (Result, error) {
	s.log.Debug().Str("command", line).Msg("evaluating")
	return s.eval.Eval(ctx, line)
}

// Submit records a line and evaluates it. Blank lines return a zero Result.
func (s *Session) Submit(ctx context.Context, line string) (Result, error) {
	if !s.Record(ctx, line) {
		return Result{}, nil
	}
	return s.Evaluate(ctx, line)
}

// Input tells the session the user edited the input; value becomes the
// search text and the recall cursor goes idle.
func (s *Session) Input(value string) {
	s.search = value
	s.history.ResetPointer()
}

// Backspace leaves recall but keeps the search text, so the next recall
// still filters by what was typed before recall started.
func (s *Session) Backspace() {
	s.history.ResetPointer()
}

// Escape clears the search text and leaves recall.
func (s *Session) Escape() {
	s.search = ""
	s.history.ResetPointer()
}

// Previous recalls the previous command matching the search text. With regex
// the search text is used as a regular expression.
func (s *Session) Previous(regex bool) (string, bool) {
	r, ok := s.history.Previous(s.search, regex)
	return r.Command, ok
}

// Next recalls the next command matching the search text.
func (s *Session) Next(regex bool) (string, bool) {
	r, ok := s.history.Next(s.search, regex)
	return r.Command, ok
}

// Search returns the current search text.
func (s *Session) Search() string {
	return s.search
}
