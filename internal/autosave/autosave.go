// Package autosave keeps a command history and its store in sync: it seeds
// the history at startup and writes it back whenever it is dirty, either on
// demand or on a fixed interval.
package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/hay-kot/recall/internal/core/history"
)

// Saver persists a History to a Store.
type Saver struct {
	history *history.History
	store   history.Store
	log     zerolog.Logger

	mu   sync.Mutex // held for the duration of one save
	cron *cron.Cron
}

// New creates a Saver for h backed by store.
func New(h *history.History, store history.Store, log zerolog.Logger) *Saver {
	return &Saver{
		history: h,
		store:   store,
		log:     log,
	}
}

// Load replaces the history entries with the ones in the store.
func (s *Saver) Load(ctx context.Context) error {
	entries, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	s.history.Seed(entries)
	s.log.Debug().Int("entries", len(entries)).Msg("history loaded")
	return nil
}

// SaveIfDirty writes the history to the store if it changed since the last
// save. It reports whether a write happened.
func (s *Saver) SaveIfDirty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveIfDirty(ctx)
}

func (s *Saver) saveIfDirty(ctx context.Context) (bool, error) {
	if !s.history.Dirty() {
		return false, nil
	}

	entries, gen := s.history.Snapshot()
	if err := s.store.Save(ctx, entries); err != nil {
		return false, fmt.Errorf("save history: %w", err)
	}
	s.history.MarkSaved(gen)

	s.log.Debug().Int("entries", len(entries)).Msg("history saved")
	return true, nil
}

// Start saves the history every interval until Stop is called. A tick that
// finds a save still running is skipped.
func (s *Saver) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %s", interval)
	}
	if s.cron != nil {
		return fmt.Errorf("autosave already started")
	}

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if !s.mu.TryLock() {
			s.log.Warn().Msg("previous history save still running, skipping tick")
			return
		}
		defer s.mu.Unlock()

		if _, err := s.saveIfDirty(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("autosave failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule autosave: %w", err)
	}

	s.cron = c
	s.cron.Start()
	s.log.Info().Dur("interval", interval).Msg("history autosave started")
	return nil
}

// Stop halts the periodic save, waits for an in-flight save to finish and
// writes any pending changes.
func (s *Saver) Stop(ctx context.Context) error {
	if s.cron != nil {
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		s.cron = nil
		s.log.Debug().Msg("history autosave stopped")
	}

	_, err := s.SaveIfDirty(ctx)
	return err
}
