package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hay-kot/recall/internal/autosave"
	"github.com/hay-kot/recall/internal/core/config"
	"github.com/hay-kot/recall/internal/core/history"
	"github.com/hay-kot/recall/internal/store/jsonfile"
	"github.com/hay-kot/recall/internal/store/sqlite"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// History is seeded from Store in the Before hook; Saver writes it back.
	History *history.History
	Store   history.Store
	Saver   *autosave.Saver

	closeStore func() error
	loadErr    error
}

// Setup builds the history, its store and saver from the loaded config and
// seeds the history from the store. A store that cannot be read does not
// fail Setup; commands that need the saved history check Loaded.
func (f *Flags) Setup(ctx context.Context, logger zerolog.Logger) error {
	if f.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	h, err := history.New(f.Config.HistoryOptions())
	if err != nil {
		return fmt.Errorf("create history: %w", err)
	}

	store, closeStore, err := OpenHistoryStore(ctx, f.Config)
	if err != nil {
		return err
	}

	f.History = h
	f.Store = store
	f.closeStore = closeStore
	f.Saver = autosave.New(h, store, logger.With().Str("component", "autosave").Logger())

	if err := f.Saver.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("history not loaded")
		f.loadErr = err
	}
	return nil
}

// Loaded returns the error from reading the saved history, if any.
func (f *Flags) Loaded() error {
	return f.loadErr
}

// Close releases the history store.
func (f *Flags) Close() error {
	if f.closeStore == nil {
		return nil
	}
	err := f.closeStore()
	f.closeStore = nil
	return err
}

// OpenHistoryStore opens the history store selected by the config backend.
// The returned func closes it.
func OpenHistoryStore(ctx context.Context, cfg *config.Config) (history.Store, func() error, error) {
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.History.Backend {
	case config.BackendJSON:
		return jsonfile.NewHistoryStore(path), func() error { return nil }, nil
	case config.BackendSQLite:
		store, err := sqlite.OpenHistoryStore(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("open history store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "recall", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "recall")
}
