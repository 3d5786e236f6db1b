// Package config handles configuration loading and validation for recall.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/recall/internal/core/history"
	"github.com/hay-kot/recall/pkg/tmpl"
)

// History storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	History HistoryConfig `yaml:"history"`
	Console ConsoleConfig `yaml:"console"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// HistoryConfig configures command history recording and persistence.
type HistoryConfig struct {
	Enabled                bool                   `yaml:"enabled"`
	Autosave               bool                   `yaml:"autosave"`
	AutosaveInterval       int                    `yaml:"autosave_interval"` // seconds
	MinCommandSize         int                    `yaml:"min_command_size"`
	MaxHistorySize         int                    `yaml:"max_history_size"` // 0 = unlimited
	CommandGrouping        bool                   `yaml:"command_grouping"`
	GroupingPolicy         history.GroupingPolicy `yaml:"grouping_policy"`
	HistoryFile            string                 `yaml:"history_file"` // template, relative to DataDir
	Backend                string                 `yaml:"backend"`
	NewCommandSavesHistory bool                   `yaml:"new_command_saves_history"`
	Ignore                 []string               `yaml:"ignore"`
}

// ConsoleConfig configures the interactive console.
type ConsoleConfig struct {
	Shell          string `yaml:"shell"`
	Prompt         string `yaml:"prompt"`
	MaxOutputLines int    `yaml:"max_output_lines"`
}

// HistoryFileData defines available fields for the history_file template.
type HistoryFileData struct {
	User string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	opts := history.DefaultOptions()

	return Config{
		History: HistoryConfig{
			Enabled:                opts.Enabled,
			Autosave:               false,
			AutosaveInterval:       300,
			MinCommandSize:         opts.MinCommandSize,
			MaxHistorySize:         opts.MaxHistorySize,
			CommandGrouping:        opts.CommandGrouping,
			GroupingPolicy:         opts.GroupingPolicy,
			Backend:                BackendJSON,
			NewCommandSavesHistory: true,
		},
		Console: ConsoleConfig{
			Shell:          "sh",
			Prompt:         "> ",
			MaxOutputLines: 1000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.History.AutosaveInterval == 0 {
		c.History.AutosaveInterval = defaults.History.AutosaveInterval
	}
	if c.History.Backend == "" {
		c.History.Backend = defaults.History.Backend
	}
	if c.History.GroupingPolicy == "" {
		c.History.GroupingPolicy = defaults.History.GroupingPolicy
	}
	if c.History.HistoryFile == "" {
		ext := ".json"
		if c.History.Backend == BackendSQLite {
			ext = ".db"
		}
		c.History.HistoryFile = "history.{{ .User }}" + ext
	}
	if c.Console.Shell == "" {
		c.Console.Shell = defaults.Console.Shell
	}
	if c.Console.Prompt == "" {
		c.Console.Prompt = defaults.Console.Prompt
	}
	if c.Console.MaxOutputLines == 0 {
		c.Console.MaxOutputLines = defaults.Console.MaxOutputLines
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("data directory cannot be empty"))
	}

	if c.History.Autosave && c.History.AutosaveInterval < 1 {
		errs = errs.Append("history.autosave_interval", fmt.Errorf("must be at least 1 second, got %d", c.History.AutosaveInterval))
	}

	switch c.History.Backend {
	case BackendJSON, BackendSQLite:
	default:
		errs = errs.Append("history.backend", fmt.Errorf("unknown backend %q (want %s or %s)", c.History.Backend, BackendJSON, BackendSQLite))
	}

	if err := c.HistoryOptions().Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = errs.Append("history."+fe.Field, fe.Err)
			}
		} else {
			errs = errs.Append("history", err)
		}
	}

	if c.Console.Shell == "" {
		errs = errs.Append("console.shell", fmt.Errorf("cannot be empty"))
	}

	if c.Console.MaxOutputLines < 0 {
		errs = errs.Append("console.max_output_lines", fmt.Errorf("must not be negative, got %d", c.Console.MaxOutputLines))
	}

	return errs.ToError()
}

// HistoryOptions converts the history section into history.Options.
func (c *Config) HistoryOptions() history.Options {
	return history.Options{
		Enabled:         c.History.Enabled,
		CommandGrouping: c.History.CommandGrouping,
		GroupingPolicy:  c.History.GroupingPolicy,
		MinCommandSize:  c.History.MinCommandSize,
		MaxHistorySize:  c.History.MaxHistorySize,
		Ignore:          c.History.Ignore,
	}
}

// AutosaveInterval returns the autosave period.
func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.History.AutosaveInterval) * time.Second
}

// HistoryPath renders the history_file template for the current user and
// resolves it against the data directory.
func (c *Config) HistoryPath() (string, error) {
	name, err := tmpl.Render(c.History.HistoryFile, HistoryFileData{User: currentUser()})
	if err != nil {
		return "", fmt.Errorf("render history_file: %w", err)
	}

	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(c.DataDir, name), nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return filepath.Base(u.Username)
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "default"
}
