package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/recall/internal/core/history"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 4, cfg.History.MinCommandSize)
	assert.Equal(t, 0, cfg.History.MaxHistorySize)
	assert.Equal(t, 300, cfg.History.AutosaveInterval)
	assert.True(t, cfg.History.NewCommandSavesHistory)
	assert.Equal(t, BackendJSON, cfg.History.Backend)
	assert.Equal(t, "history.{{ .User }}.json", cfg.History.HistoryFile)
	assert.Equal(t, "sh", cfg.Console.Shell)
	assert.Equal(t, "> ", cfg.Console.Prompt)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
history:
  enabled: true
  command_grouping: true
  grouping_policy: move-to-end
  min_command_size: 0
  max_history_size: 50
  autosave: true
  autosave_interval: 30
  ignore:
    - "exit"
console:
  shell: bash
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 0, cfg.History.MinCommandSize, "explicit zero must survive defaults")
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval())
	assert.Equal(t, "bash", cfg.Console.Shell)
	assert.Equal(t, "> ", cfg.Console.Prompt)

	opts := cfg.HistoryOptions()
	assert.Equal(t, history.Options{
		Enabled:         true,
		CommandGrouping: true,
		GroupingPolicy:  history.GroupMoveToEnd,
		MinCommandSize:  0,
		MaxHistorySize:  50,
		Ignore:          []string{"exit"},
	}, opts)
}

func TestLoad_SQLiteDefaultsToDBFile(t *testing.T) {
	path := writeConfig(t, "history:\n  backend: sqlite\n")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "history.{{ .User }}.db", cfg.History.HistoryFile)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "history: [unclosed")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "history:\n  backend: redis\n")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestHistoryPath(t *testing.T) {
	dataDir := t.TempDir()

	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "static relative", file: "history.json", want: filepath.Join(dataDir, "history.json")},
		{name: "absolute", file: "/var/tmp/history.json", want: "/var/tmp/history.json"},
		{name: "user template", file: "h.{{ .User }}.json", want: filepath.Join(dataDir, "h."+currentUser()+".json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = dataDir
			cfg.History.HistoryFile = tt.file

			got, err := cfg.HistoryPath()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
