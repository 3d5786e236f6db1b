package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/recall/internal/core/history"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this checks the history_file template, the shell
// executable and file access.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if err := c.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		} else if err != nil && !os.IsNotExist(err) {
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if path, err := c.HistoryPath(); err != nil {
		errs = errs.Append("history.history_file", err)
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		errs = errs.Append("history.history_file", fmt.Errorf("%s is a directory, not a file", path))
	}

	if c.Console.Shell != "" {
		if _, err := exec.LookPath(c.Console.Shell); err != nil {
			errs = errs.Append("console.shell", fmt.Errorf("shell executable not found: %s", c.Console.Shell))
		}
	}

	return errs.ToError()
}

// Warnings returns settings that are valid but probably not what the user
// wants.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.History.Enabled {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Item:     "enabled",
			Message:  "history is disabled; commands will not be recorded",
		})
	}

	if c.History.Enabled && !c.History.Autosave && !c.History.NewCommandSavesHistory {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Item:     "autosave",
			Message:  "autosave and new_command_saves_history are both off; history is only saved on exit",
		})
	}

	if !c.History.CommandGrouping && c.History.GroupingPolicy == history.GroupMoveToEnd {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Item:     "grouping_policy",
			Message:  "grouping_policy has no effect while command_grouping is off",
		})
	}

	return warnings
}
