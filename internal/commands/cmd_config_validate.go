package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/recall/internal/core/config"
	"github.com/hay-kot/recall/internal/printer"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "recall config validate [options]",
				Description: "Validates the configuration file, checking the history file template, ignore patterns and the console shell.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	err := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)
	warnings := cmd.flags.Config.Warnings()

	if cmd.format == "json" {
		return cmd.outputJSON(c, err, warnings)
	}

	return cmd.outputText(p, err, warnings)
}

// Config sections, in the order the text report prints them.
var configSections = []string{"history", "console", "general"}

// sectionOf splits a field path like "history.ignore[1]" into its config
// section and the field within it. Top-level fields belong to "general".
func sectionOf(field string) (section, name string) {
	if before, after, ok := strings.Cut(field, "."); ok {
		return before, after
	}
	return "general", field
}

// sectionIssue is one error or warning under a config section.
type sectionIssue struct {
	Section string `json:"section"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// collectIssues groups validation errors and warnings by config section.
func collectIssues(validationErr error, warnings []config.ValidationWarning) (errs, warns []sectionIssue) {
	for _, fe := range extractFieldErrors(validationErr) {
		section, name := sectionOf(fe.Field)
		errs = append(errs, sectionIssue{Section: section, Field: name, Message: fe.Err.Error()})
	}
	for _, w := range warnings {
		warns = append(warns, sectionIssue{Section: strings.ToLower(w.Category), Field: w.Item, Message: w.Message})
	}
	return errs, warns
}

func (cmd *ConfigValidateCmd) outputJSON(c *cli.Command, validationErr error, warnings []config.ValidationWarning) error {
	errs, warns := collectIssues(validationErr, warnings)

	historyPath, _ := cmd.flags.Config.HistoryPath()

	out := struct {
		Valid       bool           `json:"valid"`
		Backend     string         `json:"backend"`
		HistoryFile string         `json:"history_file,omitempty"`
		Errors      []sectionIssue `json:"errors,omitempty"`
		Warnings    []sectionIssue `json:"warnings,omitempty"`
	}{
		Valid:       validationErr == nil,
		Backend:     cmd.flags.Config.History.Backend,
		HistoryFile: historyPath,
		Errors:      errs,
		Warnings:    warns,
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// extractFieldErrors extracts field errors from a validation error.
func extractFieldErrors(err error) criterio.FieldErrors {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return criterio.FieldErrors{{Err: err}}
}

func (cmd *ConfigValidateCmd) outputText(p *printer.Printer, validationErr error, warnings []config.ValidationWarning) error {
	errs, warns := collectIssues(validationErr, warnings)

	if historyPath, err := cmd.flags.Config.HistoryPath(); err == nil {
		p.Printf("History: %s (%s)", historyPath, cmd.flags.Config.History.Backend)
	}

	for _, section := range configSections {
		var lines []string
		for _, e := range errs {
			if e.Section == section {
				lines = append(lines, issueLine(printer.Cross, e))
			}
		}
		for _, w := range warns {
			if w.Section == section {
				lines = append(lines, issueLine(printer.Dot, w))
			}
		}
		if len(lines) == 0 {
			continue
		}

		p.Printf("")
		p.Printf("[%s]", section)
		for _, l := range lines {
			p.Printf("%s", l)
		}
	}

	p.Printf("")
	if validationErr == nil {
		if len(warns) > 0 {
			p.Successf("Configuration is valid (%d warning(s))", len(warns))
		} else {
			p.Successf("Configuration is valid")
		}
		return nil
	}

	p.Errorf("%d error(s), %d warning(s)", len(errs), len(warns))
	return cli.Exit("", 1)
}

func issueLine(symbol string, issue sectionIssue) string {
	if issue.Field == "" {
		return fmt.Sprintf("  %s %s", symbol, issue.Message)
	}
	return fmt.Sprintf("  %s %s: %s", symbol, issue.Field, issue.Message)
}
