package commands

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/recall/internal/console"
	"github.com/hay-kot/recall/internal/tui"
	"github.com/hay-kot/recall/pkg/executil"
)

type TuiCmd struct {
	flags *Flags

	shell string
	dir   string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "shell",
			Usage:       "shell used to run commands (overrides console.shell)",
			Sources:     cli.EnvVars("RECALL_SHELL"),
			Destination: &cmd.shell,
		},
		&cli.StringFlag{
			Name:        "dir",
			Aliases:     []string{"C"},
			Usage:       "directory to start the console in",
			Destination: &cmd.dir,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) (err error) {
	if err := cmd.flags.Loaded(); err != nil {
		return err
	}

	cfg := cmd.flags.Config
	logger := log.With().Str("component", "console").Logger()

	shell := cfg.Console.Shell
	if cmd.shell != "" {
		shell = cmd.shell
	}

	dir := cmd.dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	saver := cmd.flags.Saver
	if cfg.History.Enabled && cfg.History.Autosave {
		if err := saver.Start(cfg.AutosaveInterval()); err != nil {
			return err
		}
	}
	defer func() {
		if stopErr := saver.Stop(context.WithoutCancel(ctx)); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	eval := console.NewShellEvaluator(&executil.RealExecutor{}, shell, dir)
	session := console.New(cmd.flags.History, eval, saver, cfg.History.NewCommandSavesHistory, logger)

	m := tui.New(ctx, session, tui.Options{
		Prompt:         cfg.Console.Prompt,
		MaxOutputLines: cfg.Console.MaxOutputLines,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
