package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/recall/internal/core/history"
	"github.com/hay-kot/recall/internal/printer"
	"github.com/hay-kot/recall/internal/styles"
)

// maxCommandWidth is where list and search output cut long commands.
const maxCommandWidth = 60

type HistoryCmd struct {
	flags *Flags

	// Command-specific flags
	limit     int
	asJSON    bool
	regex     bool
	multiline bool
	yes       bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "View or manage command history",
		UsageText: "recall history command [options]",
		Description: `View or manage the console command history.

Entries are numbered by position, oldest first. Position 0 is the oldest
command still kept.`,
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List recorded commands, oldest first",
				UsageText: "recall history list [--limit N] [--json]",
				Flags:     []cli.Flag{cmd.limitFlag(), cmd.jsonFlag()},
				Action:    cmd.runList,
			},
			{
				Name:      "search",
				Usage:     "List commands matching a prefix or pattern, newest first",
				UsageText: "recall history search <text> [--regex] [--limit N] [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "regex",
						Aliases:     []string{"r"},
						Usage:       "treat text as a regular expression instead of a prefix",
						Destination: &cmd.regex,
					},
					cmd.limitFlag(),
					cmd.jsonFlag(),
				},
				Action: cmd.runSearch,
			},
			{
				Name:      "get",
				Usage:     "Print the command at a position",
				UsageText: "recall history get <position>",
				Action:    cmd.runGet,
			},
			{
				Name:      "add",
				Usage:     "Record a command without running it",
				UsageText: "recall history add [--multiline] <command...>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "multiline",
						Aliases:     []string{"m"},
						Usage:       "mark the command as multiline",
						Destination: &cmd.multiline,
					},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "truncate",
				Usage:     "Keep only the oldest n commands",
				UsageText: "recall history truncate <n>",
				Action:    cmd.runTruncate,
			},
			{
				Name:      "clear",
				Usage:     "Remove all recorded commands",
				UsageText: "recall history clear [--yes]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip confirmation",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *HistoryCmd) limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:        "limit",
		Aliases:     []string{"n"},
		Usage:       "show at most this many entries (0 for all)",
		Destination: &cmd.limit,
	}
}

func (cmd *HistoryCmd) jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON",
		Destination: &cmd.asJSON,
	}
}

// listEntry is one row of list and search output.
type listEntry struct {
	Position int `json:"position"`
	history.Entry
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Loaded(); err != nil {
		return err
	}

	entries := cmd.flags.History.Entries()

	rows := make([]listEntry, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, listEntry{Position: i, Entry: e})
	}
	if cmd.limit > 0 && len(rows) > cmd.limit {
		rows = rows[len(rows)-cmd.limit:]
	}

	if len(rows) == 0 && !cmd.asJSON {
		printer.Ctx(ctx).Infof("No command history")
		return nil
	}

	return cmd.print(c.Root().Writer, rows)
}

func (cmd *HistoryCmd) runSearch(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Loaded(); err != nil {
		return err
	}

	if c.NArg() != 1 {
		return fmt.Errorf("search takes exactly one argument, got %d", c.NArg())
	}
	text := c.Args().First()

	matches := cmd.flags.History.Matches(text, cmd.regex)

	rows := make([]listEntry, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, listEntry{Position: m.Position, Entry: m.Entry})
	}
	if cmd.limit > 0 && len(rows) > cmd.limit {
		rows = rows[:cmd.limit]
	}

	if len(rows) == 0 && !cmd.asJSON {
		printer.Ctx(ctx).Infof("No commands match %q", text)
		return nil
	}

	return cmd.print(c.Root().Writer, rows)
}

func (cmd *HistoryCmd) runGet(_ context.Context, c *cli.Command) error {
	if err := cmd.flags.Loaded(); err != nil {
		return err
	}

	pos, err := intArg(c, "position")
	if err != nil {
		return err
	}

	r, ok := cmd.flags.History.Get(pos)
	if !ok {
		return fmt.Errorf("position %d: %w", pos, history.ErrNotFound)
	}

	_, err = fmt.Fprintln(c.Root().Writer, r.Command)
	return err
}

func (cmd *HistoryCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.flags.Loaded(); err != nil {
		return err
	}
	if c.NArg() == 0 {
		return fmt.Errorf("add requires a command")
	}
	if !cmd.flags.Config.History.Enabled {
		p.Warnf("History is disabled (history.enabled: false)")
		return nil
	}

	command := strings.Join(c.Args().Slice(), " ")
	cmd.flags.History.Add(command, cmd.multiline || strings.Contains(command, "\n"))

	saved, err := cmd.flags.Saver.SaveIfDirty(ctx)
	if err != nil {
		return err
	}
	if !saved {
		p.Infof("Not recorded (too short, ignored or already in history)")
		return nil
	}

	p.Successf("Recorded %q", command)
	return nil
}

func (cmd *HistoryCmd) runTruncate(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Loaded(); err != nil {
		return err
	}

	n, err := intArg(c, "n")
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("n must not be negative, got %d", n)
	}

	before := cmd.flags.History.Len()
	kept := cmd.flags.History.Truncate(n)
	if _, err := cmd.flags.Saver.SaveIfDirty(ctx); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Removed %d command(s), %d kept", before-kept, kept)
	return nil
}

func (cmd *HistoryCmd) runClear(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if !cmd.yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to clear history without --yes when stdin is not a terminal")
		}

		confirmed := false
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Clear command history?").
				Description(fmt.Sprintf("%d command(s) will be removed.", cmd.flags.History.Len())).
				Affirmative("Clear").
				Negative("Cancel").
				Value(&confirmed),
		)).WithTheme(styles.FormTheme()).Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			p.Infof("Cancelled")
			return nil
		}
	}

	if err := cmd.flags.Store.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	cmd.flags.History.Seed(nil)

	p.Successf("Command history cleared")
	return nil
}

func (cmd *HistoryCmd) print(out io.Writer, rows []listEntry) error {
	if cmd.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "POS\tTIME\tCOMMAND")

	for _, r := range rows {
		recorded := "-"
		if !r.RecordedAt.IsZero() {
			recorded = r.RecordedAt.Local().Format("2006-01-02 15:04:05")
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", r.Position, recorded, displayCommand(r.Command))
	}

	return w.Flush()
}

// displayCommand flattens a command onto one line and cuts it to
// maxCommandWidth runes.
func displayCommand(command string) string {
	command = strings.ReplaceAll(command, "\n", " ↵ ")

	runes := []rune(command)
	if len(runes) > maxCommandWidth {
		return string(runes[:maxCommandWidth-3]) + "..."
	}
	return command
}

func intArg(c *cli.Command, name string) (int, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("expected one argument <%s>, got %d", name, c.NArg())
	}

	n, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, c.Args().First())
	}
	return n, nil
}
