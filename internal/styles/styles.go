// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
	ColorRed    = lipgloss.Color("#f38ba8")
	ColorBase   = lipgloss.Color("#1a1b26")
)

// PromptStyle styles the console prompt.
var PromptStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// CommandStyle styles echoed commands.
var CommandStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// OutputStyle styles command output.
var OutputStyle = lipgloss.NewStyle()

// ErrorStyle styles failures and non-zero exit statuses.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// RecallStyle marks the input while a history entry is recalled.
var RecallStyle = lipgloss.NewStyle().
	Foreground(ColorYellow)

// DividerStyle styles dividers, help text and other secondary text.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// FormTheme returns the huh theme used by interactive prompts.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorGray)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Background(ColorBlue).
		Foreground(ColorBase).
		Bold(true)
	t.Focused.BlurredButton = t.Focused.BlurredButton.
		Background(lipgloss.Color("#3b4261")).
		Foreground(ColorWhite)

	t.Blurred = t.Focused

	return t
}
