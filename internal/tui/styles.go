// Package tui implements the Bubble Tea console UI for recall.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/recall/internal/styles"
)

var (
	promptStyle  = styles.PromptStyle
	commandStyle = styles.CommandStyle
	outputStyle  = styles.OutputStyle
	errorStyle   = styles.ErrorStyle
	recallStyle  = styles.RecallStyle
	helpStyle    = styles.DividerStyle

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)

	// statusBarStyle pads the line under the input.
	statusBarStyle = lipgloss.NewStyle().
			PaddingLeft(1)
)
