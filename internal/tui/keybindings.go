package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the console key bindings.
type KeyMap struct {
	Submit      key.Binding
	Clear       key.Binding
	Previous    key.Binding
	Next        key.Binding
	RegexPrev   key.Binding
	RegexNext   key.Binding
	ClearOutput key.Binding
	Backspace   key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the console key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Previous: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
		RegexPrev: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("alt+↑", "regex previous"),
		),
		RegexNext: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("alt+↓", "regex next"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "delete and leave recall"),
		),
		ClearOutput: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear output"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+d", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Previous, k.Next, k.RegexPrev, k.Clear, k.ClearOutput, k.Quit}
}

// FullHelp returns all bindings grouped by column.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Clear, k.Quit},
		{k.Previous, k.Next, k.RegexPrev, k.RegexNext},
		{k.ClearOutput, k.ScrollUp, k.ScrollDown},
	}
}
