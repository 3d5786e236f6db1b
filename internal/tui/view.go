package tui

import (
	"strings"
)

// View renders the console.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.input.View()
	}

	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteByte('\n')

	if m.running {
		b.WriteString(m.spinner.View())
		b.WriteString(" running...")
	} else {
		input := m.input.View()
		if m.recalled {
			input = recallStyle.Render("│") + input
		}
		b.WriteString(input)
	}
	b.WriteByte('\n')

	switch {
	case m.status != "":
		b.WriteString(statusBarStyle.Render(errorStyle.Render(m.status)))
	case m.session.Search() != "":
		b.WriteString(statusBarStyle.Render(helpStyle.Render("search: " + m.session.Search())))
	}
	b.WriteByte('\n')

	b.WriteString(statusBarStyle.Render(m.help.View(m.keys)))

	return b.String()
}
