package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/recall/internal/console"
)

// Layout rows used by everything except the scrollback.
const chromeHeight = 3 // input, status, help

// Options configures the console UI.
type Options struct {
	Prompt         string
	MaxOutputLines int
}

// evalDoneMsg is sent when a submitted command finishes.
type evalDoneMsg struct {
	result console.Result
	err    error
}

// Model is the Bubble Tea model for the console.
type Model struct {
	ctx     context.Context
	session *console.Session
	keys    KeyMap

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	output   *OutputBuffer

	running  bool
	recalled bool // input holds a recalled command
	status   string
	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates a console model bound to the given session.
func New(ctx context.Context, session *console.Session, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.PromptStyle = promptStyle
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	h := help.New()
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle
	h.Styles.ShortSeparator = helpStyle
	h.ShortSeparator = " • "

	return Model{
		ctx:      ctx,
		session:  session,
		keys:     DefaultKeyMap(),
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  s,
		help:     h,
		output:   NewOutputBuffer(opts.MaxOutputLines),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Output returns the scrollback buffer.
func (m Model) Output() *OutputBuffer {
	return m.output
}

// Input returns the current input text.
func (m Model) Input() string {
	return m.input.Value()
}

// Running reports whether a command is being evaluated.
func (m Model) Running() bool {
	return m.running
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := msg.Height - chromeHeight
		if contentHeight < 1 {
			contentHeight = 1
		}

		m.viewport.Width = msg.Width
		m.viewport.Height = contentHeight
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		m.help.Width = msg.Width
		m.ready = true
		m.refreshViewport()
		return m, nil

	case evalDoneMsg:
		m.running = false
		switch {
		case msg.err != nil:
			m.output.AddError(msg.err.Error())
		default:
			m.output.AddOutput(msg.result.Output)
			if msg.result.Failed() {
				m.output.AddError(fmt.Sprintf("exit status %d", msg.result.ExitCode))
			}
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		if m.running {
			return m, nil
		}
		return m.submit()

	case key.Matches(msg, m.keys.Clear):
		m.input.Reset()
		m.session.Escape()
		m.recalled = false
		m.status = ""
		return m, nil

	case key.Matches(msg, m.keys.RegexPrev):
		return m.recall(m.session.Previous, true), nil

	case key.Matches(msg, m.keys.RegexNext):
		return m.recall(m.session.Next, true), nil

	case key.Matches(msg, m.keys.Previous):
		return m.recall(m.session.Previous, false), nil

	case key.Matches(msg, m.keys.Next):
		return m.recall(m.session.Next, false), nil

	case key.Matches(msg, m.keys.Backspace):
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.session.Backspace()
		m.recalled = false
		m.status = ""
		return m, cmd

	case key.Matches(msg, m.keys.ClearOutput):
		m.output.Reset()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m.session.Input(m.input.Value())
		m.recalled = false
		m.status = ""
	}

	return m, cmd
}

// submit echoes the input, records it and starts evaluating it.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()
	m.recalled = false
	m.status = ""

	m.output.AddCommand(m.input.Prompt + line)
	m.refreshViewport()

	if !m.session.Record(m.ctx, line) {
		return m, nil
	}

	m.running = true
	return m, tea.Batch(m.evaluate(line), m.spinner.Tick)
}

func (m Model) evaluate(line string) tea.Cmd {
	ctx := m.ctx
	session := m.session
	return func() tea.Msg {
		res, err := session.Evaluate(ctx, line)
		return evalDoneMsg{result: res, err: err}
	}
}

// recall replaces the input with the next history match in one direction.
// The input is left alone when nothing matches.
func (m Model) recall(step func(regex bool) (string, bool), regex bool) Model {
	command, ok := step(regex)
	if !ok {
		if m.session.Search() == "" {
			m.status = "no history"
		} else {
			m.status = fmt.Sprintf("no match for %q", m.session.Search())
		}
		return m
	}

	m.input.SetValue(command)
	m.input.CursorEnd()
	m.recalled = true
	m.status = ""
	return m
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.output.Render())
	m.viewport.GotoBottom()
}
