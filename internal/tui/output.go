package tui

import (
	"strings"
)

type lineKind int

const (
	lineCommand lineKind = iota
	lineOutput
	lineError
)

type outputLine struct {
	kind lineKind
	text string
}

// OutputBuffer holds console scrollback, keeping at most maxLines lines.
type OutputBuffer struct {
	lines    []outputLine
	maxLines int
}

// NewOutputBuffer creates a buffer. maxLines <= 0 keeps every line.
func NewOutputBuffer(maxLines int) *OutputBuffer {
	return &OutputBuffer{maxLines: maxLines}
}

// AddCommand appends an echoed command.
func (b *OutputBuffer) AddCommand(text string) {
	b.add(lineCommand, text)
}

// AddOutput appends command output.
func (b *OutputBuffer) AddOutput(text string) {
	b.add(lineOutput, text)
}

// AddError appends an error or exit status.
func (b *OutputBuffer) AddError(text string) {
	b.add(lineError, text)
}

func (b *OutputBuffer) add(kind lineKind, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" && kind == lineOutput {
		return
	}

	// Split on newlines in case multiple lines come at once
	for _, l := range strings.Split(text, "\n") {
		b.lines = append(b.lines, outputLine{kind: kind, text: l})
	}

	if b.maxLines > 0 && len(b.lines) > b.maxLines {
		b.lines = b.lines[len(b.lines)-b.maxLines:]
	}
}

// Reset drops all lines.
func (b *OutputBuffer) Reset() {
	b.lines = nil
}

// Len returns the number of buffered lines.
func (b *OutputBuffer) Len() int {
	return len(b.lines)
}

// Lines returns the unstyled text of each line.
func (b *OutputBuffer) Lines() []string {
	out := make([]string, len(b.lines))
	for i, l := range b.lines {
		out[i] = l.text
	}
	return out
}

// Render returns the styled scrollback.
func (b *OutputBuffer) Render() string {
	var sb strings.Builder
	for i, l := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch l.kind {
		case lineCommand:
			sb.WriteString(commandStyle.Render(l.text))
		case lineError:
			sb.WriteString(errorStyle.Render(l.text))
		default:
			sb.WriteString(outputStyle.Render(l.text))
		}
	}
	return sb.String()
}
