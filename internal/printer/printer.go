// Package printer writes user-facing CLI messages: results, warnings and
// error boxes. Colors come from the shared lipgloss palette.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/recall/internal/styles"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
)

var (
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d75f6b"))
	greenStyle  = lipgloss.NewStyle().Foreground(styles.ColorGreen)
	yellowStyle = lipgloss.NewStyle().Foreground(styles.ColorYellow)
	grayStyle   = lipgloss.NewStyle().Foreground(styles.ColorGray)
)

type ctxKey struct{}

// Printer handles formatted output with colors and styles
type Printer struct {
	writer io.Writer
}

// New creates a new Printer that writes to the given writer
func New(w io.Writer) *Printer {
	return &Printer{
		writer: w,
	}
}

// NewContext returns a context with the printer attached
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or creates a default one
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// FatalError prints a formatted error box and does NOT exit.
// Caller should handle exit code.
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.printValidationErrors(err, fieldErrs)
		return
	}

	p.writeLines(
		redStyle.Render("╭ Error"),
		redStyle.Render("│")+" "+grayStyle.Render(err.Error()),
		redStyle.Render("╵"),
	)
}

// printValidationErrors lists each field error under the wrapping context,
// e.g. "load config: invalid config".
func (p *Printer) printValidationErrors(wrappedErr error, fieldErrs criterio.FieldErrors) {
	errStr := wrappedErr.Error()
	fieldErrStr := fieldErrs.Error()

	errContext := ""
	if idx := strings.Index(errStr, fieldErrStr); idx > 0 {
		errContext = strings.TrimSuffix(errStr[:idx], ": ")
	}

	bar := redStyle.Render("│")
	lines := []string{redStyle.Render("╭ Validation Error")}

	if errContext != "" {
		lines = append(lines, bar+" "+grayStyle.Render(errContext), bar)
	}

	for _, fe := range fieldErrs {
		line := bar + " " + redStyle.Render(Cross) + " "
		if fe.Field != "" {
			line += grayStyle.Render(fe.Field + ": ")
		}
		lines = append(lines, line+fe.Err.Error())
	}

	lines = append(lines, redStyle.Render("╵"))
	p.writeLines(lines...)
}

// Errorf prints an error message in red
func (p *Printer) Errorf(format string, args ...any) {
	p.writeLines(redStyle.Render(Cross + " " + fmt.Sprintf(format, args...)))
}

// Successf prints a success message in green
func (p *Printer) Successf(format string, args ...any) {
	p.writeLines(greenStyle.Render(Check + " " + fmt.Sprintf(format, args...)))
}

// Infof prints an info message in gray
func (p *Printer) Infof(format string, args ...any) {
	p.writeLines(grayStyle.Render(Dot + " " + fmt.Sprintf(format, args...)))
}

// Warnf prints a warning message in yellow
func (p *Printer) Warnf(format string, args ...any) {
	p.writeLines(yellowStyle.Render(Dot + " " + fmt.Sprintf(format, args...)))
}

// Printf prints a plain message without colors
func (p *Printer) Printf(format string, args ...any) {
	p.writeLines(fmt.Sprintf(format, args...))
}

func (p *Printer) writeLines(lines ...string) {
	_, _ = io.WriteString(p.writer, strings.Join(lines, "\n")+"\n")
}
