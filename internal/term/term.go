// Package term prints leveled engine diagnostics to stderr. Color is
// applied only when stderr is a terminal and NO_COLOR is unset; the
// invoked command's own output is never restyled.
package term

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
)

// Logger writes styled diagnostic lines. The zero value is unusable;
// call New.
type Logger struct {
	w     io.Writer
	color bool
}

// New creates a Logger writing to w. Color is enabled when w is an
// os.File attached to a terminal and NO_COLOR is unset.
func New(w io.Writer) *Logger {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) && os.Getenv("NO_COLOR") == ""
	}
	return &Logger{w: w, color: color}
}

// Stderr returns a Logger for the process's standard error.
func Stderr() *Logger { return New(os.Stderr) }

// Info prints a green informational line.
func (l *Logger) Info(format string, args ...any) {
	l.print(infoStyle, format, args...)
}

// Warn prints a yellow warning line.
func (l *Logger) Warn(format string, args ...any) {
	l.print(warnStyle, format, args...)
}

// Error prints a red error line.
func (l *Logger) Error(format string, args ...any) {
	l.print(errorStyle, format, args...)
}

func (l *Logger) print(style lipgloss.Style, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.color {
		msg = style.Render(msg)
	}
	fmt.Fprintln(l.w, msg)
}
