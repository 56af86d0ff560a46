package alerts

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Writer prints alerts, colored when attached to a terminal.
type Writer struct {
	w     io.Writer
	color bool
	quiet bool
}

// NewWriter creates a Writer. Color is enabled only for terminals and
// when noColor is false.
func NewWriter(w io.Writer, noColor, quiet bool) *Writer {
	color := false
	if f, ok := w.(*os.File); ok && !noColor {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{w: w, color: color, quiet: quiet}
}

// Write prints an alert. Quiet writers drop everything below warnings.
func (w *Writer) Write(a *Alert) {
	if w.quiet && a.Level > LevelWarning {
		return
	}
	line := a.String()
	if w.color {
		line = a.Level.Color() + line + resetColor
	}
	_, _ = fmt.Fprintln(w.w, line)
	for _, d := range a.Details {
		_, _ = fmt.Fprintf(w.w, "   %s\n", d)
	}
}

// Success writes a success alert.
func (w *Writer) Success(format string, args ...any) {
	w.Write(New(LevelSuccess, format, args...))
}

// Info writes an info alert.
func (w *Writer) Info(format string, args ...any) {
	w.Write(New(LevelInfo, format, args...))
}

// Warning writes a warning alert.
func (w *Writer) Warning(format string, args ...any) {
	w.Write(New(LevelWarning, format, args...))
}

// Error writes an error alert.
func (w *Writer) Error(err error, format string, args ...any) {
	w.Write(New(LevelError, format, args...).WithError(err))
}
