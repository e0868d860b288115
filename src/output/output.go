package output

import (
	"fmt"
	"io"
	"os"
)

// Colors for terminal output.
const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// Printer writes human-readable progress for a badge run.
type Printer struct {
	Writer io.Writer
	Color  bool
}

// NewPrinter creates a printer writing to stdout with color auto-detection.
func NewPrinter() *Printer {
	return &Printer{
		Writer: os.Stdout,
		Color:  UseColor(),
	}
}

// Start announces the run.
func (p *Printer) Start(format string, args ...any) {
	fmt.Fprintf(p.Writer, "%s %s\n\n", p.colorize("»", colorCyan), fmt.Sprintf(format, args...))
}

// Success reports a completed step.
func (p *Printer) Success(format string, args ...any) {
	p.status("success", format, args...)
}

// Failure reports a step that stopped the run.
func (p *Printer) Failure(format string, args ...any) {
	p.status("failed", format, args...)
}

// Skip reports a step that was intentionally not performed.
func (p *Printer) Skip(format string, args ...any) {
	p.status("skipped", format, args...)
}

// Warn reports a problem that did not stop the run.
func (p *Printer) Warn(format string, args ...any) {
	p.status("warning", format, args...)
}

// Info writes a dimmed note.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.Writer, "    %s\n", Dimmed(fmt.Sprintf(format, args...), p.Color))
}

// Result prints the deliverable of the run, set apart from progress lines.
func (p *Printer) Result(format string, args ...any) {
	fmt.Fprintf(p.Writer, "\n%s\n\n", p.colorize(fmt.Sprintf(format, args...), colorBold))
}

func (p *Printer) status(status, format string, args ...any) {
	fmt.Fprintf(p.Writer, "  %s %s\n", StatusIcon(status, p.Color), fmt.Sprintf(format, args...))
}

func (p *Printer) colorize(text, color string) string {
	if !p.Color {
		return text
	}
	return color + text + colorReset
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}
