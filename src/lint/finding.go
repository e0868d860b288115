// Package lint inspects rendered badge content before it is committed.
// Checks are pluggable modules registered by name; importing
// lint/modules registers the built-in ones.
package lint

import "fmt"

// Severity indicates how serious a finding is.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Finding is a single problem found in a file.
type Finding struct {
	File     string
	Line     int
	Column   int
	Module   string
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	pos := fmt.Sprintf("%s:%d", f.File, f.Line)
	if f.Column > 0 {
		pos += fmt.Sprintf(":%d", f.Column)
	}
	return fmt.Sprintf("%s %s [%s] %s", pos, f.Severity, f.Module, f.Message)
}

// Critical returns the findings at SeverityCritical.
func Critical(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == SeverityCritical {
			out = append(out, f)
		}
	}
	return out
}
