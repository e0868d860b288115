package badge

import (
	"strings"

	"github.com/sofmeright/badgebranch/src/endpoint"
)

// Engine renders SVG previews of endpoint badges using a specific font.
type Engine struct {
	metrics *FontMetrics
}

// New creates a badge engine with the given font metrics.
func New(metrics *FontMetrics) *Engine {
	return &Engine{metrics: metrics}
}

// NewDefault creates an engine with the default built-in font at 11px.
func NewDefault() (*Engine, error) {
	m, err := LoadBuiltinFont("", 11)
	if err != nil {
		return nil, err
	}
	return New(m), nil
}

// Badge defines the content and appearance of a single badge.
type Badge struct {
	Style      string // one of endpoint.Styles; unknown styles render flat
	Label      string // left side text
	LabelColor string // hex color for left side
	Message    string // right side text
	Color      string // hex color for right side
}

// FromSpec converts an endpoint badge spec into a renderable badge.
func FromSpec(s endpoint.Spec) Badge {
	return Badge{
		Style:      s.Style,
		Label:      s.Label,
		LabelColor: s.LabelColor,
		Message:    s.Message,
		Color:      s.MessageColor,
	}
}

// Generate produces a shields.io-like SVG badge string.
func (e *Engine) Generate(b Badge) string {
	return e.renderSVG(b)
}

// cssColor turns "2e2e2e" or "#2e2e2e" into "#2e2e2e". Empty falls back.
func cssColor(c, fallback string) string {
	c = strings.TrimLeft(c, "#")
	if c == "" {
		return fallback
	}
	return "#" + c
}
