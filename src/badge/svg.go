package badge

import (
	"fmt"
	"math"
	"strings"
)

// geometry holds the per-style shape parameters.
type geometry struct {
	height    int
	radius    int
	padding   int
	gradient  string // linearGradient stops, empty for none
	uppercase bool
}

func styleGeometry(style string) geometry {
	switch style {
	case "flat-square":
		return geometry{height: 20, padding: 10}
	case "plastic":
		return geometry{height: 18, radius: 4, padding: 10,
			gradient: `<stop offset="0" stop-color="#fff" stop-opacity=".7"/><stop offset=".1" stop-color="#aaa" stop-opacity=".1"/><stop offset=".9" stop-opacity=".3"/><stop offset="1" stop-opacity=".5"/>`}
	case "for-the-badge":
		return geometry{height: 28, padding: 24, uppercase: true}
	case "social":
		return geometry{height: 20, radius: 2, padding: 12}
	default:
		return geometry{height: 20, radius: 3, padding: 10,
			gradient: `<stop offset="0" stop-color="#bbb" stop-opacity=".1"/><stop offset="1" stop-opacity=".1"/>`}
	}
}

// renderSVG lays out a two-part badge sized from the measured text widths.
func (e *Engine) renderSVG(b Badge) string {
	g := styleGeometry(b.Style)
	label, message := b.Label, b.Message
	if g.uppercase {
		label, message = strings.ToUpper(label), strings.ToUpper(message)
	}

	labelWidth := int(math.Round(e.metrics.TextWidth(label))) + g.padding
	messageWidth := int(math.Round(e.metrics.TextWidth(message))) + g.padding
	width := labelWidth + messageWidth
	baseline := g.height/2 + 4

	var s strings.Builder
	fmt.Fprintf(&s, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" role="img" aria-label="%s: %s">`,
		width, g.height, xmlEscape(b.Label), xmlEscape(b.Message))
	fmt.Fprintf(&s, `<title>%s: %s</title>`, xmlEscape(b.Label), xmlEscape(b.Message))
	if g.gradient != "" {
		fmt.Fprintf(&s, `<linearGradient id="s" x2="0" y2="100%%">%s</linearGradient>`, g.gradient)
	}
	fmt.Fprintf(&s, `<clipPath id="r"><rect width="%d" height="%d" rx="%d" fill="#fff"/></clipPath>`, width, g.height, g.radius)
	s.WriteString(`<g clip-path="url(#r)">`)
	fmt.Fprintf(&s, `<rect width="%d" height="%d" fill="%s"/>`, labelWidth, g.height, xmlEscape(cssColor(b.LabelColor, "#555")))
	fmt.Fprintf(&s, `<rect x="%d" width="%d" height="%d" fill="%s"/>`, labelWidth, messageWidth, g.height, xmlEscape(cssColor(b.Color, "#4c1")))
	if g.gradient != "" {
		fmt.Fprintf(&s, `<rect width="%d" height="%d" fill="url(#s)"/>`, width, g.height)
	}
	s.WriteString(`</g>`)

	family := fmt.Sprintf("'%s',Verdana,Geneva,DejaVu Sans,sans-serif", e.metrics.Family())
	fmt.Fprintf(&s, `<g fill="#fff" text-anchor="middle" font-family="%s" font-size="%g">`, xmlEscape(family), e.metrics.Size())
	writeText(&s, labelWidth/2, baseline, label)
	writeText(&s, labelWidth+messageWidth/2, baseline, message)
	s.WriteString(`</g></svg>`)
	return s.String()
}

// writeText writes a text element with a one pixel drop shadow.
func writeText(s *strings.Builder, x, y int, text string) {
	text = xmlEscape(text)
	fmt.Fprintf(s, `<text x="%d" y="%d" fill="#010101" fill-opacity=".3">%s</text>`, x, y+1, text)
	fmt.Fprintf(s, `<text x="%d" y="%d">%s</text>`, x, y, text)
}

// xmlEscape escapes special XML characters in badge text.
func xmlEscape(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	).Replace(s)
}
