// Package badge renders local SVG previews of endpoint badges with measured
// font widths.
package badge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sofmeright/badgebranch/src/fonts"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontMetrics holds glyph advances of one face at one size.
type FontMetrics struct {
	family   string
	size     float64
	advances map[rune]float64 // printable ASCII
	fallback float64          // mean advance, used for everything else
}

// TextWidth returns the pixel width of s.
func (m *FontMetrics) TextWidth(s string) float64 {
	var w float64
	for _, r := range s {
		adv, ok := m.advances[r]
		if !ok {
			adv = m.fallback
		}
		w += adv
	}
	return w
}

// Family returns the font family name from the font's name table.
func (m *FontMetrics) Family() string { return m.family }

// Size returns the pixel size the metrics were measured at.
func (m *FontMetrics) Size() float64 { return m.size }

// LoadFont parses TTF/OTF data and measures it at size pixels.
func LoadFont(name string, data []byte, size float64) (*FontMetrics, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", name, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72})
	if err != nil {
		return nil, fmt.Errorf("creating face for %s: %w", name, err)
	}
	defer face.Close()

	m := &FontMetrics{family: name, size: size, advances: make(map[rune]float64, 95)}
	var total float64
	for r := rune(' '); r <= '~'; r++ {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		px := float64(adv) / 64 // 26.6 fixed point
		m.advances[r] = px
		total += px
	}
	m.fallback = size * 0.6
	if n := len(m.advances); n > 0 {
		m.fallback = total / float64(n)
	}

	if family, err := f.Name(&sfnt.Buffer{}, sfnt.NameIDFamily); err == nil && family != "" {
		m.family = family
	}
	return m, nil
}

// LoadBuiltinFont loads a built-in font by config name. An empty name selects
// fonts.DefaultFont.
func LoadBuiltinFont(name string, size float64) (*FontMetrics, error) {
	if name == "" {
		name = fonts.DefaultFont
	}
	data, ok := fonts.Builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in font %q (available: %v)", name, fonts.Names())
	}
	return LoadFont(name, data, size)
}

// LoadFontFile loads a TTF/OTF from disk.
func LoadFontFile(path string, size float64) (*FontMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font file %s: %w", path, err)
	}
	return LoadFont(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), data, size)
}
