package modules

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/sofmeright/badgebranch/src/lint"
)

func init() {
	lint.Register("unicode", func() lint.Module { return &unicodeModule{} })
}

// unicodeModule flags invisible and direction-changing characters that
// make a badge render differently from how its source reads.
type unicodeModule struct{}

func (m *unicodeModule) Name() string { return "unicode" }

type runeClass struct {
	msg      string
	severity lint.Severity
}

var (
	bidi      = runeClass{"bidi control", lint.SeverityCritical}
	zeroWidth = runeClass{"zero-width character", lint.SeverityCritical}
	invisible = runeClass{"invisible character", lint.SeverityWarning}
	oddSpace  = runeClass{"unusual whitespace", lint.SeverityWarning}
)

var suspiciousRunes = map[rune]runeClass{
	'\u202A': bidi, '\u202B': bidi, '\u202C': bidi, '\u202D': bidi, '\u202E': bidi,
	'\u2066': bidi, '\u2067': bidi, '\u2068': bidi, '\u2069': bidi,
	'\u200B': zeroWidth, '\u200C': zeroWidth, '\u200D': zeroWidth, '\uFEFF': zeroWidth,
	'\u00AD': invisible, '\u034F': invisible, '\u2060': invisible, '\u180E': invisible,
	'\u2061': invisible, '\u2062': invisible, '\u2063': invisible, '\u2064': invisible,
	'\u00A0': oddSpace, '\u205F': oddSpace, '\u3000': oddSpace,
}

func classify(r rune) (runeClass, bool) {
	if c, ok := suspiciousRunes[r]; ok {
		return c, true
	}
	switch {
	case r >= '\u2000' && r <= '\u200A':
		return oddSpace, true
	case r >= 0xE0001 && r <= 0xE007F:
		return runeClass{"tag character", lint.SeverityCritical}, true
	case r < 0x80 && unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r':
		return runeClass{"ASCII control character", lint.SeverityWarning}, true
	}
	return runeClass{}, false
}

// Check reports suspicious characters written literally or as JSON \uXXXX
// escapes, since both render the same once the descriptor is decoded.
func (m *unicodeModule) Check(ctx context.Context, file lint.File) ([]lint.Finding, error) {
	var findings []lint.Finding
	for n, line := range bytes.Split(file.Data, []byte("\n")) {
		if !utf8.Valid(line) {
			findings = append(findings, lint.Finding{
				File:     file.Path,
				Line:     n + 1,
				Module:   m.Name(),
				Severity: lint.SeverityWarning,
				Message:  "invalid UTF-8 encoding",
			})
			continue
		}
		runes := []rune(string(line))
		for i := 0; i < len(runes); i++ {
			col := i + 1
			r := runes[i]
			if r == '\\' && i+1 < len(runes) {
				decoded, width, ok := decodeEscape(runes[i:])
				if !ok {
					i++ // skip the escaped character
					continue
				}
				r = decoded
				i += width - 1
			}
			c, ok := classify(r)
			if !ok {
				continue
			}
			findings = append(findings, lint.Finding{
				File:     file.Path,
				Line:     n + 1,
				Column:   col,
				Module:   m.Name(),
				Severity: c.severity,
				Message:  fmt.Sprintf("%s (U+%04X)", c.msg, r),
			})
		}
	}
	return findings, nil
}

// decodeEscape decodes a \uXXXX escape at the start of rs, joining a
// following low surrogate escape into one rune. It returns the rune and the
// number of runes consumed.
func decodeEscape(rs []rune) (rune, int, bool) {
	r1, ok := hex4(rs)
	if !ok {
		return 0, 0, false
	}
	if utf16.IsSurrogate(r1) {
		if r2, ok := hex4(rs[6:]); ok {
			if r := utf16.DecodeRune(r1, r2); r != unicode.ReplacementChar {
				return r, 12, true
			}
		}
	}
	return r1, 6, true
}

func hex4(rs []rune) (rune, bool) {
	if len(rs) < 6 || rs[0] != '\\' || rs[1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(string(rs[2:6]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
