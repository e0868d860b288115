package endpoint

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Dir is the repository directory badge files are written to.
const Dir = "badges"

//go:embed default/template.json
var defaultTemplate []byte

// ErrTemplateNotFound is returned when the template source does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// DefaultTemplate returns the built-in endpoint template.
func DefaultTemplate() []byte {
	return bytes.Clone(defaultTemplate)
}

// Path returns the repository-relative path of the badge file for name.
func Path(name string) string {
	return path.Join(Dir, name+".json")
}

// LoadTemplate reads the template at src. An empty src selects the built-in
// template.
func LoadTemplate(src string) ([]byte, error) {
	if src == "" {
		return DefaultTemplate(), nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file '%s': %w", src, ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("reading template %s: %w", src, err)
	}
	return data, nil
}

// RenderFile loads the template at src and renders it for name onto fsys.
// Nothing is written unless the template was read and substituted.
func RenderFile(fsys billy.Filesystem, src string, subs SubstitutionMap, name string) (string, error) {
	tmpl, err := LoadTemplate(src)
	if err != nil {
		return "", err
	}
	return Render(fsys, tmpl, subs, name)
}

// Render substitutes subs into tmpl and writes the result to Path(name) on
// fsys, creating the badges directory. It returns the written path.
func Render(fsys billy.Filesystem, tmpl []byte, subs SubstitutionMap, name string) (string, error) {
	out, err := Substitute(tmpl, subs)
	if err != nil {
		return "", err
	}
	if !json.Valid(out) {
		return "", fmt.Errorf("rendered badge %s is not valid JSON", name)
	}

	dst := Path(name)
	if err := fsys.MkdirAll(Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating badge directory: %w", err)
	}
	if err := util.WriteFile(fsys, dst, out, 0o644); err != nil {
		return "", fmt.Errorf("writing badge %s: %w", dst, err)
	}
	return dst, nil
}

// Substitute replaces every occurrence of each token in tmpl with its value,
// escaped for use inside a JSON string. Replacement is a single pass, so text
// inserted by one token is never rescanned for another. Longer tokens take
// precedence when tokens overlap.
func Substitute(tmpl []byte, subs SubstitutionMap) ([]byte, error) {
	tokens := make([]string, 0, len(subs))
	for tok := range subs {
		if tok == "" {
			return nil, errors.New("substitution map contains an empty token")
		}
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})

	pairs := make([]string, 0, 2*len(tokens))
	for _, tok := range tokens {
		val, err := jsonEscape(subs[tok])
		if err != nil {
			return nil, fmt.Errorf("escaping %s: %w", tok, err)
		}
		pairs = append(pairs, tok, val)
	}
	return []byte(strings.NewReplacer(pairs...).Replace(string(tmpl))), nil
}

// jsonEscape returns s encoded as the body of a JSON string literal.
func jsonEscape(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	quoted := strings.TrimSuffix(buf.String(), "\n")
	return quoted[1 : len(quoted)-1], nil
}
