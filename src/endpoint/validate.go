package endpoint

import (
	"fmt"
	"slices"
	"strings"
)

// Styles lists the badge appearances shields.io accepts for endpoint badges.
var Styles = []string{"flat", "flat-square", "plastic", "for-the-badge", "social"}

// ValidInputs reports whether both colors are valid hex codes and style is
// one of the allowed styles.
func ValidInputs(allowed []string, style, labelColor, messageColor string) bool {
	return ValidHexColor(labelColor) &&
		ValidHexColor(messageColor) &&
		slices.Contains(allowed, style)
}

// ValidationError lists every input check that failed.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid badge inputs: " + strings.Join(e.Problems, "; ")
}

// Validate is ValidInputs with reasons. It returns nil or a *ValidationError.
func Validate(allowed []string, style, labelColor, messageColor string) error {
	var problems []string
	if !ValidHexColor(labelColor) {
		problems = append(problems, fmt.Sprintf("label color %q is not a 3 or 6 digit hex code", labelColor))
	}
	if !ValidHexColor(messageColor) {
		problems = append(problems, fmt.Sprintf("message color %q is not a 3 or 6 digit hex code", messageColor))
	}
	if !slices.Contains(allowed, style) {
		problems = append(problems, fmt.Sprintf("style %q is not one of %s", style, strings.Join(allowed, ", ")))
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
