// Package endpoint builds shields.io "endpoint" badge descriptors: input
// validation, template substitution and the markdown link that embeds the
// rendered JSON.
package endpoint

import (
	"strconv"
	"strings"
)

// ValidHexColor reports whether c is a 3- or 6-digit hex color code.
// A single leading '#' is ignored. Malformed input is simply invalid.
func ValidHexColor(c string) bool {
	c = strings.TrimPrefix(c, "#")
	if len(c) != 3 && len(c) != 6 {
		return false
	}
	_, err := strconv.ParseUint(c, 16, 32)
	return err == nil
}
