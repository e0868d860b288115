package config

import (
	"fmt"
	"strings"

	"github.com/sofmeright/badgebranch/src/fonts"
)

// Validate checks the structural invariants of a resolved Config.
// Badge colours and style are checked later by the pipeline so that
// they report as validation failures of the run itself.
func (c *Config) Validate() error {
	var errs []string

	name := c.Badge.Name
	switch {
	case strings.TrimSpace(name) == "":
		errs = append(errs, "badge.name: required")
	case strings.ContainsAny(name, `/\`):
		errs = append(errs, fmt.Sprintf("badge.name: %q must not contain path separators", name))
	case name == "." || name == "..":
		errs = append(errs, fmt.Sprintf("badge.name: %q is not a file name", name))
	}
	if strings.TrimSpace(c.Badge.Branch) == "" {
		errs = append(errs, "badge.branch: required")
	}
	if c.Badge.FontSize <= 0 {
		errs = append(errs, fmt.Sprintf("badge.font_size: %v must be positive", c.Badge.FontSize))
	}
	if c.Badge.FontFile == "" && c.Badge.Font != "" {
		if _, ok := fonts.Builtin[c.Badge.Font]; !ok {
			errs = append(errs, fmt.Sprintf("badge.font: unknown built-in font %q (available: %s)", c.Badge.Font, strings.Join(fonts.Names(), ", ")))
		}
	}
	if strings.TrimSpace(c.Git.Remote) == "" {
		errs = append(errs, "git.remote: required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
