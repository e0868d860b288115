package gitver

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Resolver expands placeholders in badge text.
//
// Supported templates:
//
//	{version} {base} {major} {minor} {patch} {prerelease}
//	{branch}             → "main" ("/" becomes "-")
//	{sha} {sha:N}        → HEAD hash, 7 or N characters
//	{env:VAR}            → value of environment variable
//	{date} {datetime} {timestamp}
//	{commit.date}        → HEAD author date, YYYY-MM-DD (UTC)
//	{ci.pipeline} {ci.job}
//
// Unknown placeholders are left untouched.
type Resolver struct {
	Info *VersionInfo
	Now  func() time.Time
}

// Resolve expands every supported placeholder in s.
func (r *Resolver) Resolve(s string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	t := now().UTC()

	s = expandParam(s, "env", os.Getenv)
	s = strings.NewReplacer(
		"{datetime}", t.Format(time.RFC3339),
		"{timestamp}", strconv.FormatInt(t.Unix(), 10),
		"{date}", t.Format("2006-01-02"),
		"{ci.pipeline}", firstEnv("CI_PIPELINE_ID", "GITHUB_RUN_ID", "BUILD_NUMBER", "BITBUCKET_BUILD_NUMBER"),
		"{ci.job}", firstEnv("CI_JOB_NAME", "GITHUB_JOB", "JOB_NAME", "BITBUCKET_STEP_ID"),
	).Replace(s)

	v := r.Info
	if v == nil {
		return s
	}
	s = expandParam(s, "sha", func(arg string) string {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			n = 7
		}
		return truncate(v.SHA, n)
	})
	commitDate := ""
	if !v.CommitDate.IsZero() {
		commitDate = v.CommitDate.Format("2006-01-02")
	}
	return strings.NewReplacer(
		"{version}", v.Version,
		"{base}", v.Base,
		"{major}", v.Major,
		"{minor}", v.Minor,
		"{patch}", v.Patch,
		"{prerelease}", v.Prerelease,
		"{branch}", strings.ReplaceAll(v.Branch, "/", "-"),
		"{sha}", truncate(v.SHA, 7),
		"{commit.date}", commitDate,
	).Replace(s)
}

// expandParam replaces every {name:arg} with fn(arg).
func expandParam(s, name string, fn func(arg string) string) string {
	open := "{" + name + ":"
	var b strings.Builder
	for {
		start := strings.Index(s, open)
		if start == -1 {
			break
		}
		end := strings.Index(s[start:], "}")
		if end == -1 {
			break
		}
		end += start
		b.WriteString(s[:start])
		b.WriteString(fn(s[start+len(open) : end]))
		s = s[end+1:]
	}
	b.WriteString(s)
	return b.String()
}

// firstEnv returns the value of the first non-empty environment variable.
func firstEnv(names ...string) string {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return ""
}
