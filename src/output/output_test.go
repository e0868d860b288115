package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestPrinterPlain(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Writer: &buf}

	p.Start("starting %s", "run")
	p.Success("done %d", 1)
	p.Failure("broken")
	p.Skip("skipped")
	p.Warn("careful")
	p.Result("link")

	out := buf.String()
	for _, want := range []string{"» starting run", "✓ done 1", "✗ broken", "⊘ skipped", "⊘ careful", "\nlink\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("plain printer emitted escape codes")
	}
}

func TestStatusIconColor(t *testing.T) {
	if got := StatusIcon("success", true); got != "\033[32m✓\033[0m" {
		t.Errorf("colored success icon = %q", got)
	}
	if got := StatusIcon("anything", false); got != "⊘" {
		t.Errorf("fallback icon = %q", got)
	}
}

func TestUseColorHonoursNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CI", "true")
	if UseColor() {
		t.Error("UseColor with NO_COLOR set")
	}
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	s := NewSection(&buf, "Badge", 1500*time.Millisecond, false)
	s.KV("branch", "badges")
	s.Close()

	out := buf.String()
	if !strings.Contains(out, "── Badge ") || !strings.Contains(out, "1.5s ──") {
		t.Errorf("header missing name or elapsed:\n%s", out)
	}
	if !strings.Contains(out, "│ branch      badges") {
		t.Errorf("row not aligned:\n%s", out)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "<1ms"},
		{250 * time.Millisecond, "250ms"},
		{2 * time.Second, "2.0s"},
		{90 * time.Second, "1m30.0s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestSectionStartGitHubActions(t *testing.T) {
	t.Setenv("GITLAB_CI", "")
	t.Setenv("GITHUB_ACTIONS", "true")
	var buf bytes.Buffer
	SectionStart(&buf, "badge", "Badge")
	SectionEnd(&buf, "badge")
	if buf.String() != "::group::Badge\n::endgroup::\n" {
		t.Errorf("got %q", buf.String())
	}
}
