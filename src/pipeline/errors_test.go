package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := fail(KindIO, "render", fs.ErrNotExist)
	wrapped := fmt.Errorf("run: %w", base)

	if KindOf(wrapped) != KindIO {
		t.Errorf("KindOf = %s", KindOf(wrapped))
	}
	if !errors.Is(wrapped, fs.ErrNotExist) {
		t.Error("cause not reachable through Unwrap")
	}
	if KindOf(errors.New("plain")) != KindUnknown || KindOf(nil) != KindUnknown {
		t.Error("expected KindUnknown")
	}
	if got := base.Error(); got != "render: file does not exist" {
		t.Errorf("Error() = %q", got)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		KindValidation: "validation",
		KindIO:         "io",
		KindVCS:        "vcs",
		KindUnknown:    "unknown",
	} {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
}

func TestCommitMessage(t *testing.T) {
	if got := CommitMessage("badges", ""); got != "add/update to branch (badges)" {
		t.Errorf("got %q", got)
	}
	if got := CommitMessage("badges", "[CI - Testing]"); got != "add/update to branch (badges) [CI - Testing]" {
		t.Errorf("got %q", got)
	}
}
