package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// CommitMessage returns the commit message for an update of branch.
func CommitMessage(branch, suffix string) string {
	return strings.TrimSpace(fmt.Sprintf("add/update to branch (%s) %s", branch, suffix))
}

// CommitAndPush stages path, commits it and pushes branch to remote with
// upstream tracking. When the repository has no complete committer identity
// the fallback identity is written to its config first. It returns the new
// commit hash.
func (p *Pipeline) CommitAndPush(ctx context.Context, opts Options, path string) (string, error) {
	name, email, err := p.Repo.Identity()
	if err != nil {
		return "", fail(KindVCS, "commit", err)
	}
	if name == "" || email == "" {
		name, email = opts.CommitterName, opts.CommitterEmail
		if err := p.Repo.SetIdentity(name, email); err != nil {
			return "", fail(KindVCS, "commit", err)
		}
	}

	if err := p.Repo.Stage(path); err != nil {
		return "", fail(KindVCS, "commit", err)
	}
	hash, err := p.Repo.Commit(CommitMessage(opts.Branch, opts.MessageSuffix), name, email)
	if err != nil {
		return "", fail(KindVCS, "commit", err)
	}
	if err := p.Repo.PushBranch(ctx, opts.Remote, opts.Branch); err != nil {
		return "", fail(KindVCS, "push", err)
	}
	return hash, nil
}
