package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// CheckoutBranch makes branch the checked-out branch, creating it when
// needed, and pushes it to remote with upstream tracking.
//
// The branch starts from, in order of preference: the remote branch of the
// same name, the current branch if it already is the target, an existing
// local branch, and finally the default branch.
func (p *Pipeline) CheckoutBranch(ctx context.Context, remote, defaultBranch, branch string) error {
	repo := p.Repo
	if err := repo.Fetch(ctx, remote); err != nil {
		return fail(KindVCS, "fetch", err)
	}

	current, err := repo.CurrentBranch()
	if err != nil {
		return fail(KindVCS, "checkout", err)
	}
	onRemote, err := repo.HasRemoteBranch(remote, branch)
	if err != nil {
		return fail(KindVCS, "checkout", err)
	}
	local, err := repo.HasLocalBranch(branch)
	if err != nil {
		return fail(KindVCS, "checkout", err)
	}

	switch {
	case onRemote && !local:
		p.Log.Debug("tracking remote branch", "remote", remote, "branch", branch)
		if err := repo.CreateBranch(branch, plumbing.NewRemoteReferenceName(remote, branch).String()); err != nil {
			return fail(KindVCS, "checkout", err)
		}
	case current == branch || local:
		p.Log.Debug("reusing local branch", "branch", branch)
	default:
		start, err := p.startPoint(remote, defaultBranch)
		if err != nil {
			return fail(KindVCS, "checkout", err)
		}
		p.Log.Debug("creating branch", "branch", branch, "start", start)
		if err := repo.CreateBranch(branch, start); err != nil {
			return fail(KindVCS, "checkout", err)
		}
	}

	if err := repo.PushBranch(ctx, remote, branch); err != nil {
		return fail(KindVCS, "push", err)
	}
	if current == branch {
		return nil
	}
	if err := repo.Checkout(branch); err != nil {
		return fail(KindVCS, "checkout", err)
	}
	return nil
}

// startPoint picks the reference a new branch is created from.
func (p *Pipeline) startPoint(remote, defaultBranch string) (string, error) {
	if defaultBranch == "" {
		return "", errors.New("default branch is unknown")
	}
	ok, err := p.Repo.HasLocalBranch(defaultBranch)
	if err != nil {
		return "", err
	}
	if ok {
		return plumbing.NewBranchReferenceName(defaultBranch).String(), nil
	}
	ok, err = p.Repo.HasRemoteBranch(remote, defaultBranch)
	if err != nil {
		return "", err
	}
	if ok {
		return plumbing.NewRemoteReferenceName(remote, defaultBranch).String(), nil
	}
	return "", fmt.Errorf("default branch %s not found locally or on %s", defaultBranch, remote)
}

// Cleanup checks out defaultBranch and deletes branch locally and on remote.
func (p *Pipeline) Cleanup(ctx context.Context, remote, defaultBranch, branch string) error {
	p.Out.Start("Cleanup starts - switch to default branch (%s) and remove test branch (%s)", defaultBranch, branch)

	if err := p.Repo.Checkout(defaultBranch); err != nil {
		p.Out.Failure("Cleanup failed - %v", err)
		return fail(KindVCS, "cleanup", err)
	}
	if err := p.Repo.DeleteBranch(branch); err != nil {
		p.Out.Failure("Cleanup failed - %v", err)
		return fail(KindVCS, "cleanup", err)
	}
	p.Out.Success("Delete local working branch (%s) successfully", branch)

	if err := p.Repo.DeleteRemoteBranch(ctx, remote, branch); err != nil {
		p.Out.Failure("Cleanup failed - %v", err)
		return fail(KindVCS, "cleanup", err)
	}
	p.Out.Success("Delete remote working branch (%s) successfully", branch)
	return nil
}
