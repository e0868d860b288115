// Package gitrepo drives a working repository through go-git: branch
// resolution, status, identity, commits and pushes for the badge branch.
package gitrepo

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// tokenUser is the basic-auth username GitHub accepts alongside a token.
const tokenUser = "x-access-token"

// Options configures a Repo.
type Options struct {
	// Token authenticates fetches and pushes to HTTP(S) remotes. Empty means
	// anonymous HTTP and the default SSH agent for SSH remotes.
	Token  string
	Logger *slog.Logger
}

// Repo is a non-bare repository with a worktree.
type Repo struct {
	repo  *git.Repository
	wt    *git.Worktree
	token string
	log   *slog.Logger
}

// Open opens the repository containing dir, searching parent directories.
func Open(dir string, opts Options) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	return New(r, opts)
}

// New wraps an already opened repository.
func New(r *git.Repository, opts Options) (*Repo, error) {
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Repo{repo: r, wt: wt, token: opts.Token, log: log}, nil
}

// Git exposes the underlying go-git repository.
func (r *Repo) Git() *git.Repository { return r.repo }

// Filesystem is the worktree filesystem rooted at the repository top level.
func (r *Repo) Filesystem() billy.Filesystem { return r.wt.Filesystem }

// RemoteURL returns the first configured URL of the named remote.
func (r *Repo) RemoteURL(remote string) (string, error) {
	rem, err := r.repo.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("remote %s: %w", remote, err)
	}
	urls := rem.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no url", remote)
	}
	return urls[0], nil
}

// auth picks credentials for the named remote.
func (r *Repo) auth(remote string) (transport.AuthMethod, error) {
	if r.token == "" {
		return nil, nil
	}
	url, err := r.RemoteURL(remote)
	if err != nil {
		return nil, err
	}
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, fmt.Errorf("parsing remote url: %w", err)
	}
	if ep.Protocol != "http" && ep.Protocol != "https" {
		return nil, nil
	}
	return &githttp.BasicAuth{Username: tokenUser, Password: r.token}, nil
}

// CurrentBranch returns the short name of the checked out branch, or "" when
// HEAD is detached or unborn.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// HasLocalBranch reports whether refs/heads/<branch> exists.
func (r *Repo) HasLocalBranch(branch string) (bool, error) {
	return r.hasRef(plumbing.NewBranchReferenceName(branch))
}

// HasRemoteBranch reports whether refs/remotes/<remote>/<branch> exists.
func (r *Repo) HasRemoteBranch(remote, branch string) (bool, error) {
	return r.hasRef(plumbing.NewRemoteReferenceName(remote, branch))
}

func (r *Repo) hasRef(name plumbing.ReferenceName) (bool, error) {
	_, err := r.repo.Reference(name, true)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("resolving %s: %w", name, err)
	}
}

// shortRemoteRef strips "refs/remotes/<remote>/" from a symbolic target.
func shortRemoteRef(target plumbing.ReferenceName, remote string) string {
	prefix := "refs/remotes/" + remote + "/"
	if strings.HasPrefix(target.String(), prefix) {
		return strings.TrimPrefix(target.String(), prefix)
	}
	return ""
}
