package gitrepo

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// IsChanged reports whether path is untracked or differs from HEAD, in the
// index or the worktree.
func (r *Repo) IsChanged(path string) (bool, error) {
	status, err := r.wt.Status()
	if err != nil {
		return false, fmt.Errorf("worktree status: %w", err)
	}
	s, ok := status[path]
	if !ok {
		return false, nil
	}
	return s.Worktree != git.Unmodified || s.Staging != git.Unmodified, nil
}

// Identity returns user.name and user.email from the repository config
// merged with the user's global config.
func (r *Repo) Identity() (name, email string, err error) {
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return "", "", fmt.Errorf("reading git config: %w", err)
	}
	return cfg.User.Name, cfg.User.Email, nil
}

// SetIdentity writes user.name, user.email and pull.rebase=false into the
// repository-local config.
func (r *Repo) SetIdentity(name, email string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("reading repository config: %w", err)
	}
	cfg.User.Name = name
	cfg.User.Email = email
	cfg.Raw.Section("pull").SetOption("rebase", "false")
	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("writing repository config: %w", err)
	}
	r.log.Debug("configured committer identity", "name", name, "email", email)
	return nil
}

// Stage adds path to the index.
func (r *Repo) Stage(path string) error {
	if _, err := r.wt.Add(path); err != nil {
		return fmt.Errorf("staging %s: %w", path, err)
	}
	return nil
}

// Commit records the index as a new commit and returns its hash.
func (r *Repo) Commit(message, name, email string) (string, error) {
	hash, err := r.wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: time.Now()},
	})
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	r.log.Debug("committed", "hash", hash.String())
	return hash.String(), nil
}
