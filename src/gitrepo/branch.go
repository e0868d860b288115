package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultBranch resolves the remote's default branch. The local
// refs/remotes/<remote>/HEAD symref is tried first; otherwise the remote is
// asked which branch its HEAD points at.
func (r *Repo) DefaultBranch(ctx context.Context, remote string) (string, error) {
	// Don't resolve: we need the symref target, not the commit.
	ref, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remote, "HEAD"), false)
	if err == nil && ref.Type() == plumbing.SymbolicReference {
		if branch := shortRemoteRef(ref.Target(), remote); branch != "" {
			return branch, nil
		}
	}

	rem, err := r.repo.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("remote %s: %w", remote, err)
	}
	auth, err := r.auth(remote)
	if err != nil {
		return "", err
	}
	refs, err := rem.ListContext(ctx, &git.ListOptions{Auth: auth})
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", remote, err)
	}
	for _, ref := range refs {
		if ref.Name() == plumbing.HEAD && ref.Type() == plumbing.SymbolicReference && ref.Target().IsBranch() {
			return ref.Target().Short(), nil
		}
	}
	return "", fmt.Errorf("remote %s does not advertise a default branch", remote)
}

// Fetch fetches the remote and prunes stale remote-tracking refs.
func (r *Repo) Fetch(ctx context.Context, remote string) error {
	auth, err := r.auth(remote)
	if err != nil {
		return err
	}
	r.log.Debug("fetching", "remote", remote)
	err = r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remote,
		Prune:      true,
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetching %s: %w", remote, err)
	}
	return nil
}

// CreateBranch points refs/heads/<branch> at the commit start resolves to.
// start is a full reference name such as refs/remotes/origin/badges.
func (r *Repo) CreateBranch(branch, start string) error {
	from, err := r.repo.Reference(plumbing.ReferenceName(start), true)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", start, err)
	}
	name := plumbing.NewBranchReferenceName(branch)
	r.log.Debug("creating branch", "branch", branch, "start", start, "hash", from.Hash().String())
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(name, from.Hash())); err != nil {
		return fmt.Errorf("creating branch %s: %w", branch, err)
	}
	return nil
}

// ErrDirtyWorktree is returned by Checkout when local changes to tracked
// files would be overwritten by the target branch.
var ErrDirtyWorktree = errors.New("local changes would be overwritten")

// Checkout switches the worktree to the local branch. Local changes to
// tracked files are carried over when the target branch has the same content
// for those paths, as git checkout does. Otherwise HEAD is left where it was
// and ErrDirtyWorktree is returned.
func (r *Repo) Checkout(branch string) error {
	name := plumbing.NewBranchReferenceName(branch)
	r.log.Debug("checking out", "branch", branch)

	dirty, err := r.dirtyFiles()
	if err != nil {
		return fmt.Errorf("checking out %s: %w", branch, err)
	}
	var carried map[string]savedFile
	if len(dirty) > 0 {
		if err := r.unchangedBetween(name, dirty); err != nil {
			return fmt.Errorf("checking out %s: %w", branch, err)
		}
		if carried, err = r.saveFiles(dirty); err != nil {
			return fmt.Errorf("checking out %s: %w", branch, err)
		}
		r.log.Debug("carrying local changes", "files", dirty)
	}

	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return fmt.Errorf("reading HEAD: %w", err)
	}
	err = r.wt.Checkout(&git.CheckoutOptions{
		Branch: name,
		Force:  len(dirty) > 0,
	})
	if err != nil {
		// go-git moves HEAD before resetting the worktree.
		if rerr := r.repo.Storer.SetReference(head); rerr != nil {
			r.log.Warn("restoring HEAD", "ref", head.String(), "err", rerr)
		}
		return fmt.Errorf("checking out %s: %w", branch, err)
	}
	if err := r.restoreFiles(carried); err != nil {
		return fmt.Errorf("checking out %s: %w", branch, err)
	}
	return nil
}

// dirtyFiles lists tracked paths that differ from HEAD in the index or
// worktree. Untracked files are ignored.
func (r *Repo) dirtyFiles() ([]string, error) {
	status, err := r.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	var paths []string
	for path, s := range status {
		if s.Staging == git.Untracked && s.Worktree == git.Untracked {
			continue
		}
		if s.Staging == git.Unmodified && s.Worktree == git.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// unchangedBetween fails with ErrDirtyWorktree unless every path has the
// same blob (or is absent) in both HEAD and target.
func (r *Repo) unchangedBetween(target plumbing.ReferenceName, paths []string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("reading HEAD: %w", err)
	}
	from, err := r.treeAt(head.Hash())
	if err != nil {
		return err
	}
	ref, err := r.repo.Reference(target, true)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", target, err)
	}
	to, err := r.treeAt(ref.Hash())
	if err != nil {
		return err
	}

	var conflicts []string
	for _, p := range paths {
		if blobAt(from, p) != blobAt(to, p) {
			conflicts = append(conflicts, p)
		}
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("%w: %s", ErrDirtyWorktree, strings.Join(conflicts, ", "))
	}
	return nil
}

func (r *Repo) treeAt(h plumbing.Hash) (*object.Tree, error) {
	c, err := r.repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", h, err)
	}
	t, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree of %s: %w", h, err)
	}
	return t, nil
}

func blobAt(t *object.Tree, path string) plumbing.Hash {
	e, err := t.FindEntry(path)
	if err != nil {
		return plumbing.ZeroHash
	}
	return e.Hash
}

type savedFile struct {
	data    []byte
	mode    os.FileMode
	deleted bool
}

func (r *Repo) saveFiles(paths []string) (map[string]savedFile, error) {
	fs := r.wt.Filesystem
	saved := make(map[string]savedFile, len(paths))
	for _, p := range paths {
		fi, err := fs.Lstat(p)
		if errors.Is(err, os.ErrNotExist) {
			saved[p] = savedFile{deleted: true}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		data, err := util.ReadFile(fs, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		saved[p] = savedFile{data: data, mode: fi.Mode().Perm()}
	}
	return saved, nil
}

func (r *Repo) restoreFiles(saved map[string]savedFile) error {
	fs := r.wt.Filesystem
	for p, f := range saved {
		if f.deleted {
			if err := fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("removing %s: %w", p, err)
			}
			continue
		}
		if err := util.WriteFile(fs, p, f.data, f.mode); err != nil {
			return fmt.Errorf("restoring %s: %w", p, err)
		}
	}
	return nil
}

// PushBranch pushes the local branch to the same name on remote and records
// the remote as the branch upstream.
func (r *Repo) PushBranch(ctx context.Context, remote, branch string) error {
	ref := plumbing.NewBranchReferenceName(branch)
	spec := config.RefSpec(fmt.Sprintf("%s:%s", ref, ref))
	if err := r.push(ctx, remote, spec); err != nil {
		return err
	}
	return r.setUpstream(remote, branch)
}

// DeleteBranch removes the local branch and its config section.
func (r *Repo) DeleteBranch(branch string) error {
	name := plumbing.NewBranchReferenceName(branch)
	ok, err := r.hasRef(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("branch %s: %w", branch, plumbing.ErrReferenceNotFound)
	}
	r.log.Debug("deleting branch", "branch", branch)
	if err := r.repo.Storer.RemoveReference(name); err != nil {
		return fmt.Errorf("deleting branch %s: %w", branch, err)
	}
	if err := r.repo.DeleteBranch(branch); err != nil && !errors.Is(err, git.ErrBranchNotFound) {
		return fmt.Errorf("deleting branch config %s: %w", branch, err)
	}
	return nil
}

// DeleteRemoteBranch deletes the branch on remote with an empty-source
// refspec push.
func (r *Repo) DeleteRemoteBranch(ctx context.Context, remote, branch string) error {
	spec := config.RefSpec(":" + plumbing.NewBranchReferenceName(branch).String())
	if err := r.push(ctx, remote, spec); err != nil {
		return err
	}
	tracking := plumbing.NewRemoteReferenceName(remote, branch)
	if err := r.repo.Storer.RemoveReference(tracking); err != nil {
		r.log.Debug("removing remote-tracking ref", "ref", tracking.String(), "err", err)
	}
	return nil
}

func (r *Repo) push(ctx context.Context, remote string, spec config.RefSpec) error {
	auth, err := r.auth(remote)
	if err != nil {
		return err
	}
	r.log.Debug("pushing", "remote", remote, "refspec", spec.String())
	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pushing %s to %s: %w", spec, remote, err)
	}
	return nil
}

func (r *Repo) setUpstream(remote, branch string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("reading repository config: %w", err)
	}
	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	}
	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("setting upstream of %s: %w", branch, err)
	}
	return nil
}
