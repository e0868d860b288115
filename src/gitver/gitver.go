// Package gitver resolves version metadata from git tags and expands
// {version}-style placeholders in badge labels and messages.
package gitver

import (
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// VersionInfo holds resolved version metadata from git.
type VersionInfo struct {
	Version      string // full version: "1.2.3", "1.2.3-alpha.1", "0.0.0-dev+abc1234"
	Base         string // semver base without prerelease: "1.2.3"
	Major        string
	Minor        string
	Patch        string
	Prerelease   string // "alpha.1", "beta.2", "rc.1", or "" for stable
	SHA          string
	Branch       string
	CommitDate   time.Time // HEAD author date
	IsRelease    bool      // true if HEAD is exactly at the version tag
	IsPrerelease bool
}

// DetectVersion derives version info from the highest semver tag in the
// repository. Without tags the version is 0.0.0-dev+<sha>; when HEAD is not
// the tagged commit "-dev+<sha>" is appended.
func DetectVersion(repo *git.Repository) (*VersionInfo, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting HEAD commit: %w", err)
	}

	v := &VersionInfo{
		SHA:        head.Hash().String(),
		CommitDate: commit.Author.When.UTC(),
	}
	if head.Name().IsBranch() {
		v.Branch = head.Name().Short()
	}
	short := truncate(v.SHA, 7)

	best, at, err := highestTag(repo)
	if err != nil {
		return nil, err
	}
	if best == nil {
		v.Version = "0.0.0-dev+" + short
		v.Base, v.Major, v.Minor, v.Patch = "0.0.0", "0", "0", "0"
		return v, nil
	}

	v.Major = fmt.Sprint(best.Major())
	v.Minor = fmt.Sprint(best.Minor())
	v.Patch = fmt.Sprint(best.Patch())
	v.Base = fmt.Sprintf("%s.%s.%s", v.Major, v.Minor, v.Patch)
	v.Prerelease = best.Prerelease()
	v.IsPrerelease = v.Prerelease != ""
	v.IsRelease = at == head.Hash()

	v.Version = v.Base
	if v.IsPrerelease {
		v.Version += "-" + v.Prerelease
	}
	if !v.IsRelease {
		v.Version += "-dev+" + short
	}
	return v, nil
}

// highestTag returns the greatest semver tag and the commit it points at.
// Tags that do not parse as semver are ignored.
func highestTag(repo *git.Repository) (*semver.Version, plumbing.Hash, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("listing tags: %w", err)
	}

	var (
		best *semver.Version
		at   plumbing.Hash
	)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		sv, err := semver.NewVersion(ref.Name().Short())
		if err != nil {
			return nil
		}
		if best != nil && !sv.GreaterThan(best) {
			return nil
		}
		hash, err := peel(repo, ref.Hash())
		if err != nil {
			return err
		}
		best, at = sv, hash
		return nil
	})
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("reading tags: %w", err)
	}
	return best, at, nil
}

// peel resolves an annotated tag object to its commit; lightweight tags
// already point at one.
func peel(repo *git.Repository, h plumbing.Hash) (plumbing.Hash, error) {
	tag, err := repo.TagObject(h)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return h, nil
	}
	if err != nil {
		return plumbing.ZeroHash, err
	}
	c, err := tag.Commit()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return c.Hash, nil
}

// truncate returns the first n characters of s, or s if shorter.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
