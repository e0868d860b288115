package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing"
)

// fakeRepo is an in-memory Repository with a single remote.
type fakeRepo struct {
	fs  billy.Filesystem
	url string

	defaultBranch string
	current       string
	local         map[string]bool
	remote        map[string]bool

	committed map[string][]byte
	staged    map[string][]byte
	commits   []string // messages

	name, email string
	identitySet bool

	calls []string
	fail  map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		fs:            memfs.New(),
		url:           "git@github.com:acme/widget.git",
		defaultBranch: "main",
		current:       "main",
		local:         map[string]bool{"main": true},
		remote:        map[string]bool{"main": true},
		committed:     map[string][]byte{},
		staged:        map[string][]byte{},
		fail:          map[string]error{},
	}
}

func (f *fakeRepo) record(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	op, _, _ := strings.Cut(call, ":")
	return f.fail[op]
}

func (f *fakeRepo) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (f *fakeRepo) Filesystem() billy.Filesystem { return f.fs }

func (f *fakeRepo) RemoteURL(remote string) (string, error) {
	if err := f.record("url:%s", remote); err != nil {
		return "", err
	}
	return f.url, nil
}

func (f *fakeRepo) DefaultBranch(_ context.Context, remote string) (string, error) {
	if err := f.record("default:%s", remote); err != nil {
		return "", err
	}
	return f.defaultBranch, nil
}

func (f *fakeRepo) Fetch(_ context.Context, remote string) error {
	return f.record("fetch:%s", remote)
}

func (f *fakeRepo) CurrentBranch() (string, error) { return f.current, nil }

func (f *fakeRepo) HasLocalBranch(branch string) (bool, error) { return f.local[branch], nil }

func (f *fakeRepo) HasRemoteBranch(_, branch string) (bool, error) { return f.remote[branch], nil }

func (f *fakeRepo) CreateBranch(branch, start string) error {
	if err := f.record("create:%s:%s", branch, start); err != nil {
		return err
	}
	f.local[branch] = true
	return nil
}

func (f *fakeRepo) Checkout(branch string) error {
	if err := f.record("checkout:%s", branch); err != nil {
		return err
	}
	if !f.local[branch] {
		return fmt.Errorf("checking out %s: %w", branch, plumbing.ErrReferenceNotFound)
	}
	f.current = branch
	return nil
}

func (f *fakeRepo) PushBranch(_ context.Context, remote, branch string) error {
	if err := f.record("push:%s:%s", remote, branch); err != nil {
		return err
	}
	f.remote[branch] = true
	return nil
}

func (f *fakeRepo) DeleteBranch(branch string) error {
	if err := f.record("delete:%s", branch); err != nil {
		return err
	}
	if !f.local[branch] || f.current == branch {
		return errors.New("cannot delete " + branch)
	}
	delete(f.local, branch)
	return nil
}

func (f *fakeRepo) DeleteRemoteBranch(_ context.Context, remote, branch string) error {
	if err := f.record("delete-remote:%s:%s", remote, branch); err != nil {
		return err
	}
	delete(f.remote, branch)
	return nil
}

func (f *fakeRepo) IsChanged(path string) (bool, error) {
	if err := f.record("status:%s", path); err != nil {
		return false, err
	}
	data, err := util.ReadFile(f.fs, path)
	if err != nil {
		return false, err
	}
	old, tracked := f.committed[path]
	return !tracked || !bytes.Equal(old, data), nil
}

func (f *fakeRepo) Identity() (string, string, error) { return f.name, f.email, nil }

func (f *fakeRepo) SetIdentity(name, email string) error {
	if err := f.record("identity:%s:%s", name, email); err != nil {
		return err
	}
	f.name, f.email, f.identitySet = name, email, true
	return nil
}

func (f *fakeRepo) Stage(path string) error {
	if err := f.record("stage:%s", path); err != nil {
		return err
	}
	data, err := util.ReadFile(f.fs, path)
	if err != nil {
		return err
	}
	f.staged[path] = data
	return nil
}

func (f *fakeRepo) Commit(message, name, email string) (string, error) {
	if err := f.record("commit:%s <%s>", name, email); err != nil {
		return "", err
	}
	for p, data := range f.staged {
		f.committed[p] = data
	}
	f.staged = map[string][]byte{}
	f.commits = append(f.commits, message)
	return fmt.Sprintf("%040d", len(f.commits)), nil
}
