package pipeline

import (
	"context"

	"github.com/go-git/go-billy/v5"
)

// Repository is the set of version-control operations a run needs.
// gitrepo.Repo implements it against a real working tree.
type Repository interface {
	Filesystem() billy.Filesystem
	RemoteURL(remote string) (string, error)

	DefaultBranch(ctx context.Context, remote string) (string, error)
	Fetch(ctx context.Context, remote string) error
	CurrentBranch() (string, error)
	HasLocalBranch(branch string) (bool, error)
	HasRemoteBranch(remote, branch string) (bool, error)
	CreateBranch(branch, start string) error
	Checkout(branch string) error
	PushBranch(ctx context.Context, remote, branch string) error
	DeleteBranch(branch string) error
	DeleteRemoteBranch(ctx context.Context, remote, branch string) error

	IsChanged(path string) (bool, error)
	Identity() (name, email string, err error)
	SetIdentity(name, email string) error
	Stage(path string) error
	Commit(message, name, email string) (string, error)
}
