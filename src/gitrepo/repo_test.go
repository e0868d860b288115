package gitrepo

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// isolateGlobalConfig keeps the developer's ~/.gitconfig out of the test.
func isolateGlobalConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

// requireGit skips tests that push or fetch over the file transport, which
// runs git-upload-pack and git-receive-pack.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func initRepo(t *testing.T, bare bool) (*git.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	r, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
		Bare:        bare,
	})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	return r, dir
}

func commitFile(t *testing.T, r *git.Repository, path, content string) plumbing.Hash {
	t.Helper()
	wt, err := r.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := util.WriteFile(wt.Filesystem, path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add(path); err != nil {
		t.Fatal(err)
	}
	h, err := wt.Commit("add "+path, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func openRepo(t *testing.T, r *git.Repository) *Repo {
	t.Helper()
	repo, err := New(r, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return repo
}

// withRemote creates a bare origin, pushes main to it and records
// origin/HEAD the way git clone does.
func withRemote(t *testing.T, r *git.Repository) string {
	t.Helper()
	_, bareDir := initRepo(t, true)
	if _, err := r.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{bareDir}}); err != nil {
		t.Fatal(err)
	}
	err := r.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{"refs/heads/main:refs/heads/main"},
	})
	if err != nil {
		t.Fatalf("push main: %v", err)
	}
	return bareDir
}

func TestIsChanged(t *testing.T) {
	r, _ := initRepo(t, false)
	commitFile(t, r, "README.md", "hello\n")
	repo := openRepo(t, r)
	fs := repo.Filesystem()

	if err := util.WriteFile(fs, "badges/demo.json", []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, err := repo.IsChanged("badges/demo.json")
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("untracked file reported unchanged")
	}

	if err := repo.Stage("badges/demo.json"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Commit("add badge", "Test", "test@example.com"); err != nil {
		t.Fatal(err)
	}
	changed, err = repo.IsChanged("badges/demo.json")
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("committed file reported changed")
	}

	if err := util.WriteFile(fs, "badges/demo.json", []byte(`{"a":2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, err = repo.IsChanged("badges/demo.json")
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("modified file reported unchanged")
	}
}

func TestIdentity(t *testing.T) {
	isolateGlobalConfig(t)
	r, _ := initRepo(t, false)
	repo := openRepo(t, r)

	name, email, err := repo.Identity()
	if err != nil {
		t.Fatal(err)
	}
	if name != "" || email != "" {
		t.Fatalf("expected empty identity, got %q <%q>", name, email)
	}

	if err := repo.SetIdentity("Mona Lisa", "mona.lisa@example.com"); err != nil {
		t.Fatal(err)
	}
	name, email, err = repo.Identity()
	if err != nil {
		t.Fatal(err)
	}
	if name != "Mona Lisa" || email != "mona.lisa@example.com" {
		t.Errorf("identity = %q <%q>", name, email)
	}

	cfg, err := r.Config()
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Raw.Section("pull").Option("rebase"); got != "false" {
		t.Errorf("pull.rebase = %q, want false", got)
	}
}

func TestBranchLifecycle(t *testing.T) {
	r, _ := initRepo(t, false)
	head := commitFile(t, r, "README.md", "hello\n")
	repo := openRepo(t, r)

	cur, err := repo.CurrentBranch()
	if err != nil || cur != "main" {
		t.Fatalf("CurrentBranch = %q, %v", cur, err)
	}

	if ok, _ := repo.HasLocalBranch("badges"); ok {
		t.Fatal("badges exists before creation")
	}
	if err := repo.CreateBranch("badges", "refs/heads/main"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := repo.HasLocalBranch("badges"); !ok {
		t.Fatal("badges missing after creation")
	}
	if err := repo.Checkout("badges"); err != nil {
		t.Fatal(err)
	}
	cur, _ = repo.CurrentBranch()
	if cur != "badges" {
		t.Errorf("CurrentBranch = %q, want badges", cur)
	}
	ref, err := r.Head()
	if err != nil {
		t.Fatal(err)
	}
	if ref.Hash() != head {
		t.Errorf("badges at %s, want %s", ref.Hash(), head)
	}

	if err := repo.Checkout("main"); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteBranch("badges"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := repo.HasLocalBranch("badges"); ok {
		t.Error("badges still exists after delete")
	}
	if err := repo.DeleteBranch("badges"); err == nil {
		t.Error("deleting a missing branch should fail")
	}
}

func TestCreateBranchUnknownStart(t *testing.T) {
	r, _ := initRepo(t, false)
	commitFile(t, r, "README.md", "hello\n")
	repo := openRepo(t, r)

	if err := repo.CreateBranch("badges", "refs/heads/nope"); err == nil {
		t.Error("expected error for unknown start ref")
	}
}

func TestDefaultBranchFromSymref(t *testing.T) {
	r, _ := initRepo(t, false)
	commitFile(t, r, "README.md", "hello\n")
	err := r.Storer.SetReference(plumbing.NewSymbolicReference(
		plumbing.NewRemoteReferenceName("origin", "HEAD"),
		plumbing.NewRemoteReferenceName("origin", "trunk"),
	))
	if err != nil {
		t.Fatal(err)
	}
	repo := openRepo(t, r)

	got, err := repo.DefaultBranch(context.Background(), "origin")
	if err != nil {
		t.Fatal(err)
	}
	if got != "trunk" {
		t.Errorf("DefaultBranch = %q, want trunk", got)
	}
}

func TestDefaultBranchUnknownRemote(t *testing.T) {
	r, _ := initRepo(t, false)
	commitFile(t, r, "README.md", "hello\n")
	repo := openRepo(t, r)

	if _, err := repo.DefaultBranch(context.Background(), "origin-false"); err == nil {
		t.Error("expected error for unknown remote")
	}
}

func TestRemoteURL(t *testing.T) {
	r, _ := initRepo(t, false)
	_, err := r.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:octo/widgets.git"}})
	if err != nil {
		t.Fatal(err)
	}
	repo := openRepo(t, r)

	url, err := repo.RemoteURL("origin")
	if err != nil {
		t.Fatal(err)
	}
	if url != "git@github.com:octo/widgets.git" {
		t.Errorf("url = %q", url)
	}
	if _, err := repo.RemoteURL("upstream"); err == nil {
		t.Error("expected error for missing remote")
	}
}

func TestAuthOnlyForHTTPRemotes(t *testing.T) {
	r, _ := initRepo(t, false)
	for name, url := range map[string]string{
		"https": "https://github.com/octo/widgets.git",
		"ssh":   "git@github.com:octo/widgets.git",
	} {
		if _, err := r.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}}); err != nil {
			t.Fatal(err)
		}
	}
	repo, err := New(r, Options{Token: "secret"})
	if err != nil {
		t.Fatal(err)
	}

	auth, err := repo.auth("https")
	if err != nil || auth == nil {
		t.Fatalf("https auth = %v, %v", auth, err)
	}
	auth, err = repo.auth("ssh")
	if err != nil || auth != nil {
		t.Errorf("ssh auth = %v, %v; want nil", auth, err)
	}
}

func TestPushFetchAndDeleteRemote(t *testing.T) {
	requireGit(t)
	r, _ := initRepo(t, false)
	commitFile(t, r, "README.md", "hello\n")
	withRemote(t, r)
	repo := openRepo(t, r)
	ctx := context.Background()

	def, err := repo.DefaultBranch(ctx, "origin")
	if err != nil {
		t.Fatalf("DefaultBranch via listing: %v", err)
	}
	if def != "main" {
		t.Errorf("DefaultBranch = %q, want main", def)
	}

	if err := repo.CreateBranch("badges", "refs/heads/main"); err != nil {
		t.Fatal(err)
	}
	if err := repo.PushBranch(ctx, "origin", "badges"); err != nil {
		t.Fatalf("PushBranch: %v", err)
	}
	cfg, _ := r.Config()
	if b, ok := cfg.Branches["badges"]; !ok || b.Remote != "origin" {
		t.Errorf("upstream not recorded: %+v", cfg.Branches["badges"])
	}

	if err := repo.Fetch(ctx, "origin"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if ok, _ := repo.HasRemoteBranch("origin", "badges"); !ok {
		t.Fatal("origin/badges missing after fetch")
	}

	if err := repo.DeleteRemoteBranch(ctx, "origin", "badges"); err != nil {
		t.Fatalf("DeleteRemoteBranch: %v", err)
	}
	if err := repo.Fetch(ctx, "origin"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if ok, _ := repo.HasRemoteBranch("origin", "badges"); ok {
		t.Error("origin/badges still present after delete and prune")
	}
}

func TestCheckoutCarriesLocalChanges(t *testing.T) {
	r, _ := initRepo(t, false)
	commitFile(t, r, "README.md", "hello\n")
	repo := openRepo(t, r)
	fs := repo.Filesystem()

	if err := repo.CreateBranch("badges", "refs/heads/main"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Checkout("badges"); err != nil {
		t.Fatal(err)
	}
	commitFile(t, r, "badges/demo.json", `{"a":1}`)
	if err := repo.Checkout("main"); err != nil {
		t.Fatal(err)
	}

	if err := util.WriteFile(fs, "README.md", []byte("hello, edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.Checkout("badges"); err != nil {
		t.Fatalf("Checkout with unrelated local change: %v", err)
	}
	if cur, _ := repo.CurrentBranch(); cur != "badges" {
		t.Errorf("CurrentBranch = %q, want badges", cur)
	}
	data, err := util.ReadFile(fs, "README.md")
	if err != nil || string(data) != "hello, edited\n" {
		t.Errorf("README.md = %q, %v; local change lost", data, err)
	}
	if _, err := fs.Stat("badges/demo.json"); err != nil {
		t.Errorf("badges/demo.json not checked out: %v", err)
	}
}

func TestCheckoutRefusesConflictingChanges(t *testing.T) {
	r, _ := initRepo(t, false)
	commitFile(t, r, "README.md", "hello\n")
	repo := openRepo(t, r)
	fs := repo.Filesystem()

	if err := repo.CreateBranch("badges", "refs/heads/main"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Checkout("badges"); err != nil {
		t.Fatal(err)
	}
	commitFile(t, r, "README.md", "hello from badges\n")
	if err := repo.Checkout("main"); err != nil {
		t.Fatal(err)
	}
	before, err := r.Head()
	if err != nil {
		t.Fatal(err)
	}

	if err := util.WriteFile(fs, "README.md", []byte("hello, edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err = repo.Checkout("badges")
	if !errors.Is(err, ErrDirtyWorktree) {
		t.Fatalf("err = %v, want ErrDirtyWorktree", err)
	}
	head, err := r.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head.Name() != plumbing.NewBranchReferenceName("main") || head.Hash() != before.Hash() {
		t.Errorf("HEAD moved to %s %s", head.Name(), head.Hash())
	}
	data, _ := util.ReadFile(fs, "README.md")
	if string(data) != "hello, edited\n" {
		t.Errorf("README.md = %q; local change lost", data)
	}
}
