// Package pipeline runs a badge update: it prepares the badge branch,
// renders the endpoint descriptor, commits and pushes it when it changed,
// and prints the markdown that embeds the badge.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/sofmeright/badgebranch/src/badge"
	"github.com/sofmeright/badgebranch/src/endpoint"
	"github.com/sofmeright/badgebranch/src/lint"
	"github.com/sofmeright/badgebranch/src/output"
	"github.com/sofmeright/badgebranch/src/readme"
)

// Options describes one run.
type Options struct {
	Remote   string
	Branch   string
	Name     string
	Template string // empty selects the built-in template
	Spec     endpoint.Spec
	Styles   []string

	CommitterName  string
	CommitterEmail string
	MessageSuffix  string

	Cleanup     bool
	ScanSecrets bool
	PreviewSVG  string // local path for an SVG preview, empty to skip
	Readme      string // README path checked for the badge, empty to skip
}

// Result reports what a run did.
type Result struct {
	DefaultBranch  string
	Path           string
	Changed        bool
	Commit         string
	Link           string
	ReadmeChecked  bool
	ReadmeHasBadge bool
}

// ContentChecker inspects rendered content before it is committed.
type ContentChecker interface {
	Check(ctx context.Context, path string, data []byte) ([]lint.Finding, error)
}

// Previewer renders a badge as SVG.
type Previewer interface {
	Generate(b badge.Badge) string
}

// Pipeline wires a repository to progress output and optional checks.
type Pipeline struct {
	Repo    Repository
	Out     *output.Printer
	Log     *slog.Logger
	Guard   ContentChecker      // nil disables the content guard
	Preview Previewer           // nil disables SVG previews
	Expand  func(string) string // applied to label and message; nil leaves them as is
}

// New returns a Pipeline over repo with quiet defaults for output and logs.
func New(repo Repository, out *output.Printer, log *slog.Logger) *Pipeline {
	if out == nil {
		out = &output.Printer{Writer: io.Discard}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{Repo: repo, Out: out, Log: log}
}

// Run executes the badge update. Cleanup, when requested, runs after
// everything else whatever the outcome; its failure is returned only when
// the run itself succeeded.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	def, err := p.Repo.DefaultBranch(ctx, opts.Remote)
	if err != nil {
		p.Log.Warn("default branch unknown", "remote", opts.Remote, "err", err)
		p.Out.Warn("could not resolve the default branch of %s: %v", opts.Remote, err)
	}
	res.DefaultBranch = def

	runErr := p.run(ctx, opts, res)

	if opts.Cleanup {
		if def == "" {
			p.Out.Skip("Cleanup skipped - default branch of %s is unknown", opts.Remote)
		} else if err := p.Cleanup(ctx, opts.Remote, def, opts.Branch); err != nil && runErr == nil {
			runErr = err
		}
	}
	return res, runErr
}

func (p *Pipeline) run(ctx context.Context, opts Options, res *Result) error {
	fsys := p.Repo.Filesystem()
	spec := opts.Spec
	if p.Expand != nil {
		spec.Label = p.Expand(spec.Label)
		spec.Message = p.Expand(spec.Message)
	}

	// Read from the starting checkout, before switching to the badge branch.
	var readmeData []byte
	if opts.Readme != "" {
		data, err := util.ReadFile(fsys, opts.Readme)
		if err != nil {
			p.Log.Debug("readme not readable", "path", opts.Readme, "err", err)
		} else {
			readmeData = data
			res.ReadmeChecked = true
		}
	}

	p.Out.Start("Starting to create a badge (%s.json) on branch (%s)", opts.Name, opts.Branch)

	if err := p.CheckoutBranch(ctx, opts.Remote, res.DefaultBranch, opts.Branch); err != nil {
		p.Out.Failure("failed to checkout %s", opts.Branch)
		return err
	}
	p.Out.Success("checkout branch (%s) locally", opts.Branch)

	styles := opts.Styles
	if styles == nil {
		styles = endpoint.Styles
	}
	if err := endpoint.Validate(styles, spec.Style, spec.LabelColor, spec.MessageColor); err != nil {
		p.Out.Failure("one or more of your inputs failed validations")
		return fail(KindValidation, "validate", err)
	}
	p.Out.Success("validated inputs from command line options")

	// The committed copy is put back if the content guard rejects the new one.
	prev, prevErr := util.ReadFile(fsys, endpoint.Path(opts.Name))
	existed := prevErr == nil

	path, err := endpoint.RenderFile(fsys, opts.Template, spec.Substitutions(), opts.Name)
	if err != nil {
		p.Out.Failure("failed to create %s.json", opts.Name)
		return fail(KindIO, "render", err)
	}
	res.Path = path
	src := opts.Template
	if src == "" {
		src = "built-in template"
	}
	p.Out.Success("created %s.json from %s", opts.Name, src)

	if opts.ScanSecrets && p.Guard != nil {
		if err := p.scan(ctx, fsys, path, prev, existed); err != nil {
			return err
		}
	}

	if opts.PreviewSVG != "" && p.Preview != nil {
		svg := p.Preview.Generate(badge.FromSpec(spec))
		if err := os.WriteFile(opts.PreviewSVG, []byte(svg), 0o644); err != nil {
			p.Out.Failure("failed to write preview %s", opts.PreviewSVG)
			return fail(KindIO, "preview", err)
		}
		p.Out.Info("preview written to %s", opts.PreviewSVG)
	}

	changed, err := p.Repo.IsChanged(path)
	if err != nil {
		return fail(KindVCS, "status", err)
	}
	res.Changed = changed
	if !changed {
		p.Out.Success("found no changes (current is up to date)")
		return nil
	}
	p.Out.Success("found unstaged changes ready to stage, commit, and push to %s", opts.Remote)

	hash, err := p.CommitAndPush(ctx, opts, path)
	if err != nil {
		p.Out.Failure("failed to push changes to %s", opts.Remote)
		return err
	}
	res.Commit = hash
	p.Out.Success("pushed commit (%s) to remote with branch (%s)", short(hash), opts.Branch)

	remoteURL, err := p.Repo.RemoteURL(opts.Remote)
	if err != nil {
		return fail(KindVCS, "link", err)
	}
	ownerRepo, err := endpoint.OwnerRepo(remoteURL)
	if err != nil {
		return fail(KindValidation, "link", err)
	}
	imageURL := endpoint.ImageURL(ownerRepo, opts.Branch, opts.Name)
	res.Link = endpoint.MarkdownLink(opts.Name, imageURL)
	p.Out.Result("Endpoint Badge: %s", res.Link)

	if res.ReadmeChecked {
		res.ReadmeHasBadge = readme.HasImage(readmeData, imageURL)
		if res.ReadmeHasBadge {
			p.Out.Info("%s already embeds this badge", opts.Readme)
		} else {
			p.Out.Info("%s does not embed this badge yet", opts.Readme)
		}
	}
	return nil
}

// scan runs the content guard over the rendered file. Critical findings
// abort the run and put back the previous content of path, or remove it when
// it did not exist before rendering.
func (p *Pipeline) scan(ctx context.Context, fsys billy.Filesystem, path string, prev []byte, existed bool) error {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return fail(KindIO, "scan", err)
	}
	findings, err := p.Guard.Check(ctx, path, data)
	if err != nil {
		return fail(KindIO, "scan", err)
	}
	for _, f := range findings {
		if f.Severity == lint.SeverityCritical {
			p.Out.Failure("%s", f)
		} else {
			p.Out.Warn("%s", f)
		}
	}
	if crit := lint.Critical(findings); len(crit) > 0 {
		var err error
		if existed {
			err = util.WriteFile(fsys, path, prev, 0o644)
		} else {
			err = fsys.Remove(path)
		}
		if err != nil {
			p.Log.Warn("discarding rendered badge", "path", path, "err", err)
		}
		return fail(KindValidation, "scan", fmt.Errorf("%s has %d critical finding(s)", path, len(crit)))
	}
	return nil
}

func short(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
