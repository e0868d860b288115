package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/badgebranch/src/badge"
	"github.com/sofmeright/badgebranch/src/config"
	"github.com/sofmeright/badgebranch/src/endpoint"
	"github.com/sofmeright/badgebranch/src/gitrepo"
	"github.com/sofmeright/badgebranch/src/gitver"
	"github.com/sofmeright/badgebranch/src/lint"
	_ "github.com/sofmeright/badgebranch/src/lint/modules"
	"github.com/sofmeright/badgebranch/src/logger"
	"github.com/sofmeright/badgebranch/src/output"
	"github.com/sofmeright/badgebranch/src/pipeline"
)

var _ pipeline.Repository = (*gitrepo.Repo)(nil)

var (
	bbName         string
	bbTemplate     string
	bbBranch       string
	bbRemote       string
	bbStyle        string
	bbLabel        string
	bbLabelColor   string
	bbMessage      string
	bbMessageColor string
	bbGitName      string
	bbGitEmail     string
	bbCleanup      bool
	bbPreview      string
	bbReadme       string
	bbFailOnError  bool
)

func init() {
	f := rootCmd.Flags()
	f.StringVar(&bbName, "badge-name", "badge", "badge name, written to badges/<name>.json")
	f.StringVar(&bbTemplate, "badge-file-src", "", "endpoint template with TPL_* tokens (default: built-in template)")
	f.StringVar(&bbBranch, "badge-branch", "badges", "branch the badge is committed to")
	f.StringVar(&bbRemote, "remote-name", "origin", "git remote to push to")
	f.StringVar(&bbStyle, "badge-style", "flat", "badge style (flat, flat-square, plastic, for-the-badge, social)")
	f.StringVar(&bbLabel, "label", "demo", "badge left side text; {version}-style placeholders expand, and {env:VAR} copies VAR into the public badge")
	f.StringVar(&bbLabelColor, "label-color", "2e2e2e", "badge left side hex color")
	f.StringVar(&bbMessage, "message", "no status", "badge right side text; {version}-style placeholders expand, and {env:VAR} copies VAR into the public badge")
	f.StringVar(&bbMessageColor, "message-color", "2986CC", "badge right side hex color")
	f.StringVar(&bbGitName, "gitconfig-name", "Mona Lisa", "committer name used when git has none configured")
	f.StringVar(&bbGitEmail, "gitconfig-email", "mona.lisa@example.com", "committer email used when git has none configured")
	f.BoolVar(&bbCleanup, "ci-cleanup", false, "switch back to the default branch and delete the badge branch locally and remotely")
	f.StringVar(&bbPreview, "preview-svg", "", "also write a local SVG preview of the badge to this path")
	f.StringVar(&bbReadme, "readme", "README.md", "README checked for the badge after pushing (empty to skip)")
	f.BoolVar(&bbFailOnError, "fail-on-error", false, "exit non-zero when the run fails")
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	set := func(name string, dst *string, val string) {
		if f.Changed(name) {
			*dst = val
		}
	}
	set("badge-name", &c.Badge.Name, bbName)
	set("badge-file-src", &c.Badge.Template, bbTemplate)
	set("badge-branch", &c.Badge.Branch, bbBranch)
	set("remote-name", &c.Git.Remote, bbRemote)
	set("badge-style", &c.Badge.Style, bbStyle)
	set("label", &c.Badge.Label, bbLabel)
	set("label-color", &c.Badge.LabelColor, bbLabelColor)
	set("message", &c.Badge.Message, bbMessage)
	set("message-color", &c.Badge.MessageColor, bbMessageColor)
	set("gitconfig-name", &c.Git.CommitterName, bbGitName)
	set("gitconfig-email", &c.Git.CommitterEmail, bbGitEmail)
	set("preview-svg", &c.Badge.PreviewSVG, bbPreview)
	set("readme", &c.Policy.Readme, bbReadme)
	if f.Changed("fail-on-error") {
		c.Policy.FailOnError = bbFailOnError
	}
	if verbose {
		c.Log.Level = "debug"
	}
}

func runBadge(cmd *cobra.Command, args []string) error {
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	rt, err := config.LoadRuntime(cfg)
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, cfg.Log.Level)
	out := output.NewPrinter()
	out.Writer = cmd.OutOrStdout()

	output.SectionStart(out.Writer, "badgebranch", "badgebranch")
	start := time.Now()
	res, runErr := runPipeline(cmd, rt, out, log)
	output.SectionEnd(out.Writer, "badgebranch")

	printSummary(out, res, runErr, time.Since(start))

	if runErr == nil {
		return nil
	}
	if cfg.Policy.FailOnError {
		return runErr
	}
	log.Warn("run failed; exiting 0 (fail_on_error is off)", "kind", pipeline.KindOf(runErr).String(), "err", runErr)
	return nil
}

func runPipeline(cmd *cobra.Command, rt config.Runtime, out *output.Printer, log *slog.Logger) (*pipeline.Result, error) {
	repo, err := gitrepo.Open(rt.Dir, gitrepo.Options{Token: rt.Token, Logger: log})
	if err != nil {
		return nil, &pipeline.Error{Kind: pipeline.KindVCS, Stage: "open", Err: err}
	}

	p := pipeline.New(repo, out, log)

	// Placeholders resolve against the starting checkout.
	resolver := &gitver.Resolver{}
	if info, err := gitver.DetectVersion(repo.Git()); err != nil {
		log.Debug("version detection failed", "err", err)
	} else {
		resolver.Info = info
	}
	p.Expand = resolver.Resolve

	if cfg.Policy.ScanSecrets {
		guard, err := lint.NewEngine()
		if err != nil {
			return nil, &pipeline.Error{Kind: pipeline.KindIO, Stage: "scan", Err: err}
		}
		p.Guard = guard
	}
	if cfg.Badge.PreviewSVG != "" {
		eng, err := previewEngine(cfg.Badge)
		if err != nil {
			return nil, &pipeline.Error{Kind: pipeline.KindIO, Stage: "preview", Err: err}
		}
		p.Preview = eng
	}

	return p.Run(cmd.Context(), pipeline.Options{
		Remote:   cfg.Git.Remote,
		Branch:   cfg.Badge.Branch,
		Name:     cfg.Badge.Name,
		Template: cfg.Badge.Template,
		Spec: endpoint.Spec{
			Style:        cfg.Badge.Style,
			Label:        cfg.Badge.Label,
			LabelColor:   cfg.Badge.LabelColor,
			Message:      cfg.Badge.Message,
			MessageColor: cfg.Badge.MessageColor,
		},
		Styles:         endpoint.Styles,
		CommitterName:  cfg.Git.CommitterName,
		CommitterEmail: cfg.Git.CommitterEmail,
		MessageSuffix:  rt.MessageSuffix,
		Cleanup:        bbCleanup,
		ScanSecrets:    cfg.Policy.ScanSecrets,
		PreviewSVG:     cfg.Badge.PreviewSVG,
		Readme:         cfg.Policy.Readme,
	})
}

// previewEngine builds the SVG preview engine from the badge font settings.
// font_file takes precedence over the built-in font name.
func previewEngine(c config.BadgeConfig) (*badge.Engine, error) {
	var (
		m   *badge.FontMetrics
		err error
	)
	if c.FontFile != "" {
		m, err = badge.LoadFontFile(c.FontFile, c.FontSize)
	} else {
		m, err = badge.LoadBuiltinFont(c.Font, c.FontSize)
	}
	if err != nil {
		return nil, fmt.Errorf("loading badge font: %w", err)
	}
	return badge.New(m), nil
}

func printSummary(out *output.Printer, res *pipeline.Result, runErr error, elapsed time.Duration) {
	sec := output.NewSection(out.Writer, "Summary", elapsed, out.Color)
	defer sec.Close()

	if res != nil {
		sec.KV("branch", cfg.Badge.Branch)
		if res.DefaultBranch != "" {
			sec.KV("default", res.DefaultBranch)
		}
		switch {
		case res.Commit != "":
			sec.KV("commit", res.Commit)
		case runErr == nil && !res.Changed:
			sec.KV("commit", "up to date")
		}
	}
	if runErr != nil {
		sec.Row("%s %s", output.StatusIcon("failed", out.Color), fmt.Sprintf("%s error: %v", pipeline.KindOf(runErr), runErr))
		return
	}
	sec.Row("%s %s", output.StatusIcon("success", out.Color), "done")
}
