package modules

import (
	"context"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/sofmeright/badgebranch/src/lint"
)

func init() {
	lint.Register("secrets", func() lint.Module { return &secretsModule{} })
}

// secretsModule flags credentials with the gitleaks default rule set.
type secretsModule struct {
	detector *detect.Detector
}

func (m *secretsModule) Name() string { return "secrets" }

func (m *secretsModule) Check(ctx context.Context, file lint.File) ([]lint.Finding, error) {
	// Each engine owns its module instances, so lazy init is not shared.
	if m.detector == nil {
		d, err := detect.NewDetectorDefaultConfig()
		if err != nil {
			return nil, err
		}
		m.detector = d
	}

	hits := m.detector.DetectBytes(file.Data)
	findings := make([]lint.Finding, 0, len(hits))
	for _, h := range hits {
		findings = append(findings, lint.Finding{
			File:     file.Path,
			Line:     h.StartLine + 1, // gitleaks is 0-indexed
			Module:   m.Name(),
			Severity: lint.SeverityCritical,
			Message:  h.Description + " (" + h.RuleID + ")",
		})
	}
	return findings, nil
}
