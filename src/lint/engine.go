package lint

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Engine runs a fixed set of modules over file content.
type Engine struct {
	Modules []Module
}

// NewEngine creates an engine with the named modules, or every registered
// module when names is empty.
func NewEngine(names ...string) (*Engine, error) {
	if len(names) == 0 {
		names = All()
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("lint: no modules registered")
	}
	e := &Engine{}
	for _, name := range names {
		m, err := Get(name)
		if err != nil {
			return nil, err
		}
		e.Modules = append(e.Modules, m)
	}
	return e, nil
}

// Check runs every module over data concurrently. Findings are ordered by
// line, column and module. The first module error cancels the rest.
func (e *Engine) Check(ctx context.Context, path string, data []byte) ([]Finding, error) {
	file := File{Path: path, Data: data}
	results := make([][]Finding, len(e.Modules))

	g, ctx := errgroup.WithContext(ctx)
	for i, m := range e.Modules {
		g.Go(func() error {
			found, err := m.Check(ctx, file)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", m.Name(), path, err)
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []Finding
	for _, r := range results {
		findings = append(findings, r...)
	}
	slices.SortStableFunc(findings, func(a, b Finding) int {
		return cmp.Or(
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Column, b.Column),
			cmp.Compare(a.Module, b.Module),
		)
	})
	return findings, nil
}
