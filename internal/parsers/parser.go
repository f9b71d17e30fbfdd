// Package parsers reads heterogeneous configuration sources (lint rules,
// formatter options, framework signals, user overrides) and normalizes each
// into a list of instructions. Parsers are independent and order-agnostic;
// ordering and precedence are imposed later by the priority manager.
package parsers

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// Parser reads one configuration source.
//
// Contract: an absent source yields (nil, nil), not an error. A malformed
// source yields an error, which the runner downgrades to a per-source
// warning; one broken source must not abort the others.
type Parser interface {
	// Name identifies the source in warnings and diagnostics.
	Name() string

	// Parse reads the source under workspaceRoot and returns normalized
	// instructions.
	Parse(ctx context.Context, workspaceRoot string) ([]types.ParsedInstruction, error)
}

// Runner executes a fixed set of parsers concurrently and collects their
// results at a join point. The merge step downstream requires the complete
// set of sources, so Run returns only once every parser has finished.
type Runner struct {
	parsers []Parser
}

// NewRunner creates a runner over the given parsers. The registration order
// determines the order of the returned source lists, nothing more.
func NewRunner(parsers ...Parser) *Runner {
	return &Runner{parsers: parsers}
}

// Run executes all parsers and returns one instruction list per parser, in
// registration order, plus the warnings for parsers that failed. A failed
// parser contributes an empty list. Run itself never fails; ctx cancellation
// surfaces as per-source warnings.
func (r *Runner) Run(ctx context.Context, workspaceRoot string) ([][]types.ParsedInstruction, []*types.ConfigSourceError) {
	sources := make([][]types.ParsedInstruction, len(r.parsers))

	var mu sync.Mutex
	var warnings []*types.ConfigSourceError

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range r.parsers {
		i, p := i, p
		g.Go(func() error {
			instrs, err := p.Parse(ctx, workspaceRoot)
			if err != nil {
				mu.Lock()
				warnings = append(warnings, &types.ConfigSourceError{Source: p.Name(), Err: err})
				mu.Unlock()
				return nil
			}
			sources[i] = instrs
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures become warnings

	// Stable warning order for display: registration order, not completion
	// order.
	ordered := make([]*types.ConfigSourceError, 0, len(warnings))
	for _, p := range r.parsers {
		for _, w := range warnings {
			if w.Source == p.Name() {
				ordered = append(ordered, w)
			}
		}
	}
	return sources, ordered
}
