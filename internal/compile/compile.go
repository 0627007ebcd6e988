// Package compile wires the whole pipeline together: load, resolve, plan,
// emit. It is the single entrypoint both `nomnomgen compile` and
// `nomnomgen validate` drive, with validate stopping after resolve.
package compile

import (
	"fmt"

	"github.com/nomnomgen/compiler/internal/emit"
	"github.com/nomnomgen/compiler/internal/genconfig"
	"github.com/nomnomgen/compiler/internal/loader"
	"github.com/nomnomgen/compiler/internal/output"
	"github.com/nomnomgen/compiler/internal/plan"
	"github.com/nomnomgen/compiler/internal/resolve"
	"github.com/nomnomgen/compiler/internal/transforms"
)

// Resolved bundles the outputs of load+resolve+plan, reused by both
// `validate` (stops here) and `compile` (goes on to emit).
type Resolved struct {
	Graph    *resolve.Graph
	Plan     *plan.Plan
	Warnings []resolve.Warning
}

// Resolve loads entity specs from cfg.SpecDir, resolves them against the
// transform registry at cfg.TransformRegistry, and computes the plan.
func Resolve(cfg *genconfig.Config) (*Resolved, error) {
	entities, err := loader.Load(cfg.SpecDir)
	if err != nil {
		return nil, fmt.Errorf("loading specs: %w", err)
	}

	registry, err := transforms.LoadRegistry(cfg.TransformRegistry)
	if err != nil {
		return nil, fmt.Errorf("loading transform registry: %w", err)
	}

	r := resolve.NewResolver(registry)
	g, warnings, err := r.Resolve(entities)
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		output.Warn("resolution warning", "entity", w.Entity, "field", w.Field, "message", w.Message)
	}

	p := plan.Compute(g)

	return &Resolved{Graph: g, Plan: p, Warnings: warnings}, nil
}

// Compile runs the full pipeline: resolve, then emit every enabled emitter.
func Compile(cfg *genconfig.Config) (*emit.Result, error) {
	resolved, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}
	return emit.Run(resolved.Graph, resolved.Plan, cfg)
}
