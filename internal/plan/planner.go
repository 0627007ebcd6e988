// Package plan computes the two orderings spec.md §4.4 calls for: the
// per-entity field extraction order, and the global entity emission order.
// Planning is purely a function of a resolved resolve.Graph — it cannot
// fail once resolution has succeeded (spec.md §7: "Plan errors: none
// beyond resolve errors").
package plan

import (
	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/output"
	"github.com/nomnomgen/compiler/internal/resolve"
)

// Plan is the Planner's immutable output.
type Plan struct {
	// EmissionOrder lists entity names such that parents precede children
	// and repeated_for.entity precedes its dependent entity.
	EmissionOrder []string

	// FieldOrder maps entity name to its field extraction order.
	FieldOrder map[string][]string
}

// Compute builds a Plan from a resolved graph.
func Compute(g *resolve.Graph) *Plan {
	p := &Plan{
		FieldOrder: make(map[string][]string, len(g.Order)),
	}

	for _, name := range g.Order {
		e := g.ByName[name]
		order := fieldOrder(e)
		p.FieldOrder[name] = order
	}

	p.EmissionOrder = emissionOrder(g)
	for rank, name := range p.EmissionOrder {
		g.ByName[name].EmissionOrder = rank
	}

	output.Debug("computed plan", "entities", len(p.EmissionOrder))
	return p
}

// fieldOrder topologically sorts e's fields by SameEntityDeps, front-loading
// fields with no intra-entity dependency in declaration order, and breaking
// ties by declaration order (spec.md §4.4).
func fieldOrder(e *core.EntityDef) []string {
	index := make(map[string]int, len(e.Fields))
	for i, f := range e.Fields {
		index[f.Name] = i
	}

	visited := make(map[string]bool, len(e.Fields))
	var order []string

	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		f := e.FieldByName(name)
		if f != nil {
			for _, dep := range f.SameEntityDeps {
				visit(dep)
			}
		}
		order = append(order, name)
	}

	// Fields with no intra-entity dependency go first, in declaration order.
	for _, f := range e.Fields {
		if len(f.SameEntityDeps) == 0 {
			visit(f.Name)
		}
	}
	// Declaration order drives visitation so ties resolve to declaration order.
	for _, f := range e.Fields {
		visit(f.Name)
	}

	return order
}

// emissionOrder topologically sorts entities so that parents precede
// children and repeated_for.entity precedes the dependent entity. Within
// each topological rank, entities keep their declaration order.
func emissionOrder(g *resolve.Graph) []string {
	visited := make(map[string]bool, len(g.Order))
	var order []string

	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		e := g.ByName[name]
		if e == nil {
			return
		}
		for _, p := range e.Parents {
			visit(p.ParentType)
		}
		if e.RepeatedFor != nil {
			visit(e.RepeatedFor.Entity)
		}
		order = append(order, name)
	}

	for _, name := range g.Order {
		visit(name)
	}

	return order
}
