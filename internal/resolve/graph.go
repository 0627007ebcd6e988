package resolve

import "github.com/nomnomgen/compiler/internal/core"

// Graph is the Resolver's output: the validated entity collection plus the
// auxiliary indexes spec.md §4.3 names.
type Graph struct {
	// Order is entity names in source-declaration order.
	Order []string

	// ByName maps entity name to its resolved EntityDef.
	ByName map[string]*core.EntityDef

	// ChildrenOf maps entity name to the ordered set of entities that name
	// it as a parent (direct derivatives only). The Planner orders entities
	// by walking each entity's Parents instead.
	ChildrenOf map[string][]string

	// TransformsUsed is the set of distinct transform names referenced across
	// the whole compilation unit, for the Build Descriptor Writer.
	TransformsUsed map[string]struct{}
}

// Entities returns the graph's entities in declaration order.
func (g *Graph) Entities() []*core.EntityDef {
	out := make([]*core.EntityDef, 0, len(g.Order))
	for _, name := range g.Order {
		out = append(out, g.ByName[name])
	}
	return out
}

// Warning is a non-fatal resolution finding (spec.md §4.3: a context key
// that appears nowhere in the compilation unit is a warning, not an error).
type Warning struct {
	Entity  string
	Field   string
	Message string
}
