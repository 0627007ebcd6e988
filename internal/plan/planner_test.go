package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/plan"
	"github.com/nomnomgen/compiler/internal/resolve"
	"github.com/nomnomgen/compiler/internal/transforms"
)

func index(names []string) map[string]int {
	out := make(map[string]int, len(names))
	for i, n := range names {
		out[n] = i
	}
	return out
}

// S2's shape: Order (root, list field) -> OrderLineItem (repeated derivation).
// Testable property 4: emission_order must place parents (and
// repeated_for.entity) before dependents.
func TestCompute_EmissionOrder_ParentsBeforeChildren(t *testing.T) {
	order := &core.EntityDef{
		Name:       "Order",
		SourceType: core.SourceRoot,
		Fields: []*core.FieldDef{
			{Name: "order_key", Type: core.FieldType{Kind: core.KindString}},
			{Name: "line_items", Type: core.FieldType{Kind: core.KindList, Elem: &core.FieldType{Kind: core.KindString}}},
		},
	}
	item := &core.EntityDef{
		Name:       "OrderLineItem",
		SourceType: core.SourceDerived,
		Repetition: core.RepetitionRepeated,
		RepeatedFor: &core.RepeatedFor{
			Entity: "Order", Field: "line_items", EachKnownAs: "li",
		},
		Parents: []core.ParentRef{{Name: "order", ParentType: "Order"}},
		Fields: []*core.FieldDef{
			{Name: "order_key", Type: core.FieldType{Kind: core.KindString},
				Extraction: &core.CopyFromSource{Parent: "order", Field: "order_key"}},
		},
	}

	r := resolve.NewResolver(transforms.NewRegistry(nil))
	g, _, err := r.Resolve([]*core.EntityDef{item, order}) // declared out of order on purpose
	require.NoError(t, err)

	p := plan.Compute(g)
	idx := index(p.EmissionOrder)
	assert.Less(t, idx["Order"], idx["OrderLineItem"])
}

// Testable property 4: field_order is a valid topological sort of the
// same-entity computed-from graph, front-loading independent fields in
// declaration order.
func TestCompute_FieldOrder_RespectsDependencies(t *testing.T) {
	a := &core.FieldDef{Name: "a", Type: core.FieldType{Kind: core.KindString}}
	b := &core.FieldDef{
		Name: "b", Type: core.FieldType{Kind: core.KindString},
		ComputedFrom: &core.ComputedFrom{Transform: "noop", Sources: []core.SourceRef{{Source: core.SourceFromField, Field: "a"}}},
	}
	c := &core.FieldDef{
		Name: "c", Type: core.FieldType{Kind: core.KindString},
		ComputedFrom: &core.ComputedFrom{Transform: "noop", Sources: []core.SourceRef{{Source: core.SourceFromField, Field: "b"}}},
	}
	// Declared out of dependency order: c, a, b.
	e := &core.EntityDef{Name: "Thing", SourceType: core.SourceRoot, Fields: []*core.FieldDef{c, a, b}}

	r := resolve.NewResolver(transforms.NewRegistry([]transforms.Signature{{Name: "noop"}}))
	g, _, err := r.Resolve([]*core.EntityDef{e})
	require.NoError(t, err)

	p := plan.Compute(g)
	order := index(p.FieldOrder["Thing"])
	assert.Less(t, order["a"], order["b"])
	assert.Less(t, order["b"], order["c"])
}

func TestCompute_FieldOrder_DeclarationOrderForIndependentFields(t *testing.T) {
	e := &core.EntityDef{
		Name:       "Thing",
		SourceType: core.SourceRoot,
		Fields: []*core.FieldDef{
			{Name: "z", Type: core.FieldType{Kind: core.KindString}},
			{Name: "a", Type: core.FieldType{Kind: core.KindString}},
		},
	}
	r := resolve.NewResolver(transforms.NewRegistry(nil))
	g, _, err := r.Resolve([]*core.EntityDef{e})
	require.NoError(t, err)

	p := plan.Compute(g)
	assert.Equal(t, []string{"z", "a"}, p.FieldOrder["Thing"])
}
