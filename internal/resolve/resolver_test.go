package resolve_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/resolve"
	"github.com/nomnomgen/compiler/internal/transforms"
)

func field(name string, kind core.FieldKind, nullable bool) *core.FieldDef {
	return &core.FieldDef{Name: name, Type: core.FieldType{Kind: kind}, Nullable: nullable}
}

func rootEntity(name string, fields ...*core.FieldDef) *core.EntityDef {
	for _, f := range fields {
		if f.Extraction == nil && f.ComputedFrom == nil {
			// root fields are producible by the root parser directly.
		}
	}
	return &core.EntityDef{Name: name, SourceType: core.SourceRoot, Fields: fields}
}

func registry(names ...string) *transforms.Registry {
	var sigs []transforms.Signature
	for _, n := range names {
		sigs = append(sigs, transforms.Signature{Name: n})
	}
	return transforms.NewRegistry(sigs)
}

func TestResolve_DuplicateEntity(t *testing.T) {
	a := rootEntity("Order", field("order_key", core.KindString, false))
	a.Persistence = &core.PersistenceCfg{UnicityFields: []string{"order_key"}}
	b := rootEntity("Order", field("order_key", core.KindString, false))

	r := resolve.NewResolver(registry())
	_, _, err := r.Resolve([]*core.EntityDef{a, b})
	require.Error(t, err)

	var errs *resolve.Errors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs.Errors, 1)
	var dup *resolve.DuplicateEntityError
	require.True(t, errors.As(errs.Errors[0], &dup))
	assert.Equal(t, "Order", dup.Name)
}

// S3: unknown transform fails resolution and names the offending transform.
func TestResolve_UnknownTransform(t *testing.T) {
	f := field("upper_key", core.KindString, false)
	f.ComputedFrom = &core.ComputedFrom{Transform: "nonexistent_fn", Sources: []core.SourceRef{{Source: core.SourceFromRaw}}}
	e := rootEntity("Order", field("order_key", core.KindString, false), f)

	r := resolve.NewResolver(registry("uppercase", "concat"))
	_, _, err := r.Resolve([]*core.EntityDef{e})
	require.Error(t, err)

	var errs *resolve.Errors
	require.True(t, errors.As(err, &errs))
	var unk *resolve.UnknownTransformError
	require.True(t, errors.As(errs.Errors[0], &unk))
	assert.Equal(t, "Order", unk.Entity)
	assert.Equal(t, "upper_key", unk.Field)
	assert.Equal(t, "nonexistent_fn", unk.Transform)
}

// §7/§8: entity A names parent B that does not exist.
func TestResolve_UnknownParent(t *testing.T) {
	child := &core.EntityDef{
		Name:       "A",
		SourceType: core.SourceDerived,
		Parents:    []core.ParentRef{{Name: "b", ParentType: "B"}},
	}

	r := resolve.NewResolver(registry())
	_, _, err := r.Resolve([]*core.EntityDef{child})
	require.Error(t, err)

	var errs *resolve.Errors
	require.True(t, errors.As(err, &errs))
	var unk *resolve.UnknownParentError
	require.True(t, errors.As(errs.Errors[0], &unk))
	assert.Equal(t, "A", unk.Entity)
	assert.Equal(t, "B", unk.Parent)
}

// §8 property 7: a parent cycle A -> B -> A fails, listing both names.
func TestResolve_ParentCycle(t *testing.T) {
	a := &core.EntityDef{Name: "A", SourceType: core.SourceDerived, Parents: []core.ParentRef{{Name: "b", ParentType: "B"}}}
	b := &core.EntityDef{Name: "B", SourceType: core.SourceDerived, Parents: []core.ParentRef{{Name: "a", ParentType: "A"}}}

	r := resolve.NewResolver(registry())
	_, _, err := r.Resolve([]*core.EntityDef{a, b})
	require.Error(t, err)

	var errs *resolve.Errors
	require.True(t, errors.As(err, &errs))
	var cyc *resolve.ParentCycleError
	require.True(t, errors.As(errs.Errors[0], &cyc))
	assert.Contains(t, cyc.Cycle, "A")
	assert.Contains(t, cyc.Cycle, "B")
}

// S4: a field cycle a <- b <- a within one entity fails with FieldCycleError.
func TestResolve_FieldCycle(t *testing.T) {
	fa := field("a", core.KindString, false)
	fa.ComputedFrom = &core.ComputedFrom{Reducer: core.ReducerNone, Sources: []core.SourceRef{{Source: core.SourceFromField, Field: "b"}}}
	fb := field("b", core.KindString, false)
	fb.ComputedFrom = &core.ComputedFrom{Sources: []core.SourceRef{{Source: core.SourceFromField, Field: "a"}}}
	fa.ComputedFrom.Transform = "noop"
	fb.ComputedFrom.Transform = "noop"

	e := rootEntity("Thing", fa, fb)

	r := resolve.NewResolver(registry("noop"))
	_, _, err := r.Resolve([]*core.EntityDef{e})
	require.Error(t, err)

	var errs *resolve.Errors
	require.True(t, errors.As(err, &errs))
	var cyc *resolve.FieldCycleError
	require.True(t, errors.As(errs.Errors[0], &cyc))
	assert.Equal(t, "Thing", cyc.Entity)
}

// repeated_for must target a list-typed field on the named parent entity.
func TestResolve_RepeatedForNonList(t *testing.T) {
	order := rootEntity("Order", field("total_price", core.KindFloat, false))
	item := &core.EntityDef{
		Name:       "OrderLineItem",
		SourceType: core.SourceDerived,
		Repetition: core.RepetitionRepeated,
		RepeatedFor: &core.RepeatedFor{
			Entity: "Order", Field: "total_price", EachKnownAs: "li",
		},
	}

	r := resolve.NewResolver(registry())
	_, _, err := r.Resolve([]*core.EntityDef{order, item})
	require.Error(t, err)

	var errs *resolve.Errors
	require.True(t, errors.As(err, &errs))
	var bad *resolve.RepeatedForNonListError
	require.True(t, errors.As(errs.Errors[0], &bad))
	assert.Equal(t, "OrderLineItem", bad.Entity)
}

// S2: a well-formed repeated derivation resolves cleanly and the repeated
// element is only reached through its own alias binding (Open Question 1).
func TestResolve_RepeatedForResolvesCleanly(t *testing.T) {
	order := rootEntity("Order", field("order_key", core.KindString, false), &core.FieldDef{
		Name: "line_items", Type: core.FieldType{Kind: core.KindList, Elem: &core.FieldType{Kind: core.KindString}},
	})
	item := &core.EntityDef{
		Name:       "OrderLineItem",
		SourceType: core.SourceDerived,
		Repetition: core.RepetitionRepeated,
		RepeatedFor: &core.RepeatedFor{
			Entity: "Order", Field: "line_items", EachKnownAs: "li",
		},
		Parents: []core.ParentRef{{Name: "order", ParentType: "Order"}},
		Fields: []*core.FieldDef{
			{Name: "order_key", Type: core.FieldType{Kind: core.KindString}, Extraction: &core.CopyFromSource{Parent: "order", Field: "order_key"}},
		},
	}

	r := resolve.NewResolver(registry())
	g, warnings, err := r.Resolve([]*core.EntityDef{order, item})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, g.Entities(), 2)
}

// A required field with no extraction, no computed_from, on a non-root
// entity fails invariant 6.
func TestResolve_RequiredFieldUnresolvable(t *testing.T) {
	order := rootEntity("Order", field("order_key", core.KindString, false))
	derived := &core.EntityDef{
		Name:       "Summary",
		SourceType: core.SourceDerived,
		Parents:    []core.ParentRef{{Name: "order", ParentType: "Order"}},
		Fields:     []*core.FieldDef{field("mystery", core.KindString, false)},
	}

	r := resolve.NewResolver(registry())
	_, _, err := r.Resolve([]*core.EntityDef{order, derived})
	require.Error(t, err)

	var errs *resolve.Errors
	require.True(t, errors.As(err, &errs))
	var bad *resolve.RequiredFieldUnresolvableError
	require.True(t, errors.As(errs.Errors[0], &bad))
	assert.Equal(t, "Summary", bad.Entity)
	assert.Equal(t, "mystery", bad.Field)
}

// A unicity field documented nullable is a warning, not an error: NULL is
// never equal to NULL under standard SQL unique-constraint semantics.
func TestResolve_NullableUnicityFieldWarns(t *testing.T) {
	e := rootEntity("Order", field("order_key", core.KindString, true))
	e.Persistence = &core.PersistenceCfg{UnicityFields: []string{"order_key"}}

	r := resolve.NewResolver(registry())
	_, warnings, err := r.Resolve([]*core.EntityDef{e})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Order", warnings[0].Entity)
	assert.Equal(t, "order_key", warnings[0].Field)
}

// A context source with a non-empty key resolves with no error and no
// warning, even when no other field uses the key.
func TestResolve_ContextKeyWarningIsNonFatal(t *testing.T) {
	f := field("batch_id", core.KindString, false)
	f.ComputedFrom = &core.ComputedFrom{Transform: "identity", Sources: []core.SourceRef{{Source: core.SourceFromContext, Key: "batch_id"}}}
	e := rootEntity("Order", field("order_key", core.KindString, false), f)

	r := resolve.NewResolver(registry("identity"))
	_, warnings, err := r.Resolve([]*core.EntityDef{e})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
