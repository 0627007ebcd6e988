// Package emit_test builds the S1 (single root entity) and S2 (repeated
// derivation) scenarios from spec.md §8 directly against the in-memory
// model, then runs every emitter over the result and checks cross-emitter
// coherence (testable properties 5 and 6): the schema, the ORM model, the
// record struct, and the dashboard frontend types must all agree on field
// names, order, and nullability.
package emit_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/emit/builddesc"
	"github.com/nomnomgen/compiler/internal/emit/dashboard"
	"github.com/nomnomgen/compiler/internal/emit/extraction"
	"github.com/nomnomgen/compiler/internal/emit/orm"
	"github.com/nomnomgen/compiler/internal/emit/record"
	"github.com/nomnomgen/compiler/internal/emit/schema"
	"github.com/nomnomgen/compiler/internal/plan"
	"github.com/nomnomgen/compiler/internal/resolve"
	"github.com/nomnomgen/compiler/internal/transforms"
	"github.com/nomnomgen/compiler/internal/typelower"
)

func mustResolve(t *testing.T, entities []*core.EntityDef) (*resolve.Graph, *plan.Plan) {
	t.Helper()
	r := resolve.NewResolver(transforms.NewRegistry(nil))
	g, warnings, err := r.Resolve(entities)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	return g, plan.Compute(g)
}

// S1 — single root entity, no parents, persistent with a unicity index.
func s1Order() *core.EntityDef {
	return &core.EntityDef{
		Name:       "Order",
		SourceType: core.SourceRoot,
		Fields: []*core.FieldDef{
			{Name: "order_key", Type: core.FieldType{Kind: core.KindString}},
			{Name: "total_price", Type: core.FieldType{Kind: core.KindFloat}},
			{Name: "order_date", Type: core.FieldType{Kind: core.KindString}},
		},
		Persistence: &core.PersistenceCfg{
			Table:         "orders",
			UnicityFields: []string{"order_key"},
		},
	}
}

func TestS1_SchemaMatchesSpecLiterally(t *testing.T) {
	g, p := mustResolve(t, []*core.EntityDef{s1Order()})

	results, err := schema.Generate(g, p, typelower.DialectPostgres, t.TempDir())
	require.NoError(t, err)
	require.Len(t, results, 1)

	content, err := readBack(results[0].Path)
	require.NoError(t, err)

	assert.Contains(t, content, "CREATE TABLE orders (\n    id BIGSERIAL PRIMARY KEY,\n    order_key TEXT NOT NULL,\n    total_price NUMERIC NOT NULL,\n    order_date TEXT NOT NULL\n);")
	assert.Contains(t, content, "CREATE UNIQUE INDEX ux_orders_order_key ON orders (order_key);")
}

// Testable property 5: schema column names/types/nullability, the ORM
// model's columns, and the record struct's fields must all agree.
func TestS1_SchemaRecordORMCoherence(t *testing.T) {
	g, p := mustResolve(t, []*core.EntityDef{s1Order()})
	outDir := t.TempDir()

	schemaResults, err := schema.Generate(g, p, typelower.DialectPostgres, filepath.Join(outDir, "schema"))
	require.NoError(t, err)
	schemaContent, err := readBack(schemaResults[0].Path)
	require.NoError(t, err)

	ormResults, err := orm.Generate(g, p, typelower.DialectPostgres, filepath.Join(outDir, "orm"))
	require.NoError(t, err)
	require.Len(t, ormResults, 1)
	ormContent, err := readBack(ormResults[0].Path)
	require.NoError(t, err)

	recordResults, err := record.Generate(g, p, filepath.Join(outDir, "record"))
	require.NoError(t, err)
	require.Len(t, recordResults, 1)
	recordContent, err := readBack(recordResults[0].Path)
	require.NoError(t, err)

	for _, col := range []string{"order_key", "total_price", "order_date"} {
		assert.Contains(t, schemaContent, col, "schema missing column %s", col)
		assert.Contains(t, ormContent, col, "orm model missing column %s", col)
		assert.Contains(t, recordContent, "pub "+col+":", "record struct missing field %s", col)
	}

	assert.Contains(t, ormContent, "pub struct OrderRow")
	assert.Contains(t, ormContent, "get_or_create_order")
	assert.Contains(t, recordContent, "pub struct Order {")
	assert.Contains(t, recordContent, "from_string")
}

// S2 — repeated derivation: OrderLineItem gets one instance per element of
// Order.line_items, with order_key copied from the parent, and Order
// precedes OrderLineItem in emission order.
func s2Entities() []*core.EntityDef {
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
			{Name: "line_number", Type: core.FieldType{Kind: core.KindInt}},
			{Name: "part_key", Type: core.FieldType{Kind: core.KindString}},
			{Name: "quantity", Type: core.FieldType{Kind: core.KindFloat}},
		},
	}
	return []*core.EntityDef{order, item}
}

func TestS2_EmissionOrderAndRepeatedConstructor(t *testing.T) {
	g, p := mustResolve(t, s2Entities())

	require.Equal(t, []string{"Order", "OrderLineItem"}, p.EmissionOrder)

	results, err := record.Generate(g, p, t.TempDir())
	require.NoError(t, err)
	require.Len(t, results, 2)

	var lineItemSrc string
	for _, r := range results {
		if strings.HasSuffix(r.Path, "order_line_item.rs") {
			content, err := readBack(r.Path)
			require.NoError(t, err)
			lineItemSrc = content
		}
	}
	require.NotEmpty(t, lineItemSrc)
	assert.Contains(t, lineItemSrc, "from_parent_repeated(parent: &Order)")
	assert.Contains(t, lineItemSrc, "parent.line_items.iter()")
	assert.Contains(t, lineItemSrc, "extract_order_line_item(parent, li)")
	assert.Contains(t, lineItemSrc, "pub order_key:")
}

// Testable property 6: dashboard frontend types list the same fields, in
// the same order, as the record struct — both driven off the same
// plan.Plan.FieldOrder.
func TestDashboard_FrontendRecordFieldOrderCoherence(t *testing.T) {
	order := s1Order()
	g, p := mustResolve(t, []*core.EntityDef{order})
	outDir := t.TempDir()

	recordResults, err := record.Generate(g, p, filepath.Join(outDir, "record"))
	require.NoError(t, err)
	recordContent, err := readBack(recordResults[0].Path)
	require.NoError(t, err)

	dashResults, err := dashboard.Generate(g, p, "/api", filepath.Join(outDir, "dashboard"))
	require.NoError(t, err)

	var typesContent string
	for _, r := range dashResults {
		if strings.HasSuffix(r.Path, "types.ts") {
			typesContent, err = readBack(r.Path)
			require.NoError(t, err)
		}
	}
	require.NotEmpty(t, typesContent)

	// Field order in FieldOrder drives both emitters identically.
	fieldOrder := p.FieldOrder["Order"]
	require.NotEmpty(t, fieldOrder)

	lastRecordIdx, lastTypesIdx := -1, -1
	for _, name := range fieldOrder {
		col := order.FieldByName(name).ColumnName()
		recIdx := strings.Index(recordContent, "pub "+col+":")
		typesIdx := strings.Index(typesContent, "  "+col+":")
		require.Greater(t, recIdx, lastRecordIdx, "field %s out of order in record struct", col)
		require.Greater(t, typesIdx, lastTypesIdx, "field %s out of order in frontend types", col)
		lastRecordIdx, lastTypesIdx = recIdx, typesIdx
	}

	assert.Contains(t, typesContent, "export interface Order {")
}

// S2's copied field reads through the parent's local binding name, never
// through the repeated element's alias (Open Question 1 in SPEC_FULL.md §9).
func TestS2_ExtractionCopiesThroughParentBinding(t *testing.T) {
	g, p := mustResolve(t, s2Entities())

	results, err := extraction.Generate(g, p, t.TempDir())
	require.NoError(t, err)
	require.Len(t, results, 1)

	content, err := readBack(results[0].Path)
	require.NoError(t, err)

	assert.Contains(t, content, "pub fn extract_order_line_item(order: &Order, li: &String)")
	assert.Contains(t, content, "let order_key = order.order_key.clone(); // copy_from_source")
	assert.Contains(t, content, "let line_number = parse_element_field(li, \"line_number\")?;")
}

// Testable property 3 (emission determinism): the build descriptor names
// every entity once, in emission order, and lists exactly the emitters that
// actually ran.
func TestBuildDescriptor_ListsEntitiesInEmissionOrder(t *testing.T) {
	g, p := mustResolve(t, s2Entities())

	desc := builddesc.Build(g, p, []string{"record", "extraction"})
	require.Len(t, desc.Entities, 2)
	assert.Equal(t, "Order", desc.Entities[0].Name)
	assert.Equal(t, 0, desc.Entities[0].EmissionOrder)
	assert.Equal(t, "OrderLineItem", desc.Entities[1].Name)
	assert.Equal(t, 1, desc.Entities[1].EmissionOrder)
	assert.Equal(t, []string{"record", "extraction"}, desc.EmittersRun)
}

func readBack(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
