package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/loader"
)

func writeSpec(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const v1Order = `
apiVersion: nomnomgen/v1
metadata:
  name: Order
  labels:
    dashboard-visible: "true"
spec:
  entity_type: root
  persistence:
    table: orders
    unicity: [order_key]
  fields:
    - name: order_key
      type: String
    - name: total_price
      type: Float
    - name: order_date
      type: String
`

const legacyOrder = `
name: Order
source_type: root
labels:
  dashboard-visible: "true"
database:
  conformant_table: orders
  unicity_fields: [order_key]
fields:
  - name: order_key
    field_type: String
  - name: total_price
    field_type: Float
  - name: order_date
    field_type: String
`

// TestLoad_DialectEquivalence is testable property 1 (spec.md §8): a v1 and
// a legacy document describing the same entity must load to structurally
// equal EntityDefs, modulo provenance (which records which file/dialect
// each came from).
func TestLoad_DialectEquivalence(t *testing.T) {
	v1Dir := t.TempDir()
	legacyDir := t.TempDir()
	writeSpec(t, v1Dir, "order.yaml", v1Order)
	writeSpec(t, legacyDir, "order.yaml", legacyOrder)

	v1Entities, err := loader.Load(v1Dir)
	require.NoError(t, err)
	legacyEntities, err := loader.Load(legacyDir)
	require.NoError(t, err)

	require.Len(t, v1Entities, 1)
	require.Len(t, legacyEntities, 1)

	a, b := v1Entities[0], legacyEntities[0]
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.SourceType, b.SourceType)
	assert.Equal(t, a.IsAbstract, b.IsAbstract)
	assert.Equal(t, a.Labels, b.Labels)
	require.NotNil(t, a.Persistence)
	require.NotNil(t, b.Persistence)
	assert.Equal(t, a.Persistence.Table, b.Persistence.Table)
	assert.Equal(t, a.Persistence.UnicityFields, b.Persistence.UnicityFields)

	require.Len(t, b.Fields, len(a.Fields))
	for i := range a.Fields {
		assert.Equal(t, a.Fields[i].Name, b.Fields[i].Name)
		assert.Equal(t, a.Fields[i].Type, b.Fields[i].Type)
		assert.Equal(t, a.Fields[i].Nullable, b.Fields[i].Nullable)
	}
}

func TestLoad_NullableTypeSuffix(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "ref.yaml", `
name: Thing
source_type: reference
fields:
  - name: note
    field_type: "String?"
`)
	entities, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	f := entities[0].FieldByName("note")
	require.NotNil(t, f)
	assert.True(t, f.Nullable)
	assert.Equal(t, core.KindString, f.Type.Kind)
}

func TestLoad_ListAndRefTypes(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "order.yaml", `
name: Order
source_type: root
fields:
  - name: line_items
    field_type: "List<Object>"
  - name: customer
    field_type: "Ref<Customer>"
`)
	entities, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, entities, 1)

	li := entities[0].FieldByName("line_items")
	require.NotNil(t, li)
	assert.Equal(t, core.KindList, li.Type.Kind)

	cust := entities[0].FieldByName("customer")
	require.NotNil(t, cust)
	assert.Equal(t, core.KindRef, cust.Type.Kind)
	assert.Equal(t, "Customer", cust.Type.RefEntity)
}

func TestLoad_ComputedFromAndCopyFrom(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "line_item.yaml", `
name: OrderLineItem
source_type: derived
parents:
  - name: order
    parent_type: Order
fields:
  - name: order_key
    field_type: String
    extraction:
      copy_from_source:
        parent: order
        field: order_key
  - name: upper_part_key
    field_type: String
    computed_from:
      transform: uppercase
      sources:
        - source: parent
          parent: order
          field: order_key
`)
	entities, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, entities, 1)

	e := entities[0]
	copied := e.FieldByName("order_key")
	require.NotNil(t, copied)
	require.NotNil(t, copied.Extraction)
	assert.Equal(t, "order", copied.Extraction.Parent)
	assert.Equal(t, "order_key", copied.Extraction.Field)

	computed := e.FieldByName("upper_part_key")
	require.NotNil(t, computed)
	require.NotNil(t, computed.ComputedFrom)
	assert.Equal(t, "uppercase", computed.ComputedFrom.Transform)
	require.Len(t, computed.ComputedFrom.Sources, 1)
	assert.Equal(t, core.SourceFromParent, computed.ComputedFrom.Sources[0].Source)
}

func TestLoad_UnknownDialectFails(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "bad.yaml", `
not_a_name: whatever
still_not_a_name: true
`)
	_, err := loader.Load(dir)
	require.Error(t, err)
	var loadErr *loader.LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoad_InvalidYAMLSyntaxFails(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "broken.yaml", "name: [this is not\n  valid yaml")
	_, err := loader.Load(dir)
	require.Error(t, err)
}

func TestLoad_MultiDocumentFile(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "two.yaml", `
name: Order
source_type: root
fields:
  - name: order_key
    field_type: String
---
name: Customer
source_type: reference
fields:
  - name: customer_name
    field_type: String
`)
	entities, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "Order", entities[0].Name)
	assert.Equal(t, "Customer", entities[1].Name)
}

func TestLoad_DirectoryIterationIsSorted(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "b_second.yaml", "name: Second\nsource_type: reference\nfields: []\n")
	writeSpec(t, dir, "a_first.yaml", "name: First\nsource_type: reference\nfields: []\n")

	entities, err := loader.Load(dir)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "First", entities[0].Name)
	assert.Equal(t, "Second", entities[1].Name)
}
