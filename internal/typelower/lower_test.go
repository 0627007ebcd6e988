package typelower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/typelower"
)

// TestSQLColumn_LoweringTable pins spec.md §4.5's canonical lowering table —
// the regression guard behind testable property 5 (schema/record coherence).
func TestSQLColumn_LoweringTable(t *testing.T) {
	cases := []struct {
		name     string
		typ      core.FieldType
		nullable bool
		dialect  typelower.SQLDialect
		want     string
	}{
		{"string pg not null", core.FieldType{Kind: core.KindString}, false, typelower.DialectPostgres, "TEXT NOT NULL"},
		{"string pg nullable", core.FieldType{Kind: core.KindString}, true, typelower.DialectPostgres, "TEXT NULL"},
		{"string mysql not null", core.FieldType{Kind: core.KindString}, false, typelower.DialectMySQL, "VARCHAR(255) NOT NULL"},
		{"int pg", core.FieldType{Kind: core.KindInt}, false, typelower.DialectPostgres, "BIGINT NOT NULL"},
		{"float pg", core.FieldType{Kind: core.KindFloat}, false, typelower.DialectPostgres, "NUMERIC NOT NULL"},
		{"float mysql", core.FieldType{Kind: core.KindFloat}, false, typelower.DialectMySQL, "DOUBLE NOT NULL"},
		{"bool pg", core.FieldType{Kind: core.KindBool}, false, typelower.DialectPostgres, "BOOLEAN NOT NULL"},
		{"bool mysql", core.FieldType{Kind: core.KindBool}, false, typelower.DialectMySQL, "TINYINT(1) NOT NULL"},
		{"date", core.FieldType{Kind: core.KindDate}, false, typelower.DialectPostgres, "DATE NOT NULL"},
		{"datetime pg", core.FieldType{Kind: core.KindDateTime}, false, typelower.DialectPostgres, "TIMESTAMPTZ NOT NULL"},
		{"datetime mysql", core.FieldType{Kind: core.KindDateTime}, false, typelower.DialectMySQL, "DATETIME NOT NULL"},
		{"list pg", core.FieldType{Kind: core.KindList}, false, typelower.DialectPostgres, "JSONB NOT NULL"},
		{"list mysql", core.FieldType{Kind: core.KindList}, false, typelower.DialectMySQL, "JSON NOT NULL"},
		{"ref pg", core.FieldType{Kind: core.KindRef, RefEntity: "Order"}, false, typelower.DialectPostgres, "TEXT NOT NULL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := typelower.SQLColumn(tc.typ, tc.nullable, tc.dialect)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJSONType(t *testing.T) {
	assert.Equal(t, "string", typelower.JSONType(core.FieldType{Kind: core.KindString}, false))
	assert.Equal(t, "string | null", typelower.JSONType(core.FieldType{Kind: core.KindString}, true))
	assert.Equal(t, "number", typelower.JSONType(core.FieldType{Kind: core.KindInt}, false))
	assert.Equal(t, "boolean", typelower.JSONType(core.FieldType{Kind: core.KindBool}, false))

	listType := core.FieldType{Kind: core.KindList, Elem: &core.FieldType{Kind: core.KindString}}
	assert.Equal(t, "string[]", typelower.JSONType(listType, false))
}

func TestSurrogateKeyColumn(t *testing.T) {
	assert.Equal(t, "id BIGSERIAL PRIMARY KEY", typelower.SurrogateKeyColumn(typelower.DialectPostgres))
	assert.Equal(t, "id BIGINT AUTO_INCREMENT PRIMARY KEY", typelower.SurrogateKeyColumn(typelower.DialectMySQL))
}

func TestORMColumn(t *testing.T) {
	c := typelower.ORM(core.FieldType{Kind: core.KindDateTime}, true)
	assert.Equal(t, "datetime", c.Kind)
	assert.True(t, c.Nullable)
}

func TestFieldTypeString(t *testing.T) {
	assert.Equal(t, "List<String>", core.FieldType{Kind: core.KindList, Elem: &core.FieldType{Kind: core.KindString}}.String())
	assert.Equal(t, "Ref<Order>", core.FieldType{Kind: core.KindRef, RefEntity: "Order"}.String())
}
