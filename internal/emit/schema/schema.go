// Package schema emits the SQL DDL for every persistent entity: one
// CREATE TABLE per table, columns lowered by internal/typelower, a
// surrogate primary key, a unique index over the unicity fields (also used
// by the ORM emitter's get_or_create), and any declared secondary indexes.
package schema

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nomnomgen/compiler/internal/buildcache"
	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/plan"
	"github.com/nomnomgen/compiler/internal/resolve"
	"github.com/nomnomgen/compiler/internal/typelower"
)

// Generate writes schema.sql under outDir.
func Generate(g *resolve.Graph, p *plan.Plan, dialect typelower.SQLDialect, outDir string) ([]buildcache.WriteResult, error) {
	var b strings.Builder
	b.WriteString("-- Generated by nomnomgen. Do not edit by hand.\n\n")

	for _, name := range p.EmissionOrder {
		e := g.ByName[name]
		if !e.IsPersistent() {
			continue
		}
		writeTable(&b, e, dialect, p.FieldOrder[name])
	}

	path := filepath.Join(outDir, "schema.sql")
	res, err := buildcache.WriteIfChanged(path, b.Bytes())
	if err != nil {
		return nil, err
	}
	return []buildcache.WriteResult{res}, nil
}

func writeTable(b *strings.Builder, e *core.EntityDef, dialect typelower.SQLDialect, order []string) {
	table := e.TableName()
	fmt.Fprintf(b, "CREATE TABLE %s (\n", table)

	columns := []string{typelower.SurrogateKeyColumn(dialect)}
	for _, name := range order {
		f := e.FieldByName(name)
		if f == nil {
			continue
		}
		columns = append(columns, fmt.Sprintf("%s %s", f.ColumnName(), typelower.SQLColumn(f.Type, f.Nullable, dialect)))
	}
	b.WriteString("    " + strings.Join(columns, ",\n    ") + "\n")

	b.WriteString(");\n")

	if len(e.Persistence.UnicityFields) > 0 {
		cols := snakeJoin(e.Persistence.UnicityFields)
		fmt.Fprintf(b, "CREATE UNIQUE INDEX %s ON %s (%s);\n",
			indexName("ux", table, e.Persistence.UnicityFields), table, cols)
	}
	for _, ix := range e.Persistence.Indexes {
		cols := snakeJoin(ix.Fields)
		if ix.Unique {
			fmt.Fprintf(b, "CREATE UNIQUE INDEX %s ON %s (%s);\n", indexName("ux", table, ix.Fields), table, cols)
		} else {
			fmt.Fprintf(b, "CREATE INDEX %s ON %s (%s);\n", indexName("ix", table, ix.Fields), table, cols)
		}
	}
	for _, name := range order {
		f := e.FieldByName(name)
		if f == nil || !f.Indexed {
			continue
		}
		fmt.Fprintf(b, "CREATE INDEX %s ON %s (%s);\n", indexName("ix", table, []string{f.Name}), table, f.ColumnName())
	}
	b.WriteString("\n")
}

// indexName builds the stable index name spec.md §4.6.3 mandates:
// "ux_<table>_<field1>_<field2>" for unique, "ix_<table>_<field>" for
// non-unique.
func indexName(prefix, table string, fields []string) string {
	return prefix + "_" + table + "_" + strings.Join(snakeFields(fields), "_")
}

func snakeFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = core.ToSnakeCase(f)
	}
	return out
}

func snakeJoin(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = core.ToSnakeCase(n)
	}
	return strings.Join(out, ", ")
}
