// Package record emits one record-struct file per entity: the plain data
// type every other emitter's generated code passes around in memory. Field
// order follows the Planner's per-entity FieldOrder, not declaration order,
// so a field never references a struct member declared after it. Abstract
// entities are skipped entirely (spec.md §3: "if true, no tables, models,
// or extraction are emitted").
//
// Each non-abstract entity also gets the conversion surface spec.md §4.6.1
// requires: to_dict/to_json/to_json_pretty/to_ndjson_line, plus the
// constructor matching its SourceType — from_string for root entities,
// from_parent_repeated for repeated derivations, from_parents otherwise.
package record

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/nomnomgen/compiler/internal/buildcache"
	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/emit/codegen"
	"github.com/nomnomgen/compiler/internal/plan"
	"github.com/nomnomgen/compiler/internal/resolve"
	"github.com/nomnomgen/compiler/internal/typelower"
)

const recordTemplate = `// Generated by nomnomgen. Do not edit by hand.
use serde::{Deserialize, Serialize};
use std::collections::HashMap;

#[derive(Debug, Clone, Serialize, Deserialize)]
pub struct {{.Name}} {
{{- range .Fields}}
    pub {{.Column}}: {{.Type}},
{{- end}}
}

impl {{.Name}} {
    /// Produces a mapping from field name to a tagged value, matching this
    /// struct's field order.
    pub fn to_dict(&self) -> HashMap<String, serde_json::Value> {
        let mut m = HashMap::new();
{{- range .Fields}}
        m.insert("{{.Column}}".to_string(), serde_json::to_value(&self.{{.Column}}).unwrap());
{{- end}}
        m
    }

    pub fn to_json(&self) -> String {
        serde_json::to_string(self).expect("{{.Name}} always serializes")
    }

    pub fn to_json_pretty(&self) -> String {
        serde_json::to_string_pretty(self).expect("{{.Name}} always serializes")
    }

    /// Serializes this record as a single NDJSON line, with exactly one
    /// trailing newline.
    pub fn to_ndjson_line(&self) -> String {
        let mut line = self.to_json();
        line.push('\n');
        line
    }

    pub fn from_dict(d: &HashMap<String, serde_json::Value>) -> Result<Self, serde_json::Error> {
        serde_json::from_value(serde_json::to_value(d)?)
    }

    pub fn from_json(s: &str) -> Result<Self, serde_json::Error> {
        serde_json::from_str(s)
    }
{{if .FromString}}
    /// Parses a {{.Name}} directly from raw input (root entity).
    pub fn from_string(raw: &str) -> Result<Self, crate::extraction::ExtractionError> {
        crate::extraction::extract_{{.Snake}}(raw)
    }
{{end}}
{{if .FromParentRepeated}}
    /// Produces one {{.Name}} per element of {{.RepeatedField}} on the parent record.
    pub fn from_parent_repeated(parent: &{{.RepeatedParentType}}) -> Result<Vec<Self>, crate::extraction::ExtractionError> {
        parent.{{.RepeatedFieldColumn}}.iter()
            .map(|{{.RepeatedAlias}}| crate::extraction::extract_{{.Snake}}(parent, {{.RepeatedAlias}}))
            .collect()
    }
{{end}}
{{if .FromParents}}
    /// Builds a {{.Name}} from its {{.ParentCount}} parent record(s).
    pub fn from_parents({{.FromParentsParams}}) -> Result<Self, crate::extraction::ExtractionError> {
        crate::extraction::extract_{{.Snake}}({{.FromParentsArgs}})
    }
{{end}}
}
`

type fieldView struct {
	Column string
	Type   string
}

type entityView struct {
	Name   string
	Snake  string
	Fields []fieldView

	FromString bool

	FromParentRepeated  bool
	RepeatedParentType  string
	RepeatedField       string
	RepeatedFieldColumn string
	RepeatedAlias       string

	FromParents       bool
	ParentCount       int
	FromParentsParams string
	FromParentsArgs   string
}

// Generate writes one <entity>.rs file per non-abstract entity under outDir.
func Generate(g *resolve.Graph, p *plan.Plan, outDir string) ([]buildcache.WriteResult, error) {
	r, err := codegen.NewRenderer("record", recordTemplate, template.FuncMap{})
	if err != nil {
		return nil, err
	}

	var results []buildcache.WriteResult
	for _, name := range p.EmissionOrder {
		e := g.ByName[name]
		if e.IsAbstract {
			continue
		}
		view := buildEntityView(e, p.FieldOrder[name])

		content, err := r.Render(view)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(outDir, core.ToSnakeCase(e.Name)+".rs")
		res, err := buildcache.WriteIfChanged(path, content)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func buildEntityView(e *core.EntityDef, order []string) entityView {
	view := entityView{Name: e.Name, Snake: core.ToSnakeCase(e.Name)}
	for _, name := range order {
		f := e.FieldByName(name)
		if f == nil {
			continue
		}
		view.Fields = append(view.Fields, fieldView{
			Column: f.ColumnName(),
			Type:   typelower.RecordType(f.Type, f.Nullable),
		})
	}

	switch {
	case e.SourceType == core.SourceRoot:
		view.FromString = true
	case e.Repetition == core.RepetitionRepeated && e.RepeatedFor != nil:
		view.FromParentRepeated = true
		view.RepeatedParentType = e.RepeatedFor.Entity
		view.RepeatedField = e.RepeatedFor.Field
		view.RepeatedFieldColumn = core.ToSnakeCase(e.RepeatedFor.Field)
		view.RepeatedAlias = e.RepeatedFor.EachKnownAs
	default:
		view.FromParents = true
		view.ParentCount = len(e.Parents)
		var params, args []string
		for _, pr := range e.Parents {
			params = append(params, fmt.Sprintf("%s: &%s", pr.Name, pr.ParentType))
			args = append(args, pr.Name)
		}
		view.FromParentsParams = strings.Join(params, ", ")
		view.FromParentsArgs = strings.Join(args, ", ")
	}

	return view
}
