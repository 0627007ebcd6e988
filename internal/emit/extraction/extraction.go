// Package extraction emits the extraction program: one Rust function per
// entity, in the Planner's global emission order, that turns raw/parent
// records into the entity's record struct. Each function is named
// extract_<entity>: a root entity's takes the raw input, a derived entity's
// takes every parent binding as a parameter, and a repeated entity's takes
// its parent binding plus the RepeatedFor.EachKnownAs element;
// reference entities are skipped (SPEC_FULL.md: reference entities get
// schema + ORM get_or_create but no extraction).
package extraction

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

const programTemplate = `// Generated by nomnomgen. Do not edit by hand.
use crate::record::*;

{{range .Functions}}
{{.Doc}}
pub fn {{.Name}}({{.Params}}) -> {{.Return}} {
{{- range .Lines}}
    {{.}}
{{- end}}
}

{{end}}
`

type function struct {
	Doc    string
	Name   string
	Params string
	Return string
	Lines  []string
}

type program struct {
	Functions []function
}

// Generate writes a single extraction.rs file.
func Generate(g *resolve.Graph, p *plan.Plan, outDir string) ([]buildcache.WriteResult, error) {
	r, err := codegen.NewRenderer("extraction", programTemplate, template.FuncMap{})
	if err != nil {
		return nil, err
	}

	prog := program{}
	for _, name := range p.EmissionOrder {
		e := g.ByName[name]
		if e.SourceType == core.SourceReference || e.IsAbstract {
			continue
		}
		prog.Functions = append(prog.Functions, buildFunction(g, e, p.FieldOrder[name]))
	}

	content, err := r.Render(prog)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(outDir, "extraction.rs")
	res, err := buildcache.WriteIfChanged(path, content)
	if err != nil {
		return nil, err
	}
	return []buildcache.WriteResult{res}, nil
}

func buildFunction(g *resolve.Graph, e *core.EntityDef, order []string) function {
	fnName := "extract_" + core.ToSnakeCase(e.Name)
	var params, ret string
	var lines []string

	switch e.SourceType {
	case core.SourceRoot:
		params = "raw: &str"
		ret = fmt.Sprintf("Result<%s, ExtractionError>", e.Name)
	default:
		if e.Repetition == core.RepetitionRepeated && e.RepeatedFor != nil {
			// The repeated element is bound under each_known_as, but sibling
			// parent fields are only reachable through the outer parent
			// binding — so the outer parent is threaded in alongside it.
			parentLocal := localParentBinding(e, e.RepeatedFor.Entity)
			elemType := elementType(g, e.RepeatedFor)
			params = fmt.Sprintf("%s: &%s, %s: &%s", parentLocal, e.RepeatedFor.Entity, e.RepeatedFor.EachKnownAs, elemType)
			ret = fmt.Sprintf("Result<%s, ExtractionError>", e.Name)
		} else {
			var bindings []string
			for _, pr := range e.Parents {
				bindings = append(bindings, fmt.Sprintf("%s: &%s", pr.Name, pr.ParentType))
			}
			params = strings.Join(bindings, ", ")
			ret = fmt.Sprintf("Result<%s, ExtractionError>", e.Name)
		}
	}

	for _, name := range order {
		f := e.FieldByName(name)
		if f == nil {
			continue
		}
		lines = append(lines, fieldLine(e, f))
	}
	lines = append(lines, fmt.Sprintf("Ok(%s { %s })", e.Name, strings.Join(fieldAssignments(e, order), ", ")))

	return function{
		Doc:    fmt.Sprintf("/// Extracts %s from %s.", e.Name, sourceDescription(e)),
		Name:   fnName,
		Params: params,
		Return: ret,
		Lines:  lines,
	}
}

// localParentBinding returns the local binding name e uses for the parent
// entity named parentType, falling back to the parent's snake_case name if
// e declares no matching entry in Parents (e.g. a repeated_for target that
// isn't also listed as a parent).
func localParentBinding(e *core.EntityDef, parentType string) string {
	for _, pr := range e.Parents {
		if pr.ParentType == parentType {
			return pr.Name
		}
	}
	return core.ToSnakeCase(parentType)
}

// elementType resolves the Rust type of one element of the repeated_for
// list field, so the generated function's element parameter is typed
// precisely instead of always widening to serde_json::Value.
func elementType(g *resolve.Graph, rf *core.RepeatedFor) string {
	parent := g.ByName[rf.Entity]
	if parent == nil {
		return "serde_json::Value"
	}
	pf := parent.FieldByName(rf.Field)
	if pf == nil || pf.Type.Elem == nil {
		return "serde_json::Value"
	}
	return typelower.RecordType(*pf.Type.Elem, false)
}

func sourceDescription(e *core.EntityDef) string {
	switch {
	case e.SourceType == core.SourceRoot:
		return "raw input"
	case e.RepeatedFor != nil:
		return "each " + e.RepeatedFor.Field + " of " + e.RepeatedFor.Entity
	default:
		return "its parents"
	}
}

func fieldLine(e *core.EntityDef, f *core.FieldDef) string {
	col := f.ColumnName()
	switch {
	case f.IsCopied():
		return fmt.Sprintf("let %s = %s.%s.clone(); // copy_from_source", col, f.Extraction.Parent, f.Extraction.Field)
	case f.IsComputed():
		if f.ComputedFrom.Reducer != core.ReducerNone {
			return reducerLine(e, col, f.ComputedFrom)
		}
		return fmt.Sprintf("let %s = transforms::%s(%s); // computed_from", col, f.ComputedFrom.Transform, sourceArgs(f))
	default:
		if e.Repetition == core.RepetitionRepeated && e.RepeatedFor != nil {
			return fmt.Sprintf("let %s = parse_element_field(%s, \"%s\")?;", col, e.RepeatedFor.EachKnownAs, f.Name)
		}
		return fmt.Sprintf("let %s = parse_field(raw, \"%s\")?;", col, f.Name)
	}
}

// reducerLine emits a reducer field's body inline: count/any/first are
// structural, derivable straight from the schema, unlike a named external
// transform, so there is no reduce_<kind> helper to call out to.
func reducerLine(e *core.EntityDef, col string, cf *core.ComputedFrom) string {
	overCol := cf.ReducerOver
	if sib := e.FieldByName(cf.ReducerOver); sib != nil {
		overCol = sib.ColumnName()
	}
	switch cf.Reducer {
	case core.ReducerCount:
		return fmt.Sprintf("let %s = %s.len() as i64; // reducer: count", col, overCol)
	case core.ReducerAny:
		return fmt.Sprintf("let %s = !%s.is_empty(); // reducer: any", col, overCol)
	case core.ReducerFirst:
		return fmt.Sprintf("let %s = %s.first().cloned(); // reducer: first", col, overCol)
	default:
		return fmt.Sprintf("let %s = Default::default(); // reducer: %s", col, cf.Reducer)
	}
}

func sourceArgs(f *core.FieldDef) string {
	var args []string
	for _, src := range f.ComputedFrom.Sources {
		switch src.Source {
		case core.SourceFromParent:
			args = append(args, fmt.Sprintf("&%s.%s", src.Parent, src.Field))
		case core.SourceFromField:
			args = append(args, "&"+src.Field)
		case core.SourceFromContext:
			args = append(args, fmt.Sprintf("ctx.get(%q)", src.Key))
		case core.SourceFromRaw:
			args = append(args, "raw")
		}
	}
	return strings.Join(args, ", ")
}

func fieldAssignments(e *core.EntityDef, order []string) []string {
	out := make([]string, 0, len(order))
	for _, name := range order {
		f := e.FieldByName(name)
		if f != nil {
			out = append(out, f.ColumnName())
		}
	}
	return out
}
