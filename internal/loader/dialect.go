package loader

import (
	"fmt"
	"strings"

	"github.com/nomnomgen/compiler/internal/core"
)

// dialect identifies which of the two schema shapes a document uses.
type dialect string

const (
	dialectV1     dialect = "v1"
	dialectLegacy dialect = "legacy"
)

// detectDialect classifies a document as v1 if it carries all three of the
// top-level keys apiVersion/metadata/spec; legacy otherwise. Per spec.md
// §4.1 this is purely structural — there is no third shape.
func detectDialect(doc map[string]any) dialect {
	_, hasAPIVersion := doc["apiVersion"]
	_, hasMetadata := doc["metadata"]
	_, hasSpec := doc["spec"]
	if hasAPIVersion && hasMetadata && hasSpec {
		return dialectV1
	}
	return dialectLegacy
}

// mapDocument normalizes a single raw YAML document into a core.EntityDef
// according to its detected dialect: a document with apiVersion, metadata
// and spec keys is mapped as v1, anything else as legacy. Mapping errors
// come back wrapped in a *LoadError.
func mapDocument(file string, line int, doc map[string]any) (*core.EntityDef, error) {
	switch detectDialect(doc) {
	case dialectV1:
		return mapV1(file, line, doc)
	default:
		return mapLegacy(file, line, doc)
	}
}

// --- v1 dialect -------------------------------------------------------

func mapV1(file string, line int, doc map[string]any) (*core.EntityDef, error) {
	metadata, _ := doc["metadata"].(map[string]any)
	spec, _ := doc["spec"].(map[string]any)
	if metadata == nil || spec == nil {
		return nil, newUnknownDialectError(file, line)
	}

	name, _ := metadata["name"].(string)
	if name == "" {
		return nil, &LoadError{File: file, Line: line, Message: "metadata.name is required", Cause: ErrSyntax}
	}

	ent := &core.EntityDef{
		Name:       name,
		SourceType: core.SourceType(strOr(spec["entity_type"], string(core.SourceRoot))),
		IsAbstract: boolOr(spec["isAbstract"], false),
		Repetition: core.Repetition(strOr(spec["repetition"], string(core.RepetitionSingle))),
		Labels:     stringMap(metadata["labels"]),
		Provenance: core.Provenance{File: file, Line: line, Dialect: string(dialectV1)},
	}

	if ent.Repetition == core.RepetitionRepeated {
		if rf, ok := spec["repeatedFor"].(map[string]any); ok {
			ent.RepeatedFor = &core.RepeatedFor{
				Entity:      strOr(rf["entity"], ""),
				Field:       strOr(rf["field"], ""),
				EachKnownAs: strOr(rf["eachKnownAs"], ""),
			}
		}
	}

	for _, p := range sliceOf(spec["parents"]) {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		ent.Parents = append(ent.Parents, core.ParentRef{
			Name:       strOr(pm["name"], ""),
			ParentType: strOr(pm["parentType"], ""),
		})
	}

	if pc, ok := spec["persistence"].(map[string]any); ok {
		ent.Persistence = mapPersistence(pc["table"], pc["unicity"], pc["indexes"], true)
	}

	fields, err := mapV1Fields(file, sliceOf(spec["fields"]))
	if err != nil {
		return nil, err
	}
	ent.Fields = fields

	return ent, nil
}

func mapV1Fields(file string, raw []any) ([]*core.FieldDef, error) {
	var out []*core.FieldDef
	for _, r := range raw {
		fm, ok := r.(map[string]any)
		if !ok {
			continue
		}
		f := &core.FieldDef{
			Name:       strOr(fm["name"], ""),
			Nullable:   boolOr(fm["nullable"], false),
			Indexed:    boolOr(fm["indexed"], false),
			Provenance: core.Provenance{File: file, Dialect: string(dialectV1)},
		}
		ft, nullableFromType, err := parseFieldType(strOr(fm["type"], ""))
		if err != nil {
			return nil, &LoadError{File: file, Message: fmt.Sprintf("field %q: %v", f.Name, err), Cause: ErrSyntax}
		}
		f.Type = ft
		if nullableFromType {
			f.Nullable = true
		}

		if cf, ok := fm["copyFrom"].(map[string]any); ok {
			f.Extraction = &core.CopyFromSource{Parent: strOr(cf["parent"], ""), Field: strOr(cf["field"], "")}
		}
		if cf, ok := fm["computedFrom"].(map[string]any); ok {
			f.ComputedFrom = mapComputedFrom(cf)
		}
		out = append(out, f)
	}
	return out, nil
}

// --- legacy dialect ----------------------------------------------------

func mapLegacy(file string, line int, doc map[string]any) (*core.EntityDef, error) {
	name, _ := doc["name"].(string)
	if name == "" {
		return nil, newUnknownDialectError(file, line)
	}

	ent := &core.EntityDef{
		Name:       name,
		SourceType: core.SourceType(strOr(doc["source_type"], string(core.SourceRoot))),
		IsAbstract: boolOr(doc["is_abstract"], false),
		Repetition: core.Repetition(strOr(doc["repetition"], string(core.RepetitionSingle))),
		Labels:     stringMap(doc["labels"]),
		Provenance: core.Provenance{File: file, Line: line, Dialect: string(dialectLegacy)},
	}

	if ent.Repetition == core.RepetitionRepeated {
		if rf, ok := doc["repeated_for"].(map[string]any); ok {
			ent.RepeatedFor = &core.RepeatedFor{
				Entity:      strOr(rf["entity"], ""),
				Field:       strOr(rf["field"], ""),
				EachKnownAs: strOr(rf["each_known_as"], ""),
			}
		}
	}

	for _, p := range sliceOf(doc["parents"]) {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		ent.Parents = append(ent.Parents, core.ParentRef{
			Name:       strOr(pm["name"], ""),
			ParentType: strOr(pm["parent_type"], ""),
		})
	}

	if db, ok := doc["database"].(map[string]any); ok {
		ent.Persistence = mapPersistence(db["conformant_table"], db["unicity_fields"], db["indexes"], false)
	}

	fields, err := mapLegacyFields(file, sliceOf(doc["fields"]))
	if err != nil {
		return nil, err
	}
	ent.Fields = fields

	return ent, nil
}

func mapLegacyFields(file string, raw []any) ([]*core.FieldDef, error) {
	var out []*core.FieldDef
	for _, r := range raw {
		fm, ok := r.(map[string]any)
		if !ok {
			continue
		}
		f := &core.FieldDef{
			Name:       strOr(fm["name"], ""),
			Nullable:   boolOr(fm["nullable"], false),
			Indexed:    boolOr(fm["indexed"], false),
			Provenance: core.Provenance{File: file, Dialect: string(dialectLegacy)},
		}
		ft, nullableFromType, err := parseFieldType(strOr(fm["field_type"], ""))
		if err != nil {
			return nil, &LoadError{File: file, Message: fmt.Sprintf("field %q: %v", f.Name, err), Cause: ErrSyntax}
		}
		f.Type = ft
		if nullableFromType {
			f.Nullable = true
		}

		if ex, ok := fm["extraction"].(map[string]any); ok {
			if cf, ok := ex["copy_from_source"].(map[string]any); ok {
				f.Extraction = &core.CopyFromSource{Parent: strOr(cf["parent"], ""), Field: strOr(cf["field"], "")}
			}
		}
		if cf, ok := fm["computed_from"].(map[string]any); ok {
			f.ComputedFrom = mapComputedFrom(cf)
		}
		out = append(out, f)
	}
	return out, nil
}

// --- shared mapping helpers --------------------------------------------

func mapPersistence(table, unicity, indexes any, camel bool) *core.PersistenceCfg {
	cfg := &core.PersistenceCfg{
		Table:         strOr(table, ""),
		UnicityFields: stringSlice(unicity),
	}
	for _, ix := range sliceOf(indexes) {
		im, ok := ix.(map[string]any)
		if !ok {
			continue
		}
		cfg.Indexes = append(cfg.Indexes, core.IndexDef{
			Fields: stringSlice(im["fields"]),
			Unique: boolOr(im["unique"], false),
		})
	}
	return cfg
}

func mapComputedFrom(cf map[string]any) *core.ComputedFrom {
	out := &core.ComputedFrom{
		Transform: strOr(cf["transform"], ""),
		Args:      mapOr(cf["args"]),
	}
	if r, ok := cf["reducer"].(string); ok && r != "" {
		out.Reducer = core.Reducer(r)
		out.ReducerOver = strOr(cf["over"], "")
	}
	for _, s := range sliceOf(cf["sources"]) {
		sm, ok := s.(map[string]any)
		if !ok {
			continue
		}
		ref := core.SourceRef{Source: core.SourceKind(strOr(sm["source"], ""))}
		switch ref.Source {
		case core.SourceFromParent:
			ref.Parent = strOr(sm["parent"], "")
			ref.Field = strOr(sm["field"], "")
		case core.SourceFromContext:
			ref.Key = strOr(sm["key"], "")
		case core.SourceFromField:
			ref.Field = strOr(sm["field"], "")
		}
		out.Sources = append(out.Sources, ref)
	}
	return out
}

// parseFieldType parses a declarative type string such as "String",
// "String?", "List<Object>", or "Ref<Order>". The returned bool reports
// whether a trailing "?" made the field nullable, as a convenience
// shorthand alongside the explicit "nullable" key.
func parseFieldType(s string) (core.FieldType, bool, error) {
	nullable := false
	if strings.HasSuffix(s, "?") {
		nullable = true
		s = strings.TrimSuffix(s, "?")
	}

	if strings.HasPrefix(s, "List<") && strings.HasSuffix(s, ">") {
		inner := s[len("List<") : len(s)-1]
		elemType, _, err := parseFieldType(inner)
		if err != nil {
			return core.FieldType{}, false, err
		}
		return core.FieldType{Kind: core.KindList, Elem: &elemType}, nullable, nil
	}
	if strings.HasPrefix(s, "Ref<") && strings.HasSuffix(s, ">") {
		target := s[len("Ref<") : len(s)-1]
		return core.FieldType{Kind: core.KindRef, RefEntity: target}, nullable, nil
	}

	switch core.FieldKind(s) {
	case core.KindString, core.KindInt, core.KindFloat, core.KindBool, core.KindDate, core.KindDateTime:
		return core.FieldType{Kind: core.FieldKind(s)}, nullable, nil
	default:
		return core.FieldType{}, false, fmt.Errorf("unknown field type %q", s)
	}
}

// --- generic YAML-shape accessors ---------------------------------------

func strOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func boolOr(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func sliceOf(v any) []any {
	s, _ := v.([]any)
	return s
}

func stringSlice(v any) []string {
	var out []string
	for _, e := range sliceOf(v) {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func mapOr(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
