package resolve

import (
	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/output"
	"github.com/nomnomgen/compiler/internal/transforms"
)

// Resolver validates a collection of entities and builds the Graph.
type Resolver struct {
	KnownTransforms *transforms.Registry
}

// NewResolver constructs a Resolver against the given transform registry.
func NewResolver(known *transforms.Registry) *Resolver {
	return &Resolver{KnownTransforms: known}
}

// Resolve validates entities end-to-end and returns the resolved Graph.
// All errors found across the whole pass are returned together as *Errors;
// callers should type-assert to inspect individual failures. Warnings never
// prevent a graph from being returned.
func (r *Resolver) Resolve(entities []*core.EntityDef) (*Graph, []Warning, error) {
	var errs []error
	var warnings []Warning

	g := &Graph{
		ByName:         make(map[string]*core.EntityDef, len(entities)),
		ChildrenOf:     make(map[string][]string),
		TransformsUsed: make(map[string]struct{}),
	}

	// Step 1: build ByName, detecting duplicates.
	for _, e := range entities {
		if existing, ok := g.ByName[e.Name]; ok {
			errs = append(errs, &DuplicateEntityError{
				Name:        e.Name,
				FirstFile:   existing.Provenance.File,
				DuplicateAt: e.Provenance.File,
			})
			continue
		}
		g.ByName[e.Name] = e
		g.Order = append(g.Order, e.Name)
	}

	// Step 2: resolve parent_type references and build ChildrenOf.
	for _, name := range g.Order {
		e := g.ByName[name]
		for _, p := range e.Parents {
			parent, ok := g.ByName[p.ParentType]
			if !ok {
				errs = append(errs, &UnknownParentError{Entity: e.Name, Parent: p.ParentType})
				continue
			}
			e.ResolvedParents = append(e.ResolvedParents, &core.ResolvedParent{Ref: p, Entity: parent})
			g.ChildrenOf[parent.Name] = append(g.ChildrenOf[parent.Name], e.Name)
		}
	}

	// Step 3: detect parent_type cycles (iterative depth-marking).
	if cycle := findParentCycle(g); cycle != nil {
		errs = append(errs, &ParentCycleError{Cycle: cycle})
	}

	// Step 4: repeated_for validation (invariant 3).
	for _, name := range g.Order {
		e := g.ByName[name]
		if e.Repetition != core.RepetitionRepeated || e.RepeatedFor == nil {
			continue
		}
		parent, ok := g.ByName[e.RepeatedFor.Entity]
		if !ok {
			errs = append(errs, &UnknownParentError{Entity: e.Name, Parent: e.RepeatedFor.Entity})
			continue
		}
		field := parent.FieldByName(e.RepeatedFor.Field)
		if field == nil || field.Type.Kind != core.KindList {
			errs = append(errs, &RepeatedForNonListError{Entity: e.Name, Parent: parent.Name, Field: e.RepeatedFor.Field})
		}
	}

	// Step 5: per-field validation — extraction sources, computed_from
	// sources/transforms, and required-field producibility (invariant 6).
	for _, name := range g.Order {
		e := g.ByName[name]
		for _, f := range e.Fields {
			switch {
			case f.Extraction != nil:
				r.validateCopyFrom(e, f, &errs)
			case f.ComputedFrom != nil:
				r.validateComputedFrom(e, f, &errs, &warnings)
			default:
				// Root entities parse every field straight off raw input, and a
				// repeated derived entity parses its element-bound fields straight
				// off the each_known_as element — both are root-like sources over
				// which a bare field can stand without extraction/computed_from.
				elementSourced := e.Repetition == core.RepetitionRepeated && e.RepeatedFor != nil
				if !f.Nullable && e.SourceType != core.SourceRoot && !elementSourced {
					errs = append(errs, &RequiredFieldUnresolvableError{Entity: e.Name, Field: f.Name})
				}
			}
		}
	}

	// Step 6: per-entity field dependency cycle detection (invariant 8).
	for _, name := range g.Order {
		e := g.ByName[name]
		populateSameEntityDeps(e)
		if cycle := findFieldCycle(e); cycle != nil {
			errs = append(errs, &FieldCycleError{Entity: e.Name, Cycle: cycle})
		}
	}

	// Step 7: persistence validation (invariant 9) and table defaulting.
	for _, name := range g.Order {
		e := g.ByName[name]
		if e.Persistence == nil {
			continue
		}
		if e.Persistence.Table == "" {
			e.Persistence.Table = e.TableName()
		}
		for _, uf := range e.Persistence.UnicityFields {
			f := e.FieldByName(uf)
			if f == nil {
				errs = append(errs, &UnicityFieldUnknownError{Entity: e.Name, Field: uf, Kind: "unicity"})
				continue
			}
			if f.Nullable {
				warnings = append(warnings, Warning{
					Entity: e.Name, Field: uf,
					Message: "unicity field is nullable: most SQL dialects treat NULL as distinct from every other NULL, so rows with a null value here are never deduplicated",
				})
			}
		}
		for _, ix := range e.Persistence.Indexes {
			for _, f := range ix.Fields {
				if e.FieldByName(f) == nil {
					errs = append(errs, &UnicityFieldUnknownError{Entity: e.Name, Field: f, Kind: "index"})
				}
			}
		}
	}

	// Step 8: finalize TransformsUsed across all entities.
	for _, name := range g.Order {
		e := g.ByName[name]
		seen := make(map[string]struct{})
		for _, f := range e.Fields {
			if f.ComputedFrom != nil && f.ComputedFrom.Transform != "" {
				if _, ok := seen[f.ComputedFrom.Transform]; !ok {
					seen[f.ComputedFrom.Transform] = struct{}{}
					e.ResolvedTransforms = append(e.ResolvedTransforms, f.ComputedFrom.Transform)
				}
				g.TransformsUsed[f.ComputedFrom.Transform] = struct{}{}
			}
		}
	}

	if len(errs) > 0 {
		return nil, warnings, &Errors{Errors: errs}
	}

	output.Debug("resolved entity graph", "entities", len(g.Order), "transforms", len(g.TransformsUsed), "warnings", len(warnings))
	return g, warnings, nil
}

func (r *Resolver) validateCopyFrom(e *core.EntityDef, f *core.FieldDef, errs *[]error) {
	cf := f.Extraction
	parentRef := e.ParentByName(cf.Parent)
	if parentRef == nil {
		*errs = append(*errs, &UnknownSourceFieldError{
			Entity: e.Name, Field: f.Name,
			Detail: "copy_from_source.parent \"" + cf.Parent + "\" is not declared in parents",
		})
		return
	}
	parent, ok := findResolvedParent(e, cf.Parent)
	if !ok || parent.FieldByName(cf.Field) == nil {
		*errs = append(*errs, &UnknownSourceFieldError{
			Entity: e.Name, Field: f.Name,
			Detail: "copy_from_source references unknown field \"" + cf.Field + "\" on parent \"" + cf.Parent + "\"",
		})
	}
}

func (r *Resolver) validateComputedFrom(e *core.EntityDef, f *core.FieldDef, errs *[]error, warnings *[]Warning) {
	cf := f.ComputedFrom

	if cf.Reducer != core.ReducerNone {
		if e.FieldByName(cf.ReducerOver) == nil {
			*errs = append(*errs, &UnknownSourceFieldError{
				Entity: e.Name, Field: f.Name,
				Detail: "reducer references unknown field \"" + cf.ReducerOver + "\"",
			})
		}
	} else if cf.Transform != "" {
		if !r.KnownTransforms.Has(cf.Transform) {
			*errs = append(*errs, &UnknownTransformError{Entity: e.Name, Field: f.Name, Transform: cf.Transform})
		}
	}

	for _, src := range cf.Sources {
		switch src.Source {
		case core.SourceFromParent:
			parent, ok := findResolvedParent(e, src.Parent)
			if !ok || parent.FieldByName(src.Field) == nil {
				*errs = append(*errs, &UnknownSourceFieldError{
					Entity: e.Name, Field: f.Name,
					Detail: "source references unknown field \"" + src.Field + "\" on parent \"" + src.Parent + "\"",
				})
			}
		case core.SourceFromField:
			if e.FieldByName(src.Field) == nil {
				*errs = append(*errs, &UnknownSourceFieldError{
					Entity: e.Name, Field: f.Name,
					Detail: "source references unknown sibling field \"" + src.Field + "\"",
				})
			}
		case core.SourceFromContext:
			if !contextKeyDeclaredAnywhere(e, src.Key) {
				*warnings = append(*warnings, Warning{
					Entity: e.Name, Field: f.Name,
					Message: "context key \"" + src.Key + "\" is not declared as a context source anywhere in the compilation unit",
				})
			}
		case core.SourceFromRaw:
			// always valid: the whole raw input.
		}
	}
}

// contextKeyDeclaredAnywhere treats every non-empty context key as declared.
// It does not search other fields or entities for the key, so the warning
// above fires only for an empty key. Whether the host runtime supplies the
// key is not checked by the core.
func contextKeyDeclaredAnywhere(_ *core.EntityDef, key string) bool {
	return key != ""
}

func findResolvedParent(e *core.EntityDef, localName string) (*core.EntityDef, bool) {
	for _, rp := range e.ResolvedParents {
		if rp.Ref.Name == localName {
			return rp.Entity, true
		}
	}
	return nil, false
}

// findParentCycle walks the parent_type graph with iterative depth-marking
// and returns the first cycle found, in declaration order, or nil.
func findParentCycle(g *Graph) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.Order))
	var path []string

	var visit func(name string) []string
	visit = func(name string) []string {
		color[name] = gray
		path = append(path, name)
		e := g.ByName[name]
		if e != nil {
			for _, p := range e.Parents {
				switch color[p.ParentType] {
				case white:
					if e2, ok := g.ByName[p.ParentType]; ok {
						_ = e2
						if cyc := visit(p.ParentType); cyc != nil {
							return cyc
						}
					}
				case gray:
					// found the cycle: slice path from first occurrence of p.ParentType
					for i, n := range path {
						if n == p.ParentType {
							cyc := append([]string{}, path[i:]...)
							return append(cyc, p.ParentType)
						}
					}
				case black:
					// already fully explored, no cycle through here
				}
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		return nil
	}

	for _, name := range g.Order {
		if color[name] == white {
			if cyc := visit(name); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}

// populateSameEntityDeps fills FieldDef.SameEntityDeps from computed_from
// sources with source=field, plus reducer-over references.
func populateSameEntityDeps(e *core.EntityDef) {
	for _, f := range e.Fields {
		f.SameEntityDeps = nil
		if f.ComputedFrom == nil {
			continue
		}
		if f.ComputedFrom.Reducer != core.ReducerNone && f.ComputedFrom.ReducerOver != "" {
			f.SameEntityDeps = append(f.SameEntityDeps, f.ComputedFrom.ReducerOver)
		}
		for _, src := range f.ComputedFrom.Sources {
			if src.Source == core.SourceFromField {
				f.SameEntityDeps = append(f.SameEntityDeps, src.Field)
			}
		}
	}
}

// findFieldCycle detects a cycle in e's intra-entity field dependency graph.
func findFieldCycle(e *core.EntityDef) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(e.Fields))
	var path []string

	var visit func(name string) []string
	visit = func(name string) []string {
		color[name] = gray
		path = append(path, name)
		f := e.FieldByName(name)
		if f != nil {
			for _, dep := range f.SameEntityDeps {
				switch color[dep] {
				case white:
					if cyc := visit(dep); cyc != nil {
						return cyc
					}
				case gray:
					for i, n := range path {
						if n == dep {
							cyc := append([]string{}, path[i:]...)
							return append(cyc, dep)
						}
					}
				}
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		return nil
	}

	for _, f := range e.Fields {
		if color[f.Name] == white {
			if cyc := visit(f.Name); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}
