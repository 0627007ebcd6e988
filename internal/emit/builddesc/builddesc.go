// Package builddesc emits the build descriptor: a single JSON manifest
// enumerating every entity, its resolved emission rank, the transforms it
// references, and which emitters ran — the one artifact downstream build
// systems read to know what nomnomgen produced without re-parsing specs.
package builddesc

import (
	"encoding/json"
	"path/filepath"
	"sort"

	"github.com/nomnomgen/compiler/internal/buildcache"
	"github.com/nomnomgen/compiler/internal/plan"
	"github.com/nomnomgen/compiler/internal/resolve"
)

// EntityDescriptor is one entity's entry in the build descriptor.
type EntityDescriptor struct {
	Name           string   `json:"name"`
	SourceType     string   `json:"source_type"`
	EmissionOrder  int      `json:"emission_order"`
	Table          string   `json:"table,omitempty"`
	FieldOrder     []string `json:"field_order"`
	TransformsUsed []string `json:"transforms_used,omitempty"`
}

// Descriptor is the full build descriptor document.
type Descriptor struct {
	Entities        []EntityDescriptor `json:"entities"`
	TransformsUsed  []string           `json:"transforms_used"`
	EmittersRun     []string           `json:"emitters_run"`
}

// Build assembles a Descriptor from the resolved graph and plan.
func Build(g *resolve.Graph, p *plan.Plan, emittersRun []string) *Descriptor {
	d := &Descriptor{EmittersRun: emittersRun}

	for name := range g.TransformsUsed {
		d.TransformsUsed = append(d.TransformsUsed, name)
	}
	// Map iteration order is random; sort so the descriptor is byte-stable.
	sort.Strings(d.TransformsUsed)

	for _, name := range p.EmissionOrder {
		e := g.ByName[name]
		ed := EntityDescriptor{
			Name:           e.Name,
			SourceType:     string(e.SourceType),
			EmissionOrder:  e.EmissionOrder,
			FieldOrder:     p.FieldOrder[name],
			TransformsUsed: e.ResolvedTransforms,
		}
		if e.IsPersistent() {
			ed.Table = e.TableName()
		}
		d.Entities = append(d.Entities, ed)
	}

	return d
}

// Generate writes build-descriptor.json under outDir.
func Generate(g *resolve.Graph, p *plan.Plan, emittersRun []string, outDir string) ([]buildcache.WriteResult, error) {
	d := Build(g, p, emittersRun)

	content, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	content = append(content, '\n')

	path := filepath.Join(outDir, "build-descriptor.json")
	res, err := buildcache.WriteIfChanged(path, content)
	if err != nil {
		return nil, err
	}
	return []buildcache.WriteResult{res}, nil
}
