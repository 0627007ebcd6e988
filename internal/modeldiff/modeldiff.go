// Package modeldiff backs `nomnomgen diff`: it resolves two spec
// directories independently, serializes each resolved graph to a
// canonical YAML snapshot, and diffs the two snapshots with the same
// dyff/ytbx stack the teacher CLI uses for Kubernetes manifest diffing —
// here applied to the compiler's own resolved model instead, as an
// operational check of the emission-determinism testable property.
package modeldiff

import (
	"bytes"
	"fmt"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff"
	"gopkg.in/yaml.v3"

	"github.com/nomnomgen/compiler/internal/resolve"
)

// snapshot is the canonical, emission-order-independent representation of a
// resolved graph, used only for diffing — never emitted to users directly.
type snapshot struct {
	Entities []entitySnapshot `yaml:"entities"`
}

type entitySnapshot struct {
	Name       string             `yaml:"name"`
	SourceType string             `yaml:"source_type"`
	Table      string             `yaml:"table,omitempty"`
	Fields     []fieldSnapshot    `yaml:"fields"`
}

type fieldSnapshot struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

func buildSnapshot(g *resolve.Graph) snapshot {
	var s snapshot
	for _, name := range g.Order {
		e := g.ByName[name]
		es := entitySnapshot{Name: e.Name, SourceType: string(e.SourceType)}
		if e.IsPersistent() {
			es.Table = e.TableName()
		}
		for _, f := range e.Fields {
			es.Fields = append(es.Fields, fieldSnapshot{
				Name:     f.Name,
				Type:     f.Type.String(),
				Nullable: f.Nullable,
			})
		}
		s.Entities = append(s.Entities, es)
	}
	return s
}

// Diff compares two resolved graphs and returns a human-readable dyff
// report, or "" if they are equivalent.
func Diff(from, to *resolve.Graph) (string, error) {
	fromYAML, err := yaml.Marshal(buildSnapshot(from))
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}
	toYAML, err := yaml.Marshal(buildSnapshot(to))
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}

	fromFile, err := ytbx.LoadDocuments(fromYAML)
	if err != nil {
		return "", fmt.Errorf("loading snapshot: %w", err)
	}
	toFile, err := ytbx.LoadDocuments(toYAML)
	if err != nil {
		return "", fmt.Errorf("loading snapshot: %w", err)
	}

	report, err := dyff.CompareInputFiles(
		ytbx.InputFile{Documents: fromFile},
		ytbx.InputFile{Documents: toFile},
	)
	if err != nil {
		return "", fmt.Errorf("comparing snapshots: %w", err)
	}

	if len(report.Diffs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	hr := &dyff.HumanReport{Report: report, DoNotInspectCerts: true}
	if err := hr.WriteReport(&buf); err != nil {
		return "", fmt.Errorf("rendering diff: %w", err)
	}
	return buf.String(), nil
}
