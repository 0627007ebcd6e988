package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/output"
)

// Load reads every *.yaml/*.yml file under dir, in sorted path order, and
// normalizes each document (a file may contain several "---"-separated
// documents) into a core.EntityDef. Iteration order is filename order, then
// in-file document order, matching spec.md §4.3's determinism requirement
// that "all iteration orders are source-declaration order".
//
// Load never mutates files on disk and never rewrites a document's dialect.
func Load(dir string) ([]*core.EntityDef, error) {
	paths, err := specFiles(dir)
	if err != nil {
		return nil, err
	}

	var entities []*core.EntityDef
	for _, path := range paths {
		docs, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		entities = append(entities, docs...)
	}

	output.Debug("loaded entity specifications", "dir", dir, "files", len(paths), "entities", len(entities))
	return entities, nil
}

// specFiles returns the sorted list of YAML files directly or recursively
// under dir.
func specFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return newIoError(path, err)
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func loadFile(path string) ([]*core.EntityDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newIoError(path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	var entities []*core.EntityDef
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, newSyntaxError(path, node.Line, err)
		}

		doc, err := nodeToMap(&node)
		if err != nil {
			return nil, newSyntaxError(path, node.Line, err)
		}
		if doc == nil {
			continue // empty document ("---" with nothing after)
		}

		ent, err := mapDocument(path, node.Line, doc)
		if err != nil {
			return nil, err
		}
		entities = append(entities, ent)
	}
	return entities, nil
}

// nodeToMap decodes a document-level yaml.Node into a generic
// map[string]any, the shape the dialect mappers expect.
func nodeToMap(node *yaml.Node) (map[string]any, error) {
	// A bare document node wraps the real content node.
	target := node
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		target = node.Content[0]
	}
	if target.Kind == 0 {
		return nil, nil
	}
	if target.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level YAML document must be a mapping, got kind %d", target.Kind)
	}
	var m map[string]any
	if err := target.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}
