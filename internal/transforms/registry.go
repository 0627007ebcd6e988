// Package transforms models the external transform registry spec.md §6
// describes: a set of named transforms, each with a declared parameter
// signature and return type, that the core references by name but never
// calls. This mirrors the teacher's provider-loading pattern (an external
// capability registry the core consumes without executing).
package transforms

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Signature is a transform's declared shape: parameter name -> declared
// type, plus a return type. The core only type-checks against these names;
// it never inspects or calls the transform body.
type Signature struct {
	Name    string            `yaml:"name"`
	Params  map[string]string `yaml:"params"`
	Returns string            `yaml:"returns"`
}

// Registry is the known set of transforms for one compilation.
type Registry struct {
	byName map[string]Signature
}

// NewRegistry builds a Registry from a slice of signatures.
func NewRegistry(sigs []Signature) *Registry {
	r := &Registry{byName: make(map[string]Signature, len(sigs))}
	for _, s := range sigs {
		r.byName[s.Name] = s
	}
	return r
}

// Has reports whether name is a known transform.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.byName[name]
	return ok
}

// Lookup returns the signature for name, if known.
func (r *Registry) Lookup(name string) (Signature, bool) {
	if r == nil {
		return Signature{}, false
	}
	s, ok := r.byName[name]
	return s, ok
}

// Names returns every known transform name.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	return out
}

// registryFile is the on-disk shape for LoadRegistry.
type registryFile struct {
	Transforms []Signature `yaml:"transforms"`
}

// LoadRegistry reads a YAML transform registry file of the shape:
//
//	transforms:
//	  - name: uppercase
//	    params: { input: String }
//	    returns: String
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transform registry %s: %w", path, err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing transform registry %s: %w", path, err)
	}
	return NewRegistry(f.Transforms), nil
}
