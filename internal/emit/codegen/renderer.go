// Package codegen is the shared text/template rendering helper every
// emitter under internal/emit/* uses, modeled on the teacher CLI's
// template renderer: parse once, execute against a data struct, return
// bytes for buildcache.WriteIfChanged to land on disk.
package codegen

import (
	"bytes"
	"fmt"
	"text/template"
)

// Renderer renders a single named template against arbitrary data.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses src (the template body) under name, with the given
// FuncMap available to it.
func NewRenderer(name, src string, funcs template.FuncMap) (*Renderer, error) {
	t, err := template.New(name).Funcs(funcs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return &Renderer{tmpl: t}, nil
}

// Render executes the template against data and returns the rendered bytes.
func (r *Renderer) Render(data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", r.tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

// RenderString is a convenience wrapper returning a string.
func (r *Renderer) RenderString(data any) (string, error) {
	b, err := r.Render(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
