// Package manifest is the Orchestration Manifest Emitter (SPEC_FULL.md
// §4.6.7): it builds static Deployment/ConfigMap/Service objects for the
// generated worker and dashboard backend, using the teacher's
// unstructured.Unstructured + GVK-weight ordering, but only ever writes
// them out as YAML text — never applies or watches a live cluster.
package manifest

import (
	"bytes"
	"path/filepath"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/nomnomgen/compiler/internal/buildcache"
	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/output"
)

// Generate writes the orchestration manifest under outDir: one
// Deployment+Service for the worker, one Deployment+ConfigMap+Service for
// the dashboard backend. Resources are rendered through
// output.WriteManifests, the same weight-ordered YAML writer the teacher
// CLI uses for rendered modules. When split is true, each resource is
// written to its own file via output.WriteSplitManifests instead of one
// combined manifest.yaml.
func Generate(workerImage, dashboardImage string, outDir string, split bool) ([]buildcache.WriteResult, error) {
	resources := []*core.Resource{
		deployment("nomnomgen-worker", workerImage, 1),
		service("nomnomgen-worker", 8090),
		deployment("nomnomgen-dashboard", dashboardImage, 2),
		service("nomnomgen-dashboard", 8080),
		configMap("nomnomgen-dashboard-config", map[string]string{"API_BASE_URL": "/api"}),
	}

	infos := make([]output.ResourceInfo, len(resources))
	for i, r := range resources {
		infos[i] = r
	}

	if split {
		splitDir := filepath.Join(outDir, "manifests")
		if err := output.WriteSplitManifests(infos, output.SplitOptions{OutDir: splitDir, Format: output.FormatYAML}); err != nil {
			return nil, err
		}
		return []buildcache.WriteResult{{Path: splitDir, Written: true}}, nil
	}

	var buf bytes.Buffer
	if err := output.WriteManifests(infos, output.ManifestOptions{Format: output.FormatYAML, Writer: &buf}); err != nil {
		return nil, err
	}

	path := filepath.Join(outDir, "manifest.yaml")
	res, err := buildcache.WriteIfChanged(path, buf.Bytes())
	if err != nil {
		return nil, err
	}
	return []buildcache.WriteResult{res}, nil
}

func deployment(name, image string, replicas int64) *core.Resource {
	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "apps/v1",
		"kind":       "Deployment",
		"metadata":   map[string]any{"name": name},
		"spec": map[string]any{
			"replicas": replicas,
			"selector": map[string]any{"matchLabels": map[string]any{"app": name}},
			"template": map[string]any{
				"metadata": map[string]any{"labels": map[string]any{"app": name}},
				"spec": map[string]any{
					"containers": []any{
						map[string]any{"name": name, "image": image},
					},
				},
			},
		},
	}}
	return &core.Resource{Object: obj, Component: name, Transformer: "manifest"}
}

func service(name string, port int64) *core.Resource {
	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "v1",
		"kind":       "Service",
		"metadata":   map[string]any{"name": name},
		"spec": map[string]any{
			"selector": map[string]any{"app": name},
			"ports": []any{
				map[string]any{"port": port, "targetPort": port},
			},
		},
	}}
	return &core.Resource{Object: obj, Component: name, Transformer: "manifest"}
}

func configMap(name string, data map[string]string) *core.Resource {
	asAny := map[string]any{}
	for k, v := range data {
		asAny[k] = v
	}
	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "v1",
		"kind":       "ConfigMap",
		"metadata":   map[string]any{"name": name},
		"data":       asAny,
	}}
	return &core.Resource{Object: obj, Component: name, Transformer: "manifest"}
}
