package core

import (
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/nomnomgen/compiler/pkg/weights"
)

// Resource is one Kubernetes-shaped object produced by the Orchestration
// Manifest Emitter (SPEC_FULL.md §4.6.7) for a generated worker or dashboard
// binary. It is never applied to a live cluster: the emitter only writes it
// out as text, the same way every other emitter writes generated source.
type Resource struct {
	Object      *unstructured.Unstructured
	Component   string // e.g. "worker", "dashboard-backend", "dashboard-frontend"
	Transformer string // which emitter produced this resource
}

func (r *Resource) GetObject() *unstructured.Unstructured { return r.Object }

func (r *Resource) GetGVK() schema.GroupVersionKind {
	return r.Object.GroupVersionKind()
}

func (r *Resource) GetKind() string      { return r.Object.GetKind() }
func (r *Resource) GetName() string      { return r.Object.GetName() }
func (r *Resource) GetNamespace() string { return r.Object.GetNamespace() }
func (r *Resource) GetComponent() string { return r.Component }
func (r *Resource) GetTransformer() string { return r.Transformer }

// GetWeight returns the apply-ordering weight for a GVK, used to sort
// emitted manifests deterministically (lowest first).
func GetWeight(gvk schema.GroupVersionKind) int {
	return weights.GetWeight(gvk)
}

// SortResourcesByWeight sorts resources by GVK weight, then name, matching
// the teacher's apply-ordering sort, for deterministic manifest output.
func SortResourcesByWeight(resources []*Resource) {
	sort.SliceStable(resources, func(i, j int) bool {
		wi, wj := GetWeight(resources[i].GetGVK()), GetWeight(resources[j].GetGVK())
		if wi != wj {
			return wi < wj
		}
		return resources[i].GetName() < resources[j].GetName()
	})
}
