// Package emit coordinates the seven emitters (spec.md §5): each writes to
// a disjoint output subdirectory, so they run concurrently via errgroup,
// the way the teacher's build pipeline parallelizes independent transform
// executions.
package emit

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nomnomgen/compiler/internal/buildcache"
	"github.com/nomnomgen/compiler/internal/emit/builddesc"
	"github.com/nomnomgen/compiler/internal/emit/dashboard"
	"github.com/nomnomgen/compiler/internal/emit/extraction"
	"github.com/nomnomgen/compiler/internal/emit/manifest"
	"github.com/nomnomgen/compiler/internal/emit/orm"
	"github.com/nomnomgen/compiler/internal/emit/record"
	"github.com/nomnomgen/compiler/internal/emit/schema"
	"github.com/nomnomgen/compiler/internal/emit/worker"
	"github.com/nomnomgen/compiler/internal/genconfig"
	"github.com/nomnomgen/compiler/internal/output"
	"github.com/nomnomgen/compiler/internal/plan"
	"github.com/nomnomgen/compiler/internal/resolve"
)

// Result aggregates every emitter's write results, keyed by emitter name.
type Result struct {
	ByEmitter map[string][]buildcache.WriteResult
	Ran       []string
}

// Run executes every enabled emitter against the resolved graph and plan,
// then writes the build descriptor last (it must see what actually ran).
func Run(g *resolve.Graph, p *plan.Plan, cfg *genconfig.Config) (*Result, error) {
	res := &Result{ByEmitter: make(map[string][]buildcache.WriteResult)}

	type job struct {
		name string
		fn   func() ([]buildcache.WriteResult, error)
	}

	jobs := []job{
		{"record", func() ([]buildcache.WriteResult, error) {
			return record.Generate(g, p, filepath.Join(cfg.OutDir, "record"))
		}},
		{"extraction", func() ([]buildcache.WriteResult, error) {
			return extraction.Generate(g, p, filepath.Join(cfg.OutDir, "extraction"))
		}},
		{"schema", func() ([]buildcache.WriteResult, error) {
			return schema.Generate(g, p, cfg.SQLDialect, filepath.Join(cfg.OutDir, "schema"))
		}},
		{"orm", func() ([]buildcache.WriteResult, error) {
			return orm.Generate(g, p, cfg.SQLDialect, filepath.Join(cfg.OutDir, "orm"))
		}},
		{"worker", func() ([]buildcache.WriteResult, error) {
			return worker.Generate(g, p, filepath.Join(cfg.OutDir, "worker"))
		}},
		{"dashboard", func() ([]buildcache.WriteResult, error) {
			return dashboard.Generate(g, p, cfg.DashboardAPIBaseURL, filepath.Join(cfg.OutDir, "dashboard"))
		}},
		{"manifest", func() ([]buildcache.WriteResult, error) {
			return manifest.Generate("nomnomgen/worker:latest", "nomnomgen/dashboard:latest", filepath.Join(cfg.OutDir, "manifest"), cfg.SplitManifests)
		}},
	}

	var eg errgroup.Group
	var mu lockedMap
	mu.m = make(map[string][]buildcache.WriteResult)

	var errMu sync.Mutex
	var emitErrs []error

	for _, j := range jobs {
		j := j
		if !cfg.Enabled(j.name) {
			continue
		}
		// Every goroutine always returns nil to eg.Go: a failing emitter's
		// error is recorded separately so eg.Wait never short-circuits and
		// the other emitters' completed writes are never discarded.
		eg.Go(func() error {
			out, err := j.fn()
			if err != nil {
				errMu.Lock()
				emitErrs = append(emitErrs, &EmitterError{Emitter: j.name, Err: err})
				errMu.Unlock()
				return nil
			}
			mu.set(j.name, out)
			return nil
		})
	}
	_ = eg.Wait()

	for _, j := range jobs {
		if v, ok := mu.get(j.name); ok {
			res.ByEmitter[j.name] = v
			res.Ran = append(res.Ran, j.name)
		}
	}

	descResults, err := builddesc.Generate(g, p, res.Ran, cfg.OutDir)
	if err != nil {
		emitErrs = append(emitErrs, &EmitterError{Emitter: "builddesc", Err: err})
	} else {
		res.ByEmitter["builddesc"] = descResults
	}

	written := 0
	for _, rs := range res.ByEmitter {
		for _, r := range rs {
			if r.Written {
				written++
			}
		}
	}
	output.Info("emission complete", "emitters", len(res.Ran), "files_written", written)

	if len(emitErrs) > 0 {
		return res, &Errors{Errors: emitErrs}
	}
	return res, nil
}
