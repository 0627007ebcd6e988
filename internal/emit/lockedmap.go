package emit

import (
	"sync"

	"github.com/nomnomgen/compiler/internal/buildcache"
)

// lockedMap collects per-emitter results from concurrent errgroup goroutines.
type lockedMap struct {
	mu sync.Mutex
	m  map[string][]buildcache.WriteResult
}

func (l *lockedMap) set(key string, v []buildcache.WriteResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[key] = v
}

func (l *lockedMap) get(key string) ([]buildcache.WriteResult, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.m[key]
	return v, ok
}
