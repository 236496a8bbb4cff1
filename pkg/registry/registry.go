// pkg/registry/registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// Registry maps manager names to adapter instances
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]core.Adapter
}

var _ core.Lookup = (*Registry)(nil)

// New creates a registry holding the given adapters
func New(adapters ...core.Adapter) *Registry {
	r := &Registry{adapters: make(map[string]core.Adapter)}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// Register adds an adapter, failing if its name is taken
func (r *Registry) Register(a core.Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[a.Name()]; exists {
		return fmt.Errorf("manager %s already registered", a.Name())
	}
	r.adapters[a.Name()] = a
	return nil
}

// Get retrieves the adapter for a manager name
func (r *Registry) Get(name string) (core.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[name]
	return a, ok
}

// Names returns all registered manager names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
