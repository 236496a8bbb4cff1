// Package resolver produces the ordered managers to attempt for a declaration.
package resolver

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/logging"
)

// Resolver applies the fallback rules and caches manager availability for
// the lifetime of one run
type Resolver struct {
	lookup core.Lookup
	order  []string
	logger zerolog.Logger

	mu    sync.Mutex
	cache map[string]*probe
}

// probe is one availability check shared by every caller
type probe struct {
	once      sync.Once
	available bool
}

// New creates a resolver over the given adapters and platform order
func New(lookup core.Lookup, order []string) *Resolver {
	return &Resolver{
		lookup: lookup,
		order:  append([]string(nil), order...),
		logger: logging.GetLogger("resolver"),
		cache:  make(map[string]*probe),
	}
}

// Order returns the platform default order
func (r *Resolver) Order() []string {
	return append([]string(nil), r.order...)
}

// Resolve returns the candidate managers for decl. A pinned manager is
// returned alone and unchecked; otherwise the declared candidates, or the
// platform order, are filtered to the available managers.
func (r *Resolver) Resolve(ctx context.Context, decl core.Declaration) []string {
	if decl.Manager != "" {
		return []string{decl.Manager}
	}

	candidates := decl.Candidates
	if len(candidates) == 0 {
		candidates = r.order
	}

	resolved := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, m := range candidates {
		if seen[m] {
			continue
		}
		seen[m] = true
		if r.Available(ctx, m) {
			resolved = append(resolved, m)
		}
	}

	r.logger.Debug().
		Str("package", decl.Name).
		Strs("candidates", resolved).
		Msg("Resolved candidate managers")
	return resolved
}

// Available reports whether manager has an adapter that is present on the
// host. The adapter is asked at most once per resolver.
func (r *Resolver) Available(ctx context.Context, manager string) bool {
	adapter, ok := r.lookup.Get(manager)
	if !ok {
		return false
	}

	r.mu.Lock()
	p, ok := r.cache[manager]
	if !ok {
		p = &probe{}
		r.cache[manager] = p
	}
	r.mu.Unlock()

	p.once.Do(func() {
		p.available = adapter.IsAvailable(ctx)
		r.logger.Debug().Str("manager", manager).Bool("available", p.available).Msg("Checked manager availability")
	})
	return p.available
}

// Snapshot returns the availability checked so far
func (r *Resolver) Snapshot() map[string]bool {
	r.mu.Lock()
	probes := make(map[string]*probe, len(r.cache))
	for name, p := range r.cache {
		probes[name] = p
	}
	r.mu.Unlock()

	out := make(map[string]bool, len(probes))
	for name, p := range probes {
		// Waits for a check still in flight
		p.once.Do(func() {})
		out[name] = p.available
	}
	return out
}
