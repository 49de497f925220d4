package store

import "sync"

// Registry maps shop tokens to their stores. Stores are created on first
// access and live for the process lifetime; there is no eviction. The
// registry is an injected instance, created at startup and passed to the
// request handlers.
type Registry struct {
	mu      sync.Mutex
	tenants map[string]*Tenant
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tenants: make(map[string]*Tenant)}
}

// GetOrCreate returns the store for token, atomically creating an empty one
// on first access. It never fails and never returns nil.
func (r *Registry) GetOrCreate(token string) *Tenant {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[token]
	if !ok {
		t = newTenant()
		r.tenants[token] = t
	}
	return t
}

// Len returns the number of known shops, for observability.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tenants)
}
