// Package tenant keeps per-tenant resources keyed by tenant name.
package tenant

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrInvalidName is returned for tenant names outside [A-Za-z0-9_-].
var ErrInvalidName = errors.New("invalid tenant name")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidName reports whether name is an acceptable tenant key.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Factory creates the resource for one tenant.
type Factory[T any] func(ctx context.Context, name string) (T, error)

// Registry lazily creates one T per tenant and keeps it for the process
// lifetime. Concurrent first requests for the same tenant share one
// factory call. Failed creations are not cached.
type Registry[T any] struct {
	factory Factory[T]
	group   singleflight.Group

	mu    sync.RWMutex
	items map[string]T
}

// NewRegistry returns an empty registry backed by factory.
func NewRegistry[T any](factory Factory[T]) *Registry[T] {
	return &Registry[T]{factory: factory, items: make(map[string]T)}
}

// Get returns the tenant's resource, creating it on first use.
func (r *Registry[T]) Get(ctx context.Context, name string) (T, error) {
	var zero T
	if !ValidName(name) {
		return zero, ErrInvalidName
	}
	r.mu.RLock()
	item, ok := r.items[name]
	r.mu.RUnlock()
	if ok {
		return item, nil
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		r.mu.RLock()
		item, ok := r.items[name]
		r.mu.RUnlock()
		if ok {
			return item, nil
		}
		// creation must not die with the first caller's request
		created, err := r.factory(context.WithoutCancel(ctx), name)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.items[name] = created
		r.mu.Unlock()
		return created, nil
	})
	if err != nil {
		return zero, err
	}
	item, _ = v.(T)
	return item, nil
}

// Names returns the tenants created so far, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every created resource in tenant order.
func (r *Registry[T]) Each(fn func(name string, item T)) {
	for _, name := range r.Names() {
		r.mu.RLock()
		item, ok := r.items[name]
		r.mu.RUnlock()
		if ok {
			fn(name, item)
		}
	}
}
