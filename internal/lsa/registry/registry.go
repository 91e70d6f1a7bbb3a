// Package registry maps goroutine IDs to their storage areas.
//
// The map itself is guarded by one mutex, which serializes insert, lookup
// and remove against each other. The fault interceptor cannot take that
// mutex (the faulting goroutine may be anywhere, including inside an
// engine operation), so the registry also maintains an immutable snapshot
// of every live page base address in an atomic.Value. The snapshot is
// rebuilt under the mutex on every mutation and read without any lock; a
// reader sees either the previous complete set or the next one, never a
// torn mix.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/kolkov/lsa/internal/lsa/area"
)

// Registry is the process-wide goroutine-to-area mapping.
type Registry struct {
	mu    sync.Mutex
	areas map[int64]*area.Area

	// index holds a map[uintptr]struct{} of the base address of every
	// page referenced by any registered area. Replaced wholesale, never
	// mutated in place.
	index atomic.Value
}

// New returns an empty registry.
func New() *Registry {
	r := &Registry{areas: make(map[int64]*area.Area)}
	r.index.Store(map[uintptr]struct{}{})
	return r
}

// Insert registers an area under gid. Reports false if gid already has an
// area; the registry is unchanged in that case.
func (r *Registry) Insert(gid int64, a *area.Area) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.areas[gid]; ok {
		return false
	}
	r.areas[gid] = a
	r.rebuild()
	return true
}

// Lookup returns the area registered under gid, if any.
func (r *Registry) Lookup(gid int64) (*area.Area, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.areas[gid]
	return a, ok
}

// Remove unregisters gid and returns its area, if any.
func (r *Registry) Remove(gid int64) (*area.Area, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.areas[gid]
	if !ok {
		return nil, false
	}
	delete(r.areas, gid)
	r.rebuild()
	return a, true
}

// Len returns the number of registered areas.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.areas)
}

// Contains reports whether base is the base address of a page referenced
// by any registered area. Lock-free; safe from the fault interceptor.
func (r *Registry) Contains(base uintptr) bool {
	idx := r.index.Load().(map[uintptr]struct{})
	_, ok := idx[base]
	return ok
}

// Reindex rebuilds the page-base snapshot. The engine calls it after a
// copy-on-write split swaps a page slot outside the registry's own
// mutations.
func (r *Registry) Reindex() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rebuild()
}

// rebuild publishes a fresh snapshot of all live page bases.
// Callers hold r.mu.
func (r *Registry) rebuild() {
	idx := make(map[uintptr]struct{})
	for _, a := range r.areas {
		for i := 0; i < a.PageCount(); i++ {
			idx[a.Page(i).Base()] = struct{}{}
		}
	}
	r.index.Store(idx)
}
