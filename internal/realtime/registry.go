package realtime

import (
	"sync"
)

// ConnID uniquely identifies one live connection.
type ConnID string

// Registry is the concurrency-safe mapping between scope keys and the sets of
// live connection ids currently associated with them. It keeps a reverse index
// (connection id -> scope keys) so disconnect cleanup only touches the scopes
// that connection actually joined.
//
// All mutation goes through Join/Leave/LeaveAll; callers never see the maps.
type Registry struct {
	mu      sync.RWMutex
	byScope map[ScopeKey]map[ConnID]struct{}
	byConn  map[ConnID]map[ScopeKey]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byScope: make(map[ScopeKey]map[ConnID]struct{}),
		byConn:  make(map[ConnID]map[ScopeKey]struct{}),
	}
}

// Join adds a connection id under a scope key, creating the entry if needed.
// Joining a scope the connection is already in is a no-op.
func (r *Registry) Join(key ScopeKey, id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byScope[key]; !ok {
		r.byScope[key] = make(map[ConnID]struct{})
	}
	r.byScope[key][id] = struct{}{}

	if _, ok := r.byConn[id]; !ok {
		r.byConn[id] = make(map[ScopeKey]struct{})
	}
	r.byConn[id][key] = struct{}{}
}

// Leave removes a connection id from one scope key. Leaving a scope the
// connection is not in is a no-op. Entries that become empty are pruned.
func (r *Registry) Leave(key ScopeKey, id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(key, id)
}

// LeaveAll removes a connection id from every scope it participates in.
// Used on disconnect; safe to call more than once.
func (r *Registry) LeaveAll(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.byConn[id] {
		r.leaveLocked(key, id)
	}
}

func (r *Registry) leaveLocked(key ScopeKey, id ConnID) {
	if ids, ok := r.byScope[key]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byScope, key)
		}
	}
	if keys, ok := r.byConn[id]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(r.byConn, id)
		}
	}
}

// Resolve returns the connection ids currently associated with a scope key.
// An unknown key resolves to an empty slice, never an error.
func (r *Registry) Resolve(key ScopeKey) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.byScope[key]
	if !ok {
		return nil
	}
	out := make([]ConnID, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return out
}

// Scopes returns every scope key a connection currently belongs to.
func (r *Registry) Scopes(id ConnID) []ScopeKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys, ok := r.byConn[id]
	if !ok {
		return nil
	}
	out := make([]ScopeKey, 0, len(keys))
	for key := range keys {
		out = append(out, key)
	}
	return out
}

// Contains reports whether a connection id is registered under a scope key.
func (r *Registry) Contains(key ScopeKey, id ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byScope[key][id]
	return ok
}
