package replicache

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// BatchLoader fetches the client-facing JSON values for a set of entity ids
// in one query. Implementations convert rows through public DTOs so internal
// fields never reach clients.
type BatchLoader func(tx *gorm.DB, ids []string) (map[string]json.RawMessage, error)

// VersionLister returns id → version for every entity of the prefix owned by
// a user; used to build the next CVR.
type VersionLister func(tx *gorm.DB, userID string) (map[string]int, error)

// Entry binds a resource prefix to its loaders.
type Entry struct {
	Prefix string
	Load   BatchLoader
	List   VersionLister
}

// Registry maps resource prefixes to loaders, decoupling the sync pipelines
// from concrete entity types. Registration is append-only; replacing a
// prefix is an error.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

func (r *Registry) Register(e Entry) error {
	if e.Prefix == "" || e.Load == nil || e.List == nil {
		return fmt.Errorf("registry entry for %q is incomplete", e.Prefix)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[e.Prefix]; exists {
		return fmt.Errorf("prefix %q already registered", e.Prefix)
	}
	r.entries[e.Prefix] = e
	return nil
}

// MustRegister panics on a duplicate prefix; used for startup wiring.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

func (r *Registry) loader(prefix string) (BatchLoader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[prefix]
	return e.Load, ok
}

// Prefixes returns the registered prefixes in stable order.
func (r *Registry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for p := range r.entries {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ListAll builds the full (key → version) entity map for a user across all
// registered prefixes.
func (r *Registry) ListAll(tx *gorm.DB, userID string) (map[string]int, error) {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := map[string]int{}
	for _, e := range entries {
		versions, err := e.List(tx, userID)
		if err != nil {
			return nil, fmt.Errorf("list %s entities: %w", e.Prefix, err)
		}
		for id, version := range versions {
			out[e.Prefix+"/"+id] = version
		}
	}
	return out, nil
}
