// Package registry provides prototype registry implementations: in-memory,
// SQLite-backed, and PostgreSQL-backed.
package registry

import (
	"sort"
	"sync"

	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// MemoryRegistry is an in-memory prototype registry. Reads return deep
// copies, so callers can mutate results without affecting the registry.
type MemoryRegistry struct {
	mu         sync.RWMutex
	byFamily   map[string]map[string]*shared.Prototype
	familyKeys map[string][]string
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byFamily:   make(map[string]map[string]*shared.Prototype),
		familyKeys: make(map[string][]string),
	}
}

// Register adds or replaces a prototype under its Type family.
func (r *MemoryRegistry) Register(p *shared.Prototype) {
	if p == nil || p.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	family := r.byFamily[p.Type]
	if family == nil {
		family = make(map[string]*shared.Prototype)
		r.byFamily[p.Type] = family
	}
	if _, exists := family[p.ID]; !exists {
		r.familyKeys[p.Type] = append(r.familyKeys[p.Type], p.ID)
	}
	family[p.ID] = shared.ClonePrototype(p)
}

// RegisterAll adds every prototype in the slice.
func (r *MemoryRegistry) RegisterAll(prototypes []*shared.Prototype) {
	for _, p := range prototypes {
		r.Register(p)
	}
}

// GetPrototypesByType implements shared.Registry. Results preserve insertion
// order within a family.
func (r *MemoryRegistry) GetPrototypesByType(family string) ([]*shared.Prototype, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.familyKeys[family]
	result := make([]*shared.Prototype, 0, len(ids))
	for _, id := range ids {
		result = append(result, shared.ClonePrototype(r.byFamily[family][id]))
	}
	return result, nil
}

// Families lists the registered family names, sorted.
func (r *MemoryRegistry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	families := make([]string, 0, len(r.byFamily))
	for family := range r.byFamily {
		families = append(families, family)
	}
	sort.Strings(families)
	return families
}

// Count returns the number of prototypes in one family.
func (r *MemoryRegistry) Count(family string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byFamily[family])
}
