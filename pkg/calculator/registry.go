package calculator

import (
	"fmt"
	"sort"
	"sync"
)

// Registry indexes calculators by ID. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	calculators map[string]Calculator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{calculators: make(map[string]Calculator)}
}

// Register adds a calculator. Registering an ID twice is an error.
func (r *Registry) Register(c Calculator) error {
	if c == nil {
		return fmt.Errorf("cannot register a nil calculator")
	}
	id := c.Info().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.calculators[id]; exists {
		return fmt.Errorf("calculator %s is already registered", id)
	}
	r.calculators[id] = c
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(c Calculator) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get looks up a calculator by ID.
func (r *Registry) Get(id string) (Calculator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calculators[id]
	return c, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// List returns the info of every calculator sorted by ID.
func (r *Registry) List() []Info {
	r.mu.RLock()
	infos := make([]Info, 0, len(r.calculators))
	for _, c := range r.calculators {
		infos = append(infos, c.Info())
	}
	r.mu.RUnlock()
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Len returns the number of registered calculators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calculators)
}
