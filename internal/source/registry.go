package source

import (
	"sort"
	"sync"
)

// Registry manages provider adapters by name.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry creates a new source registry
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds a source, replacing any with the same name.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get retrieves a source by name
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	return s, ok
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns all registered sources sorted by name.
func (r *Registry) GetAll() []Source {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Source, 0, len(names))
	for _, name := range names {
		if s, ok := r.sources[name]; ok {
			result = append(result, s)
		}
	}
	return result
}
