package provider

import (
	"sort"
	"sync"

	"github.com/quantra-lab/contango/pkg/errors"
)

// Registry holds the known providers keyed by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under its name, replacing any previous entry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeNoSuchDataSource, "no data source named %s", name)
	}

	return p, nil
}

// GetConnected returns the provider registered under name, failing when it is
// not connected.
func (r *Registry) GetConnected(name string) (Provider, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	if !p.Connected() {
		return nil, errors.Newf(errors.ErrCodeDataSourceNotConnected, "data source %s is not connected", name)
	}

	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
