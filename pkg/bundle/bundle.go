// Package bundle assembles country-year data bundles from external feeds or
// previously stored copies.
package bundle

import (
	"context"
	"fmt"
	"sync"

	"github.com/hydromix/hydromix/pkg/storage"
	"github.com/hydromix/hydromix/pkg/types"
)

// Provider fetches the bundle for a region and year.
type Provider interface {
	Bundle(ctx context.Context, region string, year int) (types.Bundle, error)
	// Describe returns a short human-readable summary of where the
	// provider's data comes from.
	Describe() string
	Validate() error
}

// Configured sets up the bundle providers based on flags.
func Configured(db storage.Database) *Map {
	m := NewMap()
	m.SetProvider("gridfeed", configuredGridFeed())
	m.SetProvider("stored", NewStored(db))
	return m
}

// Map manages multiple bundle providers.
type Map struct {
	mu        sync.Mutex
	providers map[string]Provider
}

// NewMap creates a new provider Map.
func NewMap() *Map {
	return &Map{
		providers: make(map[string]Provider),
	}
}

// Provider returns the provider for the given name.
func (m *Map) Provider(name string) (Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prov, ok := m.providers[name]; ok {
		return prov, nil
	}
	return nil, fmt.Errorf("unknown bundle provider: %s", name)
}

// SetProvider sets the provider for the given name. This is primarily used for testing.
func (m *Map) SetProvider(name string, provider Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = provider
}

// Names returns the registered provider names.
func (m *Map) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names
}

// Descriptions returns the registered providers' descriptions keyed by name.
func (m *Map) Descriptions() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.providers))
	for name, prov := range m.providers {
		out[name] = prov.Describe()
	}
	return out
}
