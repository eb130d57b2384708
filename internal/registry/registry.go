package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// ErrUnknownSchema is returned when no registered adapter matches a schema or header
var ErrUnknownSchema = errors.New("unknown source schema")

// AdapterRegistry manages registered source adapters
type AdapterRegistry struct {
	adapters map[models.SourceSchema]contracts.SourceAdapter
	mu       sync.RWMutex
}

// NewAdapterRegistry creates a new adapter registry
func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{
		adapters: make(map[models.SourceSchema]contracts.SourceAdapter),
	}
}

// Register adds a source adapter to the registry
func (r *AdapterRegistry) Register(adapter contracts.SourceAdapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	schema := adapter.Schema()
	if _, exists := r.adapters[schema]; exists {
		return fmt.Errorf("adapter for schema %s is already registered", schema)
	}

	r.adapters[schema] = adapter
	return nil
}

// Get retrieves an adapter by schema
func (r *AdapterRegistry) Get(schema models.SourceSchema) (contracts.SourceAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[schema]
	return adapter, exists
}

// Lookup is Get with an ErrUnknownSchema error for use in call chains
func (r *AdapterRegistry) Lookup(schema string) (contracts.SourceAdapter, error) {
	adapter, ok := r.Get(models.SourceSchema(strings.ToLower(strings.TrimSpace(schema))))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, schema)
	}
	return adapter, nil
}

// GetAll returns all registered adapters sorted by schema
func (r *AdapterRegistry) GetAll() []contracts.SourceAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapters := make([]contracts.SourceAdapter, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		adapters = append(adapters, adapter)
	}
	sort.Slice(adapters, func(i, j int) bool {
		return adapters[i].Schema() < adapters[j].Schema()
	})
	return adapters
}

// Count returns the number of registered adapters
func (r *AdapterRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.adapters)
}

// Detect picks the adapter whose required columns are all present in the header.
// Exactly one adapter must match.
func (r *AdapterRegistry) Detect(header []string) (contracts.SourceAdapter, error) {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[strings.TrimSpace(col)] = true
	}

	var matches []contracts.SourceAdapter
	for _, adapter := range r.GetAll() {
		ok := true
		for _, col := range adapter.RequiredColumns() {
			if !present[col] {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, adapter)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no adapter matches columns %v", ErrUnknownSchema, header)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: columns %v match %d adapters", ErrUnknownSchema, header, len(matches))
	}
}
