package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driving"
)

// Ensure ComponentRegistry implements the interface.
var _ driving.ComponentRegistry = (*ComponentRegistry)(nil)

type registryKey struct {
	role driven.Role
	id   string
}

// ComponentRegistry binds extractor, transformer and loader factories to
// supplier IDs and sink types. Built-in components are registered at startup.
type ComponentRegistry struct {
	mu        sync.RWMutex
	factories map[registryKey]driven.Factory
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[registryKey]driven.Factory),
	}
}

// Register binds a factory to (role, id).
func (r *ComponentRegistry) Register(role driven.Role, id string, factory driven.Factory) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: %s id is empty", domain.ErrInvalidInput, role)
	}
	if factory == nil {
		return fmt.Errorf("%w: %s %q: factory is nil", domain.ErrInvalidInput, role, id)
	}
	if factory.Role() != role {
		return fmt.Errorf("%w: %s %q: factory builds %s", domain.ErrInvalidInput, role, id, factory.Role())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{role: role, id: id}
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("%w: %s %q", domain.ErrAlreadyExists, role, id)
	}
	r.factories[key] = factory
	return nil
}

// Resolve returns the factory bound to (role, id).
func (r *ComponentRegistry) Resolve(role driven.Role, id string) (driven.Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[registryKey{role: role, id: id}]
	if !ok {
		return nil, &domain.UnknownComponentError{Role: string(role), ID: id}
	}
	return factory, nil
}

// Extractor returns the extractor factory for a supplier.
func (r *ComponentRegistry) Extractor(supplierID string) (driven.ExtractorFactory, error) {
	f, err := r.Resolve(driven.RoleExtractor, supplierID)
	if err != nil {
		return nil, err
	}
	return f.(driven.ExtractorFactory), nil
}

// Transformer returns the transformer factory for a supplier.
func (r *ComponentRegistry) Transformer(supplierID string) (driven.TransformerFactory, error) {
	f, err := r.Resolve(driven.RoleTransformer, supplierID)
	if err != nil {
		return nil, err
	}
	return f.(driven.TransformerFactory), nil
}

// Loader returns the loader factory for a sink type.
func (r *ComponentRegistry) Loader(sinkType string) (driven.LoaderFactory, error) {
	f, err := r.Resolve(driven.RoleLoader, sinkType)
	if err != nil {
		return nil, err
	}
	return f.(driven.LoaderFactory), nil
}

// CheckSupplier verifies a supplier has both an extractor and a transformer.
func (r *ComponentRegistry) CheckSupplier(supplierID string) error {
	var errs []error
	if _, err := r.Resolve(driven.RoleExtractor, supplierID); err != nil {
		errs = append(errs, err)
	}
	if _, err := r.Resolve(driven.RoleTransformer, supplierID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Suppliers returns the IDs with a registered extractor, sorted.
func (r *ComponentRegistry) Suppliers() []string {
	return r.ids(driven.RoleExtractor)
}

// Loaders returns the registered sink types, sorted.
func (r *ComponentRegistry) Loaders() []string {
	return r.ids(driven.RoleLoader)
}

func (r *ComponentRegistry) ids(role driven.Role) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for key := range r.factories {
		if key.role == role {
			ids = append(ids, key.id)
		}
	}
	sort.Strings(ids)
	return ids
}
