package memory

import (
	"fmt"
	"maps"
	"sync"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg domain.Config
}

// NewConfigStore creates a new in-memory config store holding cfg.
func NewConfigStore(cfg domain.Config) *ConfigStore {
	return &ConfigStore{cfg: cloneConfig(cfg)}
}

// Config returns a copy of the held configuration.
func (s *ConfigStore) Config() domain.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConfig(s.cfg)
}

// Suppliers returns every configured supplier ordered by ID.
func (s *ConfigStore) Suppliers() []domain.SupplierDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Descriptors()
}

// Supplier returns one descriptor.
func (s *ConfigStore) Supplier(id string) (domain.SupplierDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	desc, ok := s.cfg.Descriptor(id)
	if !ok {
		return domain.SupplierDescriptor{}, fmt.Errorf("%w: supplier %q is not configured", domain.ErrConfig, id)
	}
	return desc, nil
}

// SetSupplier adds or replaces a supplier descriptor.
func (s *ConfigStore) SetSupplier(id string, desc domain.SupplierDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.Suppliers == nil {
		s.cfg.Suppliers = make(map[string]domain.SupplierDescriptor)
	}
	s.cfg.Suppliers[id] = desc
}

// Save persists the current configuration (no-op for memory store).
func (s *ConfigStore) Save() error {
	return nil
}

// Load reads configuration from storage (no-op for memory store).
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}

func cloneConfig(cfg domain.Config) domain.Config {
	out := cfg
	out.Suppliers = maps.Clone(cfg.Suppliers)
	return out
}
