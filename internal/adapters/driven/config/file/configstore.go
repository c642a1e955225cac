package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// DefaultPath is used when no configuration path is given.
const DefaultPath = "config/etl_config.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	cfg      domain.Config
	loaded   bool
}

// NewConfigStore creates a TOML-based config store and loads it.
// If path is empty, defaults to config/etl_config.toml.
// A missing file is not an error: the sample configuration is used.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		path = DefaultPath
	}

	s := &ConfigStore{
		filePath: path,
		cfg:      domain.SampleConfig(),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// NewSampleConfigStore creates a store holding the sample configuration
// without reading path. Used to write a fresh configuration file.
func NewSampleConfigStore(path string) *ConfigStore {
	if path == "" {
		path = DefaultPath
	}
	return &ConfigStore{
		filePath: path,
		cfg:      domain.SampleConfig(),
	}
}

// Config returns a copy of the loaded configuration.
func (s *ConfigStore) Config() domain.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.cfg
	cfg.Suppliers = make(map[string]domain.SupplierDescriptor, len(s.cfg.Suppliers))
	for id, desc := range s.cfg.Suppliers {
		cfg.Suppliers[id] = desc
	}
	return cfg
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
		return domain.SupplierDescriptor{}, fmt.Errorf("%w: supplier %q is not configured in %s",
			domain.ErrConfig, id, s.filePath)
	}
	return desc, nil
}

// Loaded reports whether the configuration came from the file rather than
// the built-in sample.
func (s *ConfigStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Load reads configuration from the TOML file.
// Keys missing from the file keep their defaults.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file yet - run with the sample configuration
			logger.Warn("Config file %s not found, using defaults", s.filePath)
			s.cfg = domain.SampleConfig()
			s.loaded = false
			return nil
		}
		return fmt.Errorf("%w: read %s: %w", domain.ErrConfig, s.filePath, err)
	}

	cfg := domain.DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return fmt.Errorf("%w: parse %s:%d:%d: %w", domain.ErrConfig, s.filePath, row, col, err)
		}
		return fmt.Errorf("%w: parse %s: %w", domain.ErrConfig, s.filePath, err)
	}
	if cfg.Suppliers == nil {
		cfg.Suppliers = make(map[string]domain.SupplierDescriptor)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", s.filePath, err)
	}

	s.cfg = cfg
	s.loaded = true
	logger.Debug("Loaded config %s (%d suppliers)", s.filePath, len(cfg.Suppliers))
	return nil
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// WriteSample replaces the configuration with the sample one and writes it.
// An existing file is only overwritten when force is set.
func (s *ConfigStore) WriteSample(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.filePath); err == nil && !force {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, s.filePath)
	}

	s.cfg = domain.SampleConfig()
	if err := s.save(); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if dir := filepath.Dir(s.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	// Write with restricted permissions, the file may hold API keys
	return os.WriteFile(s.filePath, data, 0o600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
