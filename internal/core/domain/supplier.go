package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultBatchSize is the number of transformed records written per loader call
// when a supplier does not configure its own batch size.
const DefaultBatchSize = 100

// SupplierDescriptor is the static configuration of one supplier.
// It is immutable for the duration of a run.
type SupplierDescriptor struct {
	// ID is the unique supplier identifier (e.g., "midocean").
	ID string `toml:"-"`

	// Name is the human-readable supplier name.
	Name string `toml:"name"`

	// Loader names the sink type records are written to (e.g., "mongodb").
	// Empty means the database type from the global configuration.
	Loader string `toml:"loader,omitempty"`

	// BatchSize is the number of records per loader call.
	BatchSize int `toml:"batch_size"`

	// Language is the catalogue language requested from the supplier.
	Language string `toml:"language,omitempty"`

	// API holds endpoint and credential settings.
	API APIConfig `toml:"api"`

	// Options contains plugin-specific key-value pairs.
	Options map[string]string `toml:"options,omitempty"`
}

// APIConfig describes how to reach a supplier API.
type APIConfig struct {
	BaseURL           string            `toml:"base_url"`
	APIKey            string            `toml:"api_key"`
	Endpoints         map[string]string `toml:"endpoints,omitempty"`
	RequestsPerSecond float64           `toml:"requests_per_second,omitempty"`
	Timeout           Duration          `toml:"timeout,omitempty"`
}

// EffectiveBatchSize returns the configured batch size or DefaultBatchSize.
func (d SupplierDescriptor) EffectiveBatchSize() int {
	if d.BatchSize > 0 {
		return d.BatchSize
	}
	return DefaultBatchSize
}

// Option returns a plugin option or def when unset.
func (d SupplierDescriptor) Option(key, def string) string {
	if v, ok := d.Options[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// Validate checks the descriptor is usable. Problems are configuration errors.
func (d SupplierDescriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: supplier id is empty", ErrConfig)
	}
	if d.BatchSize < 0 {
		return fmt.Errorf("%w: supplier %s: batch_size must not be negative", ErrConfig, d.ID)
	}
	if d.API.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: supplier %s: requests_per_second must not be negative", ErrConfig, d.ID)
	}
	if d.API.Timeout < 0 {
		return fmt.Errorf("%w: supplier %s: timeout must not be negative", ErrConfig, d.ID)
	}
	return nil
}

// DisplayName returns the name, falling back to the ID.
func (d SupplierDescriptor) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Duration is a time.Duration that reads and writes as a string ("30s").
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: duration %q: %w", ErrConfig, s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
