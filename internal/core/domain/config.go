package domain

import (
	"fmt"
	"sort"
	"time"
)

// Engine defaults.
const (
	DefaultMaxRetries       = 3
	DefaultInitialBackoff   = 500 * time.Millisecond
	DefaultMaxBackoff       = 10 * time.Second
	DefaultOperationTimeout = 30 * time.Second
	DefaultParallelism      = 1
)

// Config is the complete application configuration.
type Config struct {
	Database  DatabaseConfig                `toml:"database"`
	Engine    EngineConfig                  `toml:"engine"`
	Logging   LoggingConfig                 `toml:"logging"`
	State     StateConfig                   `toml:"state"`
	Metrics   MetricsConfig                 `toml:"metrics"`
	Suppliers map[string]SupplierDescriptor `toml:"suppliers"`
}

// DatabaseConfig configures the default sink.
type DatabaseConfig struct {
	// Type is the loader type ("mongodb" or "memory").
	Type       string `toml:"type"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	BatchSize  int    `toml:"batch_size"`
}

// EngineConfig holds the run-wide retry, timeout and parallelism settings.
type EngineConfig struct {
	MaxRetries       int      `toml:"max_retries"`
	InitialBackoff   Duration `toml:"initial_backoff"`
	MaxBackoff       Duration `toml:"max_backoff"`
	OperationTimeout Duration `toml:"operation_timeout"`
	// Parallelism is the number of suppliers run at once. 1 runs them in order.
	Parallelism int `toml:"parallelism"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// StateConfig locates the run report database.
type StateConfig struct {
	Dir string `toml:"dir"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile is a path for Prometheus text-format output. Empty disables export.
	Textfile string `toml:"textfile"`
}

// DefaultConfig returns the configuration used for unset keys.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Type:       "mongodb",
			URI:        "mongodb://localhost:27017/",
			Database:   "product_catalog",
			Collection: "products",
			BatchSize:  1000,
		},
		Engine: EngineConfig{
			MaxRetries:       DefaultMaxRetries,
			InitialBackoff:   Duration(DefaultInitialBackoff),
			MaxBackoff:       Duration(DefaultMaxBackoff),
			OperationTimeout: Duration(DefaultOperationTimeout),
			Parallelism:      DefaultParallelism,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "logs/etl.log",
		},
		Suppliers: map[string]SupplierDescriptor{},
	}
}

// SampleConfig returns DefaultConfig with the built-in suppliers configured.
func SampleConfig() Config {
	cfg := DefaultConfig()
	cfg.Suppliers = map[string]SupplierDescriptor{
		"midocean": {
			Name:      "MidOcean",
			BatchSize: 100,
			Language:  "en",
			API: APIConfig{
				BaseURL:           "https://api.midocean.com/gateway",
				APIKey:            "",
				RequestsPerSecond: 2,
				Timeout:           Duration(DefaultOperationTimeout),
			},
		},
	}
	return cfg
}

// Descriptors returns every configured supplier ordered by ID, with the ID
// and loader type filled in.
func (c Config) Descriptors() []SupplierDescriptor {
	ids := make([]string, 0, len(c.Suppliers))
	for id := range c.Suppliers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]SupplierDescriptor, 0, len(ids))
	for _, id := range ids {
		d, _ := c.Descriptor(id)
		out = append(out, d)
	}
	return out
}

// Descriptor returns the supplier with the given ID.
func (c Config) Descriptor(id string) (SupplierDescriptor, bool) {
	d, ok := c.Suppliers[id]
	if !ok {
		return SupplierDescriptor{}, false
	}
	d.ID = id
	if d.Loader == "" {
		d.Loader = c.Database.Type
	}
	return d, true
}

// Validate checks the global sections. Supplier descriptors are validated
// individually so one bad supplier does not hide the others.
func (c Config) Validate() error {
	if c.Database.Type == "" {
		return fmt.Errorf("%w: database.type is empty", ErrConfig)
	}
	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("%w: engine.max_retries must not be negative", ErrConfig)
	}
	if c.Engine.Parallelism < 0 {
		return fmt.Errorf("%w: engine.parallelism must not be negative", ErrConfig)
	}
	if c.Engine.InitialBackoff < 0 || c.Engine.MaxBackoff < 0 || c.Engine.OperationTimeout < 0 {
		return fmt.Errorf("%w: engine durations must not be negative", ErrConfig)
	}
	return nil
}
