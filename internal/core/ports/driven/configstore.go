package driven

import "github.com/nandeep-biztech/pim-etl/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files).
type ConfigStore interface {
	// Config returns the loaded configuration.
	Config() domain.Config

	// Suppliers returns every configured supplier descriptor, ordered by ID.
	Suppliers() []domain.SupplierDescriptor

	// Supplier returns one descriptor.
	// Returns an error wrapping domain.ErrConfig if the supplier is not configured.
	Supplier(id string) (domain.SupplierDescriptor, error)

	// Load reads configuration from storage.
	Load() error

	// Save persists the current configuration to storage.
	Save() error

	// Path returns the configuration file path.
	Path() string
}
