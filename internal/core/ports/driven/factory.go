package driven

import "github.com/nandeep-biztech/pim-etl/internal/core/domain"

// Role names the kind of component a factory builds.
type Role string

// Component roles.
const (
	RoleExtractor   Role = "extractor"
	RoleTransformer Role = "transformer"
	RoleLoader      Role = "loader"
)

// Factory builds one kind of pipeline component.
// It is implemented by ExtractorFactory, TransformerFactory and LoaderFactory.
type Factory interface {
	Role() Role
}

// ExtractorFactory creates an Extractor for a supplier.
type ExtractorFactory func(desc domain.SupplierDescriptor) (Extractor, error)

// Role implements Factory.
func (ExtractorFactory) Role() Role { return RoleExtractor }

// TransformerFactory creates a Transformer for a supplier.
type TransformerFactory func(desc domain.SupplierDescriptor) (Transformer, error)

// Role implements Factory.
func (TransformerFactory) Role() Role { return RoleTransformer }

// LoaderFactory creates a Loader for a sink.
type LoaderFactory func(cfg domain.DatabaseConfig) (Loader, error)

// Role implements Factory.
func (LoaderFactory) Role() Role { return RoleLoader }
