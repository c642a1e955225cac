package driving

import (
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
)

// ComponentRegistry maps (role, id) pairs to component factories.
// Extractors and transformers are keyed by supplier ID, loaders by sink type.
type ComponentRegistry interface {
	// Register binds a factory. The factory must build components of role.
	// Registering the same (role, id) twice returns domain.ErrAlreadyExists.
	Register(role driven.Role, id string, factory driven.Factory) error

	// Resolve returns the factory for (role, id).
	// Returns *domain.UnknownComponentError if nothing is registered.
	Resolve(role driven.Role, id string) (driven.Factory, error)

	// Extractor returns the extractor factory for a supplier.
	Extractor(supplierID string) (driven.ExtractorFactory, error)

	// Transformer returns the transformer factory for a supplier.
	Transformer(supplierID string) (driven.TransformerFactory, error)

	// Loader returns the loader factory for a sink type.
	Loader(sinkType string) (driven.LoaderFactory, error)

	// CheckSupplier verifies a supplier has both an extractor and a transformer.
	CheckSupplier(supplierID string) error

	// Suppliers returns the IDs with a registered extractor, sorted.
	Suppliers() []string
}
