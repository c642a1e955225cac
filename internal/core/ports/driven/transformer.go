package driven

import (
	"context"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// Transformer maps a correlated supplier record to the unified schema.
type Transformer interface {
	// SupplierID returns the supplier this transformer understands.
	SupplierID() string

	// Transform converts one correlated record.
	// Returns an error wrapping domain.ErrValidation for malformed input.
	Transform(ctx context.Context, rec domain.CorrelatedRecord) (domain.UnifiedProduct, error)
}
