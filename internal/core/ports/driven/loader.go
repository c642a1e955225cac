package driven

import (
	"context"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// Loader writes unified products to a sink.
// Loaders are registered per sink type and shared across suppliers,
// so LoadBatch must be safe for concurrent use.
type Loader interface {
	// Type returns the sink type identifier (e.g., "mongodb").
	Type() string

	// Validate checks the sink is reachable and prepared.
	Validate(ctx context.Context) error

	// LoadBatch upserts products keyed by ExternalID.
	// The returned slice has one result per product, in input order.
	// An error means the whole batch failed.
	LoadBatch(ctx context.Context, products []domain.UnifiedProduct) ([]LoadResult, error)

	// Close releases resources.
	Close() error
}

// LoadResult is the outcome of writing one product.
type LoadResult struct {
	ExternalID string

	// Err is nil when the product was written.
	Err error
}

// OK reports whether the product was written.
func (r LoadResult) OK() bool {
	return r.Err == nil
}

// StatsProvider is implemented by loaders that can summarise their sink.
type StatsProvider interface {
	Stats(ctx context.Context) (domain.SinkStats, error)
}
