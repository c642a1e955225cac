package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
)

// LoaderType is the sink type the in-memory product store registers as.
const LoaderType = "memory"

// Ensure ProductStore implements the interface.
var (
	_ driven.Loader        = (*ProductStore)(nil)
	_ driven.StatsProvider = (*ProductStore)(nil)
)

// ProductStore is an in-memory driven.Loader keyed by product ID.
// It backs dry runs and tests.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]domain.UnifiedProduct
	batches  int
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		products: make(map[string]domain.UnifiedProduct),
	}
}

// NewLoader adapts NewProductStore to driven.LoaderFactory.
func NewLoader(_ domain.DatabaseConfig) (driven.Loader, error) {
	return NewProductStore(), nil
}

// Factory returns a driven.LoaderFactory that always hands out s, so every
// run in the process writes to the same store.
func (s *ProductStore) Factory() driven.LoaderFactory {
	return func(_ domain.DatabaseConfig) (driven.Loader, error) {
		return s, nil
	}
}

// Type returns the sink type.
func (s *ProductStore) Type() string {
	return LoaderType
}

// Validate always succeeds.
func (s *ProductStore) Validate(_ context.Context) error {
	return nil
}

// LoadBatch upserts products by ExternalID.
func (s *ProductStore) LoadBatch(ctx context.Context, products []domain.UnifiedProduct) ([]driven.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]driven.LoadResult, len(products))
	for i := range products {
		p := products[i]
		results[i].ExternalID = p.ExternalID
		if p.ExternalID == "" {
			results[i].Err = fmt.Errorf("%w: product_id is empty", domain.ErrValidation)
			continue
		}
		s.products[p.ExternalID] = p
	}
	s.batches++
	return results, nil
}

// Get returns a stored product.
func (s *ProductStore) Get(externalID string) (domain.UnifiedProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[externalID]
	if !ok {
		return domain.UnifiedProduct{}, domain.ErrNotFound
	}
	return p, nil
}

// List returns every stored product ordered by ID.
func (s *ProductStore) List() []domain.UnifiedProduct {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UnifiedProduct, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out
}

// Count returns the number of stored products.
func (s *ProductStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Stats counts stored products per supplier and status.
func (s *ProductStore) Stats(_ context.Context) (domain.SinkStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.SinkStats{
		Total:      int64(len(s.products)),
		BySupplier: make(map[string]int64),
		ByStatus:   make(map[string]int64),
	}
	for _, p := range s.products {
		stats.BySupplier[p.Supplier.ID]++
		stats.ByStatus[string(p.Status)]++
	}
	return stats, nil
}

// Batches returns how many LoadBatch calls succeeded.
func (s *ProductStore) Batches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batches
}

// Close is a no-op.
func (s *ProductStore) Close() error {
	return nil
}
