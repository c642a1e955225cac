package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
)

// Ensure RunReportStore implements the interface.
var _ driven.RunReportStore = (*RunReportStore)(nil)

// RunReportStore is an in-memory implementation of driven.RunReportStore.
type RunReportStore struct {
	mu      sync.RWMutex
	reports map[string]domain.RunReport
}

// NewRunReportStore creates a new in-memory report store.
func NewRunReportStore() *RunReportStore {
	return &RunReportStore{
		reports: make(map[string]domain.RunReport),
	}
}

// Save stores or replaces a report.
func (s *RunReportStore) Save(_ context.Context, report domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = report
	return nil
}

// Latest returns the most recently started report.
func (s *RunReportStore) Latest(ctx context.Context) (*domain.RunReport, error) {
	reports, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, domain.ErrNotFound
	}
	return &reports[0], nil
}

// List returns up to limit reports, newest first. limit <= 0 returns all.
func (s *RunReportStore) List(_ context.Context, limit int) ([]domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RunReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LastSuccess returns the start of the newest report with a successful
// outcome for the supplier.
func (s *RunReportStore) LastSuccess(ctx context.Context, supplierID string) (time.Time, error) {
	reports, err := s.List(ctx, 0)
	if err != nil {
		return time.Time{}, err
	}
	for _, r := range reports {
		if o, ok := r.Outcome(supplierID); ok && o.Status == domain.StatusSuccess {
			return r.StartedAt, nil
		}
	}
	return time.Time{}, domain.ErrNotFound
}
