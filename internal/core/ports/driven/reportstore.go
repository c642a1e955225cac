package driven

import (
	"context"
	"time"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// RunReportStore persists completed run reports.
type RunReportStore interface {
	// Save stores or replaces a report by ID.
	Save(ctx context.Context, report domain.RunReport) error

	// Latest returns the most recently started report.
	// Returns domain.ErrNotFound if no report has been stored.
	Latest(ctx context.Context) (*domain.RunReport, error)

	// List returns up to limit reports, newest first.
	List(ctx context.Context, limit int) ([]domain.RunReport, error)

	// LastSuccess returns the start time of the newest run in which the
	// supplier's outcome was successful.
	// Returns domain.ErrNotFound if there is none.
	LastSuccess(ctx context.Context, supplierID string) (time.Time, error)
}
