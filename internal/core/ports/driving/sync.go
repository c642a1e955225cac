package driving

import (
	"context"
	"time"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// SyncOrchestrator coordinates supplier pipeline runs.
type SyncOrchestrator interface {
	// Validate checks every configured supplier's extractor and loader.
	// It does not change the orchestrator state. Per-supplier problems are
	// reported in the ValidationReport, not as an error.
	Validate(ctx context.Context) (*domain.ValidationReport, error)

	// Sync runs a full extraction for the given suppliers, or all configured
	// suppliers when filter is empty. A configuration problem found before
	// extraction starts returns a failed report and an error wrapping
	// domain.ErrConfig.
	Sync(ctx context.Context, filter []string) (*domain.RunReport, error)

	// Incremental runs an extraction restricted to records modified at or
	// after since. Suppliers that cannot extract incrementally fail; there
	// is no fallback to a full extraction.
	Incremental(ctx context.Context, since time.Time, filter []string) (*domain.RunReport, error)

	// Status returns the most recently completed report since process start,
	// or nil when no run has completed.
	Status(ctx context.Context) (*domain.RunReport, error)

	// State returns the current lifecycle state.
	State() domain.RunState
}
