package driven

import "github.com/nandeep-biztech/pim-etl/internal/core/domain"

// RunObserver receives finished outcomes and reports, e.g. for metrics.
type RunObserver interface {
	ObserveOutcome(outcome domain.RunOutcome)
	ObserveReport(report domain.RunReport)
}
