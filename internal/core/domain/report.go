package domain

import (
	"errors"
	"fmt"
	"time"
)

// RunReport aggregates the outcomes of one orchestrator invocation.
type RunReport struct {
	ID        string       `json:"id"`
	Action    Action       `json:"action"`
	Since     *time.Time   `json:"since,omitempty"`
	Suppliers []string     `json:"suppliers,omitempty"`
	Outcomes  []RunOutcome `json:"outcomes"`
	Status    RunStatus    `json:"status"`

	// Error is set when the run failed before any supplier started.
	Error string `json:"error,omitempty"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// NewRunReport starts a report.
func NewRunReport(id string, action Action, since *time.Time, filter []string, startedAt time.Time) *RunReport {
	return &RunReport{
		ID:        id,
		Action:    action,
		Since:     since,
		Suppliers: append([]string(nil), filter...),
		StartedAt: startedAt,
	}
}

// Add appends a supplier outcome.
func (r *RunReport) Add(o RunOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Fail marks the whole report as failed before any supplier ran.
func (r *RunReport) Fail(err error, now time.Time) {
	if err != nil {
		r.Error = err.Error()
	}
	r.EndedAt = now
	r.Status = StatusFailed
}

// Finalise stamps the end time and sets the overall status to the
// weakest supplier status. A report with no outcomes is successful.
func (r *RunReport) Finalise(now time.Time) {
	r.EndedAt = now
	if r.Error != "" {
		r.Status = StatusFailed
		return
	}
	status := StatusSuccess
	for _, o := range r.Outcomes {
		status = Weakest(status, o.Status)
	}
	r.Status = status
}

// Succeeded reports whether the overall status is success.
func (r *RunReport) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Totals sums the counters of every outcome.
func (r *RunReport) Totals() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		c = c.Add(o.Counts)
	}
	return c
}

// Outcome returns the outcome for a supplier.
func (r *RunReport) Outcome(supplierID string) (RunOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.SupplierID == supplierID {
			return o, true
		}
	}
	return RunOutcome{}, false
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// SupplierCheck is the validation result for one supplier.
type SupplierCheck struct {
	SupplierID   string `json:"supplier_id"`
	ConfigErr    string `json:"config_error,omitempty"`
	ExtractorErr string `json:"extractor_error,omitempty"`
	LoaderErr    string `json:"loader_error,omitempty"`
}

// OK reports whether every check passed.
func (c SupplierCheck) OK() bool {
	return c.ConfigErr == "" && c.ExtractorErr == "" && c.LoaderErr == ""
}

// ValidationReport is the result of a validate action.
type ValidationReport struct {
	Checks    []SupplierCheck `json:"checks"`
	CheckedAt time.Time       `json:"checked_at"`
}

// OK reports whether all suppliers validated.
func (r *ValidationReport) OK() bool {
	for _, c := range r.Checks {
		if !c.OK() {
			return false
		}
	}
	return true
}

// Err joins the failed checks into one error, or returns nil.
func (r *ValidationReport) Err() error {
	var errs []error
	for _, c := range r.Checks {
		if c.ConfigErr != "" {
			errs = append(errs, fmt.Errorf("%s: config: %s", c.SupplierID, c.ConfigErr))
		}
		if c.ExtractorErr != "" {
			errs = append(errs, fmt.Errorf("%s: extractor: %s", c.SupplierID, c.ExtractorErr))
		}
		if c.LoaderErr != "" {
			errs = append(errs, fmt.Errorf("%s: loader: %s", c.SupplierID, c.LoaderErr))
		}
	}
	return errors.Join(errs...)
}
