package domain

import (
	"errors"
	"time"
)

// Action is an operation requested of the orchestrator.
type Action string

// Orchestrator actions.
const (
	ActionValidate    Action = "validate"
	ActionSync        Action = "sync"
	ActionIncremental Action = "incremental"
)

// RunStatus is the classification of a supplier outcome or a whole run.
type RunStatus string

// Run statuses, weakest first.
const (
	StatusFailed  RunStatus = "failed"
	StatusPartial RunStatus = "partial"
	StatusSuccess RunStatus = "success"
)

func (s RunStatus) rank() int {
	switch s {
	case StatusSuccess:
		return 2
	case StatusPartial:
		return 1
	default:
		return 0
	}
}

// Weakest returns the lower of two statuses (failed < partial < success).
func Weakest(a, b RunStatus) RunStatus {
	if a.rank() <= b.rank() {
		return a
	}
	return b
}

// Stage is the pipeline step a record failed or was skipped in.
type Stage string

// Pipeline stages.
const (
	StageConfig    Stage = "config"
	StageExtract   Stage = "extract"
	StageCorrelate Stage = "correlate"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// Skip reasons recorded by the executor.
const (
	ReasonNoBaseRecord = "no base record"
	ReasonCancelled    = "cancelled"
	ReasonRunAborted   = "run aborted"
)

// RecordFailure identifies one failed or skipped record.
type RecordFailure struct {
	CorrelationKey string `json:"correlation_key"`
	Stage          Stage  `json:"stage"`
	Reason         string `json:"reason"`
}

// Counts are the per-stage record counters of a supplier run.
type Counts struct {
	Extracted   int `json:"extracted"`
	Correlated  int `json:"correlated"`
	Transformed int `json:"transformed"`
	Loaded      int `json:"loaded"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Extracted:   c.Extracted + o.Extracted,
		Correlated:  c.Correlated + o.Correlated,
		Transformed: c.Transformed + o.Transformed,
		Loaded:      c.Loaded + o.Loaded,
		Skipped:     c.Skipped + o.Skipped,
		Failed:      c.Failed + o.Failed,
	}
}

// RunOutcome is the result of running one supplier pipeline.
// Every record that did not load appears in Failures or Skips.
type RunOutcome struct {
	SupplierID string          `json:"supplier_id"`
	Action     Action          `json:"action"`
	Counts     Counts          `json:"counts"`
	Failures   []RecordFailure `json:"failures,omitempty"`
	Skips      []RecordFailure `json:"skips,omitempty"`

	// Error is the run-level reason when the supplier was aborted or cancelled.
	Error     string `json:"error,omitempty"`
	Aborted   bool   `json:"aborted,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Status    RunStatus `json:"status"`
}

// NewRunOutcome starts an outcome for a supplier.
func NewRunOutcome(supplierID string, action Action, startedAt time.Time) *RunOutcome {
	return &RunOutcome{
		SupplierID: supplierID,
		Action:     action,
		StartedAt:  startedAt,
	}
}

// Fail records a per-record failure.
func (o *RunOutcome) Fail(key string, stage Stage, err error) {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	o.Failures = append(o.Failures, RecordFailure{CorrelationKey: key, Stage: stage, Reason: reason})
	o.Counts.Failed++
}

// Skip records a record that was not processed.
func (o *RunOutcome) Skip(key string, stage Stage, reason string) {
	o.Skips = append(o.Skips, RecordFailure{CorrelationKey: key, Stage: stage, Reason: reason})
	o.Counts.Skipped++
}

// Abort marks the supplier run as failed as a whole.
func (o *RunOutcome) Abort(err error) {
	o.Aborted = true
	if err != nil {
		o.Error = err.Error()
	}
}

// Cancel marks the run as stopped early by cancellation.
func (o *RunOutcome) Cancel() {
	o.Cancelled = true
	if o.Error == "" {
		o.Error = ErrCancelled.Error()
	}
}

// Finish stamps the end time and classifies the outcome.
func (o *RunOutcome) Finish(now time.Time) {
	o.EndedAt = now
	o.Status = o.Classify()
}

// Classify derives the status from the outcome contents.
//
//   - aborted (transport, auth, config, unsupported): failed
//   - cancelled: partial
//   - no record failures: success
//   - some loaded and some failed: partial
//   - otherwise: failed
func (o *RunOutcome) Classify() RunStatus {
	switch {
	case o.Aborted:
		return StatusFailed
	case o.Cancelled:
		return StatusPartial
	case o.Counts.Failed == 0:
		return StatusSuccess
	case o.Counts.Loaded > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// Duration returns how long the run took.
func (o *RunOutcome) Duration() time.Duration {
	if o.EndedAt.IsZero() {
		return 0
	}
	return o.EndedAt.Sub(o.StartedAt)
}

// FailedOutcome builds a finished outcome for a supplier that could not run.
func FailedOutcome(supplierID string, action Action, err error, now time.Time) RunOutcome {
	o := NewRunOutcome(supplierID, action, now)
	o.Abort(err)
	if errors.Is(err, ErrCancelled) {
		o.Aborted = false
		o.Cancel()
	}
	o.Finish(now)
	return *o
}
