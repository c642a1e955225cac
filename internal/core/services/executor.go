package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// RunContext carries the settings of one orchestrator invocation down to
// every supplier pipeline. It replaces any process-wide run state.
type RunContext struct {
	ID     string
	Action domain.Action
	Since  *time.Time

	Retry            RetryPolicy
	OperationTimeout time.Duration

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// NewRunContext builds a run context from engine settings.
func NewRunContext(id string, action domain.Action, since *time.Time, engine domain.EngineConfig) *RunContext {
	return &RunContext{
		ID:               id,
		Action:           action,
		Since:            since,
		Retry:            RetryPolicyFromConfig(engine),
		OperationTimeout: engine.OperationTimeout.Std(),
	}
}

func (rc *RunContext) now() time.Time {
	if rc.Now != nil {
		return rc.Now()
	}
	return time.Now()
}

// callContext bounds a single extractor or loader call.
func (rc *RunContext) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if rc.OperationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rc.OperationTimeout)
}

// Pipeline is the set of components that process one supplier.
type Pipeline struct {
	Supplier    domain.SupplierDescriptor
	Extractor   driven.Extractor
	Transformer driven.Transformer
	Loader      driven.Loader
}

// PipelineExecutor runs extract, correlate, transform and load for one
// supplier. Records are processed sequentially in fixed-size batches.
type PipelineExecutor struct {
	observer driven.RunObserver
}

// NewPipelineExecutor creates an executor. observer may be nil.
func NewPipelineExecutor(observer driven.RunObserver) *PipelineExecutor {
	return &PipelineExecutor{observer: observer}
}

// RunFull extracts everything the supplier offers.
func (e *PipelineExecutor) RunFull(ctx context.Context, rc *RunContext, p Pipeline) domain.RunOutcome {
	return e.run(ctx, rc, p, domain.ActionSync, driven.ExtractOptions{})
}

// RunIncremental extracts records modified at or after since. If the
// extractor cannot do that the outcome fails; it never falls back to a
// full extraction.
func (e *PipelineExecutor) RunIncremental(ctx context.Context, rc *RunContext, p Pipeline, since time.Time) domain.RunOutcome {
	return e.run(ctx, rc, p, domain.ActionIncremental, driven.ExtractOptions{Since: &since})
}

func (e *PipelineExecutor) run(
	ctx context.Context,
	rc *RunContext,
	p Pipeline,
	action domain.Action,
	opts driven.ExtractOptions,
) domain.RunOutcome {
	supplierID := p.Supplier.ID
	outcome := domain.NewRunOutcome(supplierID, action, rc.now())

	logger.Info("Starting %s for supplier %s", action, supplierID)
	e.execute(ctx, rc, p, opts, outcome)
	outcome.Finish(rc.now())

	logger.Info("Supplier %s finished: %s (extracted=%d correlated=%d loaded=%d skipped=%d failed=%d)",
		supplierID, outcome.Status, outcome.Counts.Extracted, outcome.Counts.Correlated,
		outcome.Counts.Loaded, outcome.Counts.Skipped, outcome.Counts.Failed)
	if e.observer != nil {
		e.observer.ObserveOutcome(*outcome)
	}
	return *outcome
}

//nolint:gocyclo // Orchestration function with necessary sequential steps
func (e *PipelineExecutor) execute(
	ctx context.Context,
	rc *RunContext,
	p Pipeline,
	opts driven.ExtractOptions,
	outcome *domain.RunOutcome,
) {
	supplierID := p.Supplier.ID

	// 1. Capability check (incremental never degrades to full)
	if opts.Incremental() && !p.Extractor.Capabilities().SupportsIncremental {
		outcome.Abort(fmt.Errorf("%w: supplier %s does not support incremental extraction",
			domain.ErrUnsupportedOperation, supplierID))
		logger.Warn("Supplier %s: incremental extraction not supported", supplierID)
		return
	}

	if ctx.Err() != nil {
		outcome.Cancel()
		return
	}

	// 2. Extract into the correlation cache
	cache := NewCorrelationCache(supplierID)
	if err := e.extract(ctx, rc, p, opts, cache, outcome); err != nil {
		records, orphans := cache.Drain()
		reason := domain.ReasonRunAborted
		if errors.Is(err, domain.ErrCancelled) {
			reason = domain.ReasonCancelled
			outcome.Cancel()
		} else {
			outcome.Abort(err)
			logger.Warn("Supplier %s: extraction aborted: %v", supplierID, err)
		}
		for _, rec := range records {
			outcome.Skip(rec.CorrelationKey, domain.StageExtract, reason)
		}
		for _, key := range orphans {
			outcome.Skip(key, domain.StageExtract, reason)
		}
		return
	}

	// 3. Correlate
	records, orphans := cache.Drain()
	outcome.Counts.Correlated = len(records)
	for _, key := range orphans {
		logger.Info("Supplier %s: skipping %s: %s", supplierID, key, domain.ReasonNoBaseRecord)
		outcome.Skip(key, domain.StageCorrelate, domain.ReasonNoBaseRecord)
	}

	// 4. Transform and load in batches
	batchSize := p.Supplier.EffectiveBatchSize()
	for start := 0; start < len(records); start += batchSize {
		if ctx.Err() != nil {
			logger.Warn("Supplier %s: cancelled, %d records not started", supplierID, len(records)-start)
			skipAll(outcome, records[start:], domain.ReasonCancelled)
			outcome.Cancel()
			return
		}

		end := min(start+batchSize, len(records))
		if err := e.processBatch(ctx, rc, p, records[start:end], outcome); err != nil {
			outcome.Abort(err)
			logger.Warn("Supplier %s: aborted after batch %d-%d: %v", supplierID, start, end, err)
			skipAll(outcome, records[end:], domain.ReasonRunAborted)
			return
		}
	}
}

// extract pulls every page from the extractor into cache. It returns an
// error only when the supplier run must stop.
func (e *PipelineExecutor) extract(
	ctx context.Context,
	rc *RunContext,
	p Pipeline,
	opts driven.ExtractOptions,
	cache *CorrelationCache,
	outcome *domain.RunOutcome,
) error {
	supplierID := p.Supplier.ID

	stream, err := p.Extractor.Extract(ctx, opts)
	if err != nil {
		return fmt.Errorf("open extraction: %w", Classify(ctx, err).Err)
	}

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
		}

		var (
			records []domain.RawRecord
			done    bool
		)
		op := fmt.Sprintf("extract %s page %d", supplierID, page)
		err := Retry(ctx, rc.Retry, op, func(ctx context.Context) CallResult {
			callCtx, cancel := rc.callContext(ctx)
			defer cancel()

			recs, err := stream.Next(callCtx)
			if errors.Is(err, io.EOF) {
				records, done = recs, true
				return Ok()
			}
			if err != nil {
				return Classify(ctx, err)
			}
			records = recs
			return Ok()
		})
		if err != nil {
			return err
		}

		logger.Debug("Supplier %s: page %d: %d records", supplierID, page, len(records))
		for _, rec := range records {
			outcome.Counts.Extracted++
			if rec.Err != nil {
				outcome.Fail(rec.CorrelationKey, domain.StageExtract, rec.Err)
				continue
			}
			owner := rec.SupplierID
			if owner == "" {
				owner = supplierID
			}
			if err := cache.Add(owner, rec); err != nil {
				outcome.Fail(rec.CorrelationKey, domain.StageCorrelate, err)
			}
		}

		if done {
			return nil
		}
	}
}

// processBatch transforms and loads one batch. Per-record problems are
// recorded on the outcome. A non-nil error means the supplier must stop.
func (e *PipelineExecutor) processBatch(
	ctx context.Context,
	rc *RunContext,
	p Pipeline,
	batch []domain.CorrelatedRecord,
	outcome *domain.RunOutcome,
) error {
	products := make([]domain.UnifiedProduct, 0, len(batch))
	keys := make([]string, 0, len(batch))

	for _, rec := range batch {
		product, err := p.Transformer.Transform(ctx, rec)
		if err == nil {
			err = product.Validate()
		}
		if err != nil {
			logger.Debug("Supplier %s: transform %s: %v", p.Supplier.ID, rec.CorrelationKey, err)
			outcome.Fail(rec.CorrelationKey, domain.StageTransform, err)
			continue
		}
		outcome.Counts.Transformed++
		products = append(products, product)
		keys = append(keys, rec.CorrelationKey)
	}

	if len(products) == 0 {
		return nil
	}

	// A started batch runs to completion even if the run is cancelled.
	loadCtx := context.WithoutCancel(ctx)

	var results []driven.LoadResult
	op := fmt.Sprintf("load %s batch of %d", p.Supplier.ID, len(products))
	err := Retry(loadCtx, rc.Retry, op, func(ctx context.Context) CallResult {
		callCtx, cancel := rc.callContext(ctx)
		defer cancel()

		res, err := p.Loader.LoadBatch(callCtx, products)
		if err != nil {
			return Classify(ctx, err)
		}
		results = res
		return Ok()
	})
	if err != nil {
		for _, key := range keys {
			outcome.Fail(key, domain.StageLoad, err)
		}
		if domain.IsFatal(err) {
			return err
		}
		return nil
	}

	if len(results) != len(products) {
		mismatch := fmt.Errorf("loader returned %d results for %d products", len(results), len(products))
		for _, key := range keys {
			outcome.Fail(key, domain.StageLoad, mismatch)
		}
		return nil
	}

	for i, res := range results {
		if !res.OK() {
			outcome.Fail(keys[i], domain.StageLoad, res.Err)
			continue
		}
		outcome.Counts.Loaded++
	}
	logger.Debug("Supplier %s: loaded %d/%d", p.Supplier.ID, outcome.Counts.Loaded, outcome.Counts.Transformed)
	return nil
}

func skipAll(outcome *domain.RunOutcome, records []domain.CorrelatedRecord, reason string) {
	for _, rec := range records {
		outcome.Skip(rec.CorrelationKey, domain.StageLoad, reason)
	}
}
