package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driving"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator drives validate, sync and incremental runs across
// suppliers and keeps the last completed report.
type SyncOrchestrator struct {
	registry driving.ComponentRegistry
	config   driven.ConfigStore
	reports  driven.RunReportStore
	observer driven.RunObserver
	executor *PipelineExecutor

	newID func() string
	now   func() time.Time

	mu    sync.RWMutex
	state domain.RunState
	last  *domain.RunReport
}

// NewSyncOrchestrator creates a new orchestrator.
// reports and observer are optional - if nil, reports are kept in memory
// only and no metrics are recorded.
func NewSyncOrchestrator(
	registry driving.ComponentRegistry,
	config driven.ConfigStore,
	reports driven.RunReportStore,
	observer driven.RunObserver,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		registry: registry,
		config:   config,
		reports:  reports,
		observer: observer,
		executor: NewPipelineExecutor(observer),
		newID:    uuid.NewString,
		now:      time.Now,
		state:    domain.StateIdle,
	}
}

// State returns the current lifecycle state.
func (o *SyncOrchestrator) State() domain.RunState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Status returns the last completed report, or nil.
func (o *SyncOrchestrator) Status(_ context.Context) (*domain.RunReport, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.last == nil {
		return nil, nil
	}
	report := *o.last
	return &report, nil
}

// Sync runs a full extraction for the filtered suppliers.
func (o *SyncOrchestrator) Sync(ctx context.Context, filter []string) (*domain.RunReport, error) {
	return o.run(ctx, domain.ActionSync, nil, filter)
}

// Incremental runs an extraction of records modified at or after since.
func (o *SyncOrchestrator) Incremental(ctx context.Context, since time.Time, filter []string) (*domain.RunReport, error) {
	return o.run(ctx, domain.ActionIncremental, &since, filter)
}

// Validate checks every configured supplier without running a pipeline.
//
//nolint:gocognit // One check per component with shared loader cache
func (o *SyncOrchestrator) Validate(ctx context.Context) (*domain.ValidationReport, error) {
	cfg := o.config.Config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Validate")
	timeout := cfg.Engine.OperationTimeout.Std()
	report := &domain.ValidationReport{CheckedAt: o.now()}
	loaders := make(map[string]driven.Loader)
	loaderErrs := make(map[string]error)
	defer closeLoaders(loaders)

	for _, desc := range cfg.Descriptors() {
		check := domain.SupplierCheck{SupplierID: desc.ID}

		if err := o.checkConfig(desc); err != nil {
			check.ConfigErr = err.Error()
			report.Checks = append(report.Checks, check)
			logger.Warn("Supplier %s: %v", desc.ID, err)
			continue
		}

		if err := o.validateExtractor(ctx, desc, timeout); err != nil {
			check.ExtractorErr = err.Error()
			logger.Warn("Supplier %s: extractor: %v", desc.ID, err)
		}

		if _, seen := loaderErrs[desc.Loader]; !seen {
			loaderErrs[desc.Loader] = o.validateLoader(ctx, cfg.Database, desc.Loader, timeout, loaders)
		}
		if err := loaderErrs[desc.Loader]; err != nil {
			check.LoaderErr = err.Error()
			logger.Warn("Supplier %s: loader %s: %v", desc.ID, desc.Loader, err)
		}

		if check.OK() {
			logger.Info("Supplier %s: OK", desc.ID)
		}
		report.Checks = append(report.Checks, check)
	}

	return report, nil
}

func (o *SyncOrchestrator) checkConfig(desc domain.SupplierDescriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	if err := o.registry.CheckSupplier(desc.ID); err != nil {
		return err
	}
	if _, err := o.registry.Loader(desc.Loader); err != nil {
		return err
	}
	return nil
}

func (o *SyncOrchestrator) validateExtractor(ctx context.Context, desc domain.SupplierDescriptor, timeout time.Duration) error {
	factory, err := o.registry.Extractor(desc.ID)
	if err != nil {
		return err
	}
	extractor, err := factory(desc)
	if err != nil {
		return fmt.Errorf("%w: build extractor: %w", domain.ErrConfig, err)
	}
	defer extractor.Close()

	if !extractor.Capabilities().SupportsValidation {
		return nil
	}
	callCtx, cancel := withOptionalTimeout(ctx, timeout)
	defer cancel()
	return extractor.Validate(callCtx)
}

func (o *SyncOrchestrator) validateLoader(
	ctx context.Context,
	dbCfg domain.DatabaseConfig,
	sinkType string,
	timeout time.Duration,
	loaders map[string]driven.Loader,
) error {
	loader, err := o.buildLoader(dbCfg, sinkType, loaders)
	if err != nil {
		return err
	}
	callCtx, cancel := withOptionalTimeout(ctx, timeout)
	defer cancel()
	return loader.Validate(callCtx)
}

// run executes one sync or incremental invocation.
func (o *SyncOrchestrator) run(
	ctx context.Context,
	action domain.Action,
	since *time.Time,
	filter []string,
) (*domain.RunReport, error) {
	cfg := o.config.Config()
	targets, resolveErr, err := o.begin(cfg, filter)
	if err != nil {
		return nil, err
	}

	report := domain.NewRunReport(o.newID(), action, since, filter, o.now())
	rc := NewRunContext(report.ID, action, since, cfg.Engine)
	rc.Now = o.now

	logger.Section(fmt.Sprintf("%s %s", action, report.ID))

	// IDLE -> FAILED: targets could not be resolved
	if resolveErr != nil {
		return o.fail(ctx, report, resolveErr)
	}

	// VALIDATING: build every component before any extraction starts
	pipelines, loaders, err := o.build(cfg, targets)
	if err != nil {
		o.setState(domain.StateFailed)
		return o.fail(ctx, report, err)
	}

	// RUNNING
	o.setState(domain.StateRunning)
	outcomes := o.execute(ctx, rc, pipelines, cfg.Engine.Parallelism)
	closePipelines(pipelines, loaders)

	// REPORTING
	o.setState(domain.StateReporting)
	for _, outcome := range outcomes {
		report.Add(outcome)
	}
	report.Finalise(o.now())
	o.publish(ctx, report)

	o.mu.Lock()
	stored := *report
	o.last = &stored
	o.state = domain.StateIdle
	o.mu.Unlock()

	return report, nil
}

// begin refuses concurrent runs and resolves the targets. A resolution
// problem moves straight to FAILED and is returned as resolveErr; otherwise
// the orchestrator moves to VALIDATING.
func (o *SyncOrchestrator) begin(cfg domain.Config, filter []string) (targets []domain.SupplierDescriptor, resolveErr, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Busy() {
		return nil, nil, fmt.Errorf("%w: orchestrator is %s", domain.ErrRunInProgress, o.state)
	}

	targets, resolveErr = o.resolve(cfg, filter)
	next := domain.StateValidating
	if resolveErr != nil {
		next = domain.StateFailed
	}
	if o.state, err = o.state.Transition(next); err != nil {
		return nil, nil, err
	}
	return targets, resolveErr, nil
}

// fail finishes a run that stopped before extraction. The failed report
// becomes the last report.
func (o *SyncOrchestrator) fail(ctx context.Context, report *domain.RunReport, err error) (*domain.RunReport, error) {
	report.Fail(err, o.now())
	logger.Error("Run %s failed before extraction: %v", report.ID, err)
	o.publish(ctx, report)

	o.mu.Lock()
	stored := *report
	o.last = &stored
	o.mu.Unlock()

	return report, err
}

func (o *SyncOrchestrator) setState(next domain.RunState) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.CanTransition(next) {
		logger.Warn("Unexpected state change %s -> %s", o.state, next)
	}
	o.state = next
}

// resolve checks the configuration and selects the targets. Every problem
// is a configuration error.
func (o *SyncOrchestrator) resolve(cfg domain.Config, filter []string) ([]domain.SupplierDescriptor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	targets, err := selectTargets(cfg, filter)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, desc := range targets {
		if err := o.checkConfig(desc); err != nil {
			errs = append(errs, fmt.Errorf("supplier %s: %w", desc.ID, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return targets, nil
}

// build creates the components of every target. Nothing is extracted if
// any of them fails.
//
//nolint:gocyclo // Construction steps are sequential and each can fail
func (o *SyncOrchestrator) build(cfg domain.Config, targets []domain.SupplierDescriptor) ([]Pipeline, map[string]driven.Loader, error) {
	loaders := make(map[string]driven.Loader)
	pipelines := make([]Pipeline, 0, len(targets))
	fail := func(err error) ([]Pipeline, map[string]driven.Loader, error) {
		closePipelines(pipelines, loaders)
		return nil, nil, err
	}

	for _, desc := range targets {
		extractorFactory, err := o.registry.Extractor(desc.ID)
		if err != nil {
			return fail(err)
		}
		transformerFactory, err := o.registry.Transformer(desc.ID)
		if err != nil {
			return fail(err)
		}

		extractor, err := extractorFactory(desc)
		if err != nil {
			return fail(fmt.Errorf("%w: supplier %s: build extractor: %w", domain.ErrConfig, desc.ID, err))
		}
		transformer, err := transformerFactory(desc)
		if err != nil {
			extractor.Close()
			return fail(fmt.Errorf("%w: supplier %s: build transformer: %w", domain.ErrConfig, desc.ID, err))
		}
		loader, err := o.buildLoader(cfg.Database, desc.Loader, loaders)
		if err != nil {
			extractor.Close()
			return fail(fmt.Errorf("supplier %s: %w", desc.ID, err))
		}

		pipelines = append(pipelines, Pipeline{
			Supplier:    desc,
			Extractor:   extractor,
			Transformer: transformer,
			Loader:      loader,
		})
	}

	return pipelines, loaders, nil
}

// buildLoader returns the shared loader for a sink type, creating it once.
func (o *SyncOrchestrator) buildLoader(
	dbCfg domain.DatabaseConfig,
	sinkType string,
	loaders map[string]driven.Loader,
) (driven.Loader, error) {
	if loader, ok := loaders[sinkType]; ok {
		return loader, nil
	}
	factory, err := o.registry.Loader(sinkType)
	if err != nil {
		return nil, err
	}
	cfg := dbCfg
	cfg.Type = sinkType
	loader, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: build loader %s: %w", domain.ErrConfig, sinkType, err)
	}
	loaders[sinkType] = loader
	return loader, nil
}

// execute runs every pipeline and returns outcomes in target order.
func (o *SyncOrchestrator) execute(ctx context.Context, rc *RunContext, pipelines []Pipeline, parallelism int) []domain.RunOutcome {
	outcomes := make([]domain.RunOutcome, len(pipelines))

	if parallelism <= 1 || len(pipelines) <= 1 {
		for i, p := range pipelines {
			outcomes[i] = o.runPipeline(ctx, rc, p)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(parallelism)
	for i, p := range pipelines {
		g.Go(func() error {
			outcomes[i] = o.runPipeline(ctx, rc, p)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (o *SyncOrchestrator) runPipeline(ctx context.Context, rc *RunContext, p Pipeline) domain.RunOutcome {
	if rc.Action == domain.ActionIncremental && rc.Since != nil {
		return o.executor.RunIncremental(ctx, rc, p, *rc.Since)
	}
	return o.executor.RunFull(ctx, rc, p)
}

// publish persists and observes a finished report. Failures are logged only.
func (o *SyncOrchestrator) publish(ctx context.Context, report *domain.RunReport) {
	if o.observer != nil {
		o.observer.ObserveReport(*report)
	}
	if o.reports == nil {
		return
	}
	if err := o.reports.Save(context.WithoutCancel(ctx), *report); err != nil {
		logger.Warn("Failed to save run report %s: %v", report.ID, err)
	}
}

// selectTargets returns the descriptors a run applies to, in filter order
// or by ID when no filter is given.
func selectTargets(cfg domain.Config, filter []string) ([]domain.SupplierDescriptor, error) {
	if len(filter) == 0 {
		targets := cfg.Descriptors()
		if len(targets) == 0 {
			return nil, fmt.Errorf("%w: no suppliers configured", domain.ErrConfig)
		}
		return targets, nil
	}

	seen := make(map[string]bool, len(filter))
	targets := make([]domain.SupplierDescriptor, 0, len(filter))
	var errs []error
	for _, id := range filter {
		if seen[id] {
			continue
		}
		seen[id] = true
		desc, ok := cfg.Descriptor(id)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: supplier %q is not configured", domain.ErrConfig, id))
			continue
		}
		targets = append(targets, desc)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return targets, nil
}

func closePipelines(pipelines []Pipeline, loaders map[string]driven.Loader) {
	for _, p := range pipelines {
		if err := p.Extractor.Close(); err != nil {
			logger.Debug("Close extractor %s: %v", p.Supplier.ID, err)
		}
	}
	closeLoaders(loaders)
}

func closeLoaders(loaders map[string]driven.Loader) {
	for sinkType, loader := range loaders {
		if err := loader.Close(); err != nil {
			logger.Debug("Close loader %s: %v", sinkType, err)
		}
		delete(loaders, sinkType)
	}
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
