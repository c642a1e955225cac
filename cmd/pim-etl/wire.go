package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nandeep-biztech/pim-etl/internal/adapters/driven/config/file"
	"github.com/nandeep-biztech/pim-etl/internal/adapters/driven/metrics"
	"github.com/nandeep-biztech/pim-etl/internal/adapters/driven/storage/memory"
	"github.com/nandeep-biztech/pim-etl/internal/adapters/driven/storage/mongo"
	"github.com/nandeep-biztech/pim-etl/internal/adapters/driven/storage/sqlite"
	"github.com/nandeep-biztech/pim-etl/internal/adapters/driving/cli"
	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/core/services"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
	"github.com/nandeep-biztech/pim-etl/internal/suppliers/jsonfeed"
	"github.com/nandeep-biztech/pim-etl/internal/suppliers/midocean"
)

// pluginOption selects the supplier plugin for a configured supplier.
// Without it the supplier ID is used as the plugin name.
const pluginOption = "plugin"

// bootstrap loads the configuration and wires the application.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg := configStore.Config()

	if err := logger.Configure(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}); err != nil {
		return nil, fmt.Errorf("%w: logging: %w", domain.ErrConfig, err)
	}
	logger.SetVerbose(opts.Verbose)

	registry, err := newRegistry(cfg, memory.NewProductStore())
	if err != nil {
		return nil, err
	}

	reports, err := sqlite.NewStore(cfg.State.Dir)
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}
	logger.Debug("Run history at %s", reports.Path())

	recorder := metrics.NewRecorder()
	orchestrator := services.NewSyncOrchestrator(registry, configStore, reports, recorder)

	svc := &cli.Services{
		Orchestrator: orchestrator,
		Reports:      reports,
		Suppliers:    supplierIDs(cfg),
	}

	var sink driven.Loader
	if factory, err := registry.Loader(cfg.Database.Type); err == nil {
		if l, err := factory(cfg.Database); err == nil {
			sink = l
			if stats, ok := l.(driven.StatsProvider); ok {
				svc.Stats = stats
			}
		} else {
			logger.Debug("Sink statistics disabled: %v", err)
		}
	}

	svc.Close = func() error {
		var errs []error
		if cfg.Metrics.Textfile != "" {
			if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				errs = append(errs, fmt.Errorf("writing metrics: %w", err))
			}
		}
		if sink != nil {
			if err := sink.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := reports.Close(); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}
	return svc, nil
}

// writeSample writes the sample configuration. The existing file is not
// parsed, so a broken one can be replaced with --force.
func writeSample(path string, force bool) error {
	return file.NewSampleConfigStore(path).WriteSample(force)
}

// newRegistry registers the built-in loaders and a plugin per supplier.
// The memory sink type resolves to products for every run and for status.
func newRegistry(cfg domain.Config, products *memory.ProductStore) (*services.ComponentRegistry, error) {
	registry := services.NewComponentRegistry()

	loaders := map[string]driven.LoaderFactory{
		mongo.LoaderType:  mongo.NewLoader,
		memory.LoaderType: products.Factory(),
	}
	for sinkType, factory := range loaders {
		if err := registry.Register(driven.RoleLoader, sinkType, factory); err != nil {
			return nil, err
		}
	}

	for _, desc := range cfg.Descriptors() {
		plugin := strings.ToLower(desc.Option(pluginOption, desc.ID))
		var err error
		switch plugin {
		case midocean.SupplierID:
			err = midocean.Register(registry, desc.ID)
		case jsonfeed.PluginName:
			err = jsonfeed.Register(registry, desc.ID)
		default:
			// Left unregistered; validate and sync report it per supplier
			logger.Warn("Supplier %s: unknown plugin %q", desc.ID, plugin)
		}
		if err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func supplierIDs(cfg domain.Config) []string {
	descs := cfg.Descriptors()
	ids := make([]string, 0, len(descs))
	for _, d := range descs {
		ids = append(ids, d.ID)
	}
	return ids
}
