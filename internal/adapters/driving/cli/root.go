// Package cli implements the pim-etl command line interface using cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driving"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// DefaultConfigPath is the --config default.
const DefaultConfigPath = "config/etl_config.toml"

// ErrRunNotSuccessful is returned when a run or validation finished without
// full success. The process exits with status 1.
var ErrRunNotSuccessful = errors.New("run not successful")

// version is set at build time.
var version = "dev"

// Options are the persistent flags passed to Bootstrap.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Services are the application ports the commands drive.
type Services struct {
	// Orchestrator runs validate, sync and incremental actions. Required.
	Orchestrator driving.SyncOrchestrator

	// Reports is the persisted run history. Optional.
	Reports driven.RunReportStore

	// Stats reports what the default sink holds. Optional.
	Stats driven.StatsProvider

	// Suppliers lists the configured supplier IDs.
	Suppliers []string

	// Close releases resources once the command finishes. Optional.
	Close func() error
}

// App connects the CLI to the composition root.
type App struct {
	// Bootstrap loads configuration and builds the services.
	Bootstrap func(ctx context.Context, opts Options) (*Services, error)

	// WriteSample writes the sample configuration to path.
	WriteSample func(path string, force bool) error
}

var (
	app      App
	services *Services
	opts     = Options{ConfigPath: DefaultConfigPath}
)

var rootCmd = &cobra.Command{
	Use:   "pim-etl",
	Short: "Product catalogue ETL pipeline",
	Long: `pim-etl extracts product data from supplier APIs and feeds, transforms it
into a unified product model and loads it into the product database.

Suppliers are configured in a TOML file (see create-config).`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", DefaultConfigPath, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
}

// SetApp sets the composition root hooks.
func SetApp(a App) {
	app = a
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if services != nil {
		// PostRun is skipped when RunE fails
		if closeErr := shutdown(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// bootstrap builds the services unless the command opts out.
func bootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)
	if cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}
	if services != nil {
		return nil
	}
	if app.Bootstrap == nil {
		return errors.New("application not configured")
	}

	s, err := app.Bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if s == nil || s.Orchestrator == nil {
		return errors.New("sync orchestrator not configured")
	}
	services = s
	return nil
}

func shutdown() error {
	if services == nil {
		return nil
	}
	s := services
	services = nil
	if s.Close == nil {
		return nil
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// annotationNoServices marks commands that run without Bootstrap.
const annotationNoServices = "pim-etl/no-services"
