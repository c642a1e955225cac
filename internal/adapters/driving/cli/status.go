package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

var statusHistory int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last run and sink contents",
	Long: `Shows the most recent run report. A run completed by this process is shown
first; otherwise the latest persisted report is read from the state database.

Use --history to list earlier runs.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusHistory, "history", 0, "number of earlier runs to list")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	r := newRenderer(cmd.OutOrStdout())

	cmd.Printf("Orchestrator: %s\n", services.Orchestrator.State())

	report, err := latestReport(cmd)
	if err != nil {
		return err
	}
	if report == nil {
		cmd.Println("No runs recorded.")
	} else {
		r.report(report)
	}

	if statusHistory < 0 {
		return fmt.Errorf("%w: --history must not be negative", domain.ErrInvalidInput)
	}
	if statusHistory > 0 && services.Reports != nil {
		reports, err := services.Reports.List(ctx, statusHistory)
		if err != nil {
			return fmt.Errorf("listing run history: %w", err)
		}
		r.history(reports)
	}

	if services.Stats != nil {
		stats, err := services.Stats.Stats(ctx)
		if err != nil {
			// The sink may be offline; the report is still useful
			logger.Warn("Sink statistics unavailable: %v", err)
			return nil
		}
		r.stats(stats)
	}
	return nil
}

// latestReport prefers the in-process report over the persisted one.
func latestReport(cmd *cobra.Command) (*domain.RunReport, error) {
	report, err := services.Orchestrator.Status(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if report != nil || services.Reports == nil {
		return report, nil
	}

	report, err = services.Reports.Latest(cmd.Context())
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest run: %w", err)
	}
	return report, nil
}
