package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

var (
	syncSuppliers        []string
	incrementalSuppliers []string
	incrementalSince     string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check supplier and sink connectivity",
	Long: `Checks every configured supplier: its configuration, that its extractor can
reach the supplier and that its loader can reach the sink. No data is moved.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a full extraction",
	Long: `Runs a full extract, transform and load for every configured supplier.
Use --supplier to restrict the run to specific suppliers.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var incrementalCmd = &cobra.Command{
	Use:   "incremental",
	Short: "Run an extraction of recent changes",
	Long: `Runs an extraction restricted to records modified at or after --since.

--since accepts RFC 3339 timestamps or dates (YYYY-MM-DD, UTC midnight).
Without --since the earliest last successful run of the targeted suppliers
is used. Suppliers that cannot extract incrementally fail.`,
	Args: cobra.NoArgs,
	RunE: runIncremental,
}

func init() {
	syncCmd.Flags().StringSliceVarP(&syncSuppliers, "supplier", "s", nil, "supplier ID to run (repeatable)")
	incrementalCmd.Flags().StringSliceVarP(&incrementalSuppliers, "supplier", "s", nil, "supplier ID to run (repeatable)")
	incrementalCmd.Flags().StringVar(&incrementalSince, "since", "", "start of the change window (RFC 3339 or YYYY-MM-DD)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(incrementalCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	report, err := services.Orchestrator.Validate(cmd.Context())
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	newRenderer(cmd.OutOrStdout()).validation(report)
	if !report.OK() {
		return fmt.Errorf("%w: validation failed", ErrRunNotSuccessful)
	}
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	targets := normaliseIDs(syncSuppliers)
	if len(targets) > 0 {
		cmd.Printf("Synchronising %s...\n", strings.Join(targets, ", "))
	} else {
		cmd.Println("Synchronising all suppliers...")
	}

	report, err := services.Orchestrator.Sync(cmd.Context(), targets)
	return finishRun(cmd, report, err)
}

func runIncremental(cmd *cobra.Command, _ []string) error {
	targets := normaliseIDs(incrementalSuppliers)

	var since time.Time
	var err error
	if incrementalSince != "" {
		since, err = parseSince(incrementalSince)
	} else {
		since, err = defaultSince(cmd, targets)
	}
	if err != nil {
		return err
	}

	cmd.Printf("Synchronising changes since %s...\n", since.Format(time.RFC3339))
	report, err := services.Orchestrator.Incremental(cmd.Context(), since, targets)
	return finishRun(cmd, report, err)
}

// finishRun prints the report and maps the outcome to the command error.
func finishRun(cmd *cobra.Command, report *domain.RunReport, err error) error {
	if report != nil {
		newRenderer(cmd.OutOrStdout()).report(report)
	}
	if err != nil {
		return err
	}
	if report == nil {
		return errors.New("no run report returned")
	}
	if !report.Succeeded() {
		return fmt.Errorf("%w: run %s finished %s", ErrRunNotSuccessful, report.ID, report.Status)
	}
	return nil
}

// parseSince accepts RFC 3339 timestamps and plain dates.
func parseSince(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: --since %q: expected RFC 3339 or YYYY-MM-DD", domain.ErrInvalidInput, s)
}

// defaultSince returns the earliest last success across targets. Every
// target must have one, otherwise records could be missed.
func defaultSince(cmd *cobra.Command, targets []string) (time.Time, error) {
	if services.Reports == nil {
		return time.Time{}, fmt.Errorf("%w: no run history available, pass --since", domain.ErrInvalidInput)
	}
	if len(targets) == 0 {
		targets = services.Suppliers
	}
	if len(targets) == 0 {
		return time.Time{}, fmt.Errorf("%w: no suppliers configured", domain.ErrConfig)
	}

	var earliest time.Time
	for _, id := range targets {
		t, err := services.Reports.LastSuccess(cmd.Context(), id)
		if errors.Is(err, domain.ErrNotFound) {
			return time.Time{}, fmt.Errorf("%w: supplier %s has no successful run, pass --since", domain.ErrInvalidInput, id)
		}
		if err != nil {
			return time.Time{}, fmt.Errorf("reading run history: %w", err)
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest, nil
}

func normaliseIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
