package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

var createConfigForce bool

var createConfigCmd = &cobra.Command{
	Use:   "create-config",
	Short: "Write a sample configuration file",
	Long: `Writes a sample configuration to the --config path. An existing file is
only replaced when --force is given.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoServices: "true"},
	RunE:        runCreateConfig,
}

func init() {
	createConfigCmd.Flags().BoolVarP(&createConfigForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(createConfigCmd)
}

func runCreateConfig(cmd *cobra.Command, _ []string) error {
	if app.WriteSample == nil {
		return errors.New("config writer not configured")
	}

	if err := app.WriteSample(opts.ConfigPath, createConfigForce); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("%s already exists, use --force to overwrite", opts.ConfigPath)
		}
		return fmt.Errorf("writing sample config: %w", err)
	}

	cmd.Printf("Sample configuration written to %s\n", opts.ConfigPath)
	cmd.Println("Set the supplier API keys before running sync.")
	return nil
}
