package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-esp-partition/pkg/app"
	"github.com/deploymenttheory/go-esp-partition/pkg/app/inspect"
)

var validateFormat string

var validateCmd = &cobra.Command{
	Use:   "validate [table]",
	Short: "Check a partition table against the layout rules",
	Long: `Parse a partition table and report every rule it breaks.

The command exits with a non-zero status when the table is invalid.

Examples:
  # Validate a csv table
  espart validate partitions.csv

  # Validate against a 4 MiB flash chip
  espart validate partitions.csv --flash-size 4M

  # Validate a binary table read back from a device
  espart validate partitions.bin --checksum lenient`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", inspect.FormatAuto, "input format (auto, csv, bin)")
}

func runValidate(path string) error {
	ctx := newContext()

	opts, err := tableOptions()
	if err != nil {
		return err
	}
	image, err := imageConfig()
	if err != nil {
		return err
	}

	response, err := inspect.Handle(ctx, &inspect.Request{
		InputPath:    path,
		Format:       validateFormat,
		Image:        image,
		TableOptions: opts,
	})
	if err != nil {
		return err
	}

	if !ctx.Quiet {
		if err := inspect.FormatOutput(ctx.Out, response, ctx.OutputFormat); err != nil {
			return err
		}
	}

	if !response.Layout.Valid {
		return app.NewError(app.ErrCodeValidationFailed,
			fmt.Sprintf("%s is not a valid partition table (%d violations)", path, len(response.Violations)), nil)
	}
	return nil
}
