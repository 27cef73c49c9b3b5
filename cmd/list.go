package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-esp-partition/pkg/app/inspect"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list [table]",
	Short: "List the partitions of a table",
	Long: `List every partition of a table with its placed offset.

Partitions without an explicit offset are shown where auto-placement puts
them, provided the table is valid.

Examples:
  # List a csv table
  espart list partitions.csv

  # List a binary table as JSON
  espart list build/partition_table/partition-table.bin -o json`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", inspect.FormatAuto, "input format (auto, csv, bin)")
}

func runList(path string) error {
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
		Format:       listFormat,
		Image:        image,
		TableOptions: opts,
	})
	if err != nil {
		return err
	}

	return inspect.FormatOutput(ctx.Out, response, ctx.OutputFormat)
}
