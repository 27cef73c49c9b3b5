package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-esp-partition/pkg/app/convert"
)

var (
	convertTo     string
	convertHeader bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert a partition table between csv and binary",
	Long: `Validate a partition table and write it in the other format.

Without an output path the converted table is written to stdout. The
output format follows --to, then the output file extension, then the
opposite of the input format.

Examples:
  # Build the binary table of a project
  espart convert partitions.csv build/partitions.bin

  # Dump a binary table as csv
  espart convert partitions.bin --to csv

  # Fill the placed offsets into a csv table
  espart convert partitions.csv placed.csv`,

	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		output := ""
		if len(args) == 2 {
			output = args[1]
		}
		header := cfg.CSVHeader
		if cmd.Flags().Changed("header") {
			header = convertHeader
		}
		return runConvert(args[0], output, header)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&convertTo, "to", convert.FormatAuto, "output format (auto, csv, bin)")
	convertCmd.Flags().BoolVar(&convertHeader, "header", true, "start csv output with column comments")
}

func runConvert(input, output string, header bool) error {
	ctx := newContext()

	opts, err := tableOptions()
	if err != nil {
		return err
	}
	image, err := imageConfig()
	if err != nil {
		return err
	}

	response, err := convert.Handle(ctx, &convert.Request{
		InputPath:    input,
		OutputPath:   output,
		To:           convertTo,
		Image:        image,
		Header:       header,
		TableOptions: opts,
	})
	if err != nil {
		return err
	}

	if response.OutputPath == "" {
		_, err := ctx.Out.Write(response.Data)
		return err
	}

	if !ctx.Quiet {
		fmt.Fprintf(ctx.Out, "Wrote %d partitions to %s (%s, %d bytes)\n",
			response.Entries, response.OutputPath, response.OutputFormat, response.BytesWritten)
	}
	return nil
}
