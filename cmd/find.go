package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-esp-partition/pkg/app"
	"github.com/deploymenttheory/go-esp-partition/pkg/app/inspect"
)

var (
	// Partition matching criteria
	findName    string
	findType    string
	findSubType string
	findFormat  string
)

var findCmd = &cobra.Command{
	Use:   "find [table]",
	Short: "Find partitions by name, type or subtype",
	Long: `Search a partition table. Types and subtypes accept the same names
and numbers as the csv form.

Examples:
  # Find the nvs partition
  espart find partitions.csv --name nvs

  # Find every app partition
  espart find partitions.csv --type app

  # Find a custom partition type by number
  espart find partitions.bin --type 0x40 --subtype 0x01`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFind(args[0])
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringVarP(&findName, "name", "n", "", "partition name")
	findCmd.Flags().StringVarP(&findType, "type", "t", "", "partition type (app, data or a number)")
	findCmd.Flags().StringVarP(&findSubType, "subtype", "s", "", "partition subtype (requires --type)")
	findCmd.Flags().StringVarP(&findFormat, "format", "f", inspect.FormatAuto, "input format (auto, csv, bin)")
}

func runFind(path string) error {
	ctx := newContext()

	opts, err := tableOptions()
	if err != nil {
		return err
	}
	image, err := imageConfig()
	if err != nil {
		return err
	}

	request := &inspect.Request{
		InputPath:    path,
		Format:       findFormat,
		Image:        image,
		TableOptions: opts,
		Name:         findName,
		Type:         findType,
		SubType:      findSubType,
	}
	if (inspect.SearchQuery{Name: findName, Type: findType, SubType: findSubType}).IsEmpty() {
		return app.NewError(app.ErrCodeInvalidInput, "at least one of --name, --type or --subtype is required", nil)
	}

	response, err := inspect.Handle(ctx, request)
	if err != nil {
		return err
	}

	if err := inspect.FormatOutput(ctx.Out, response, ctx.OutputFormat); err != nil {
		return err
	}
	if response.TotalFound == 0 {
		return app.NewError(app.ErrCodeNotFound, fmt.Sprintf("no partition in %s matches the query", path), nil)
	}
	return nil
}
