package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-esp-partition/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the settings commands run with, after the config file, ESPART_
environment variables and command line flags are applied.

Examples:
  # Show the settings as YAML
  espart config

  # Check which flash size a CI job validates against
  ESPART_FLASH_SIZE=4M espart config -o json`,

	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig() error {
	ctx := newContext()

	if ctx.OutputFormat == config.OutputJSON {
		encoder := json.NewEncoder(ctx.Out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	}

	if cfg.File != "" {
		fmt.Fprintf(ctx.Out, "# loaded from %s\n", cfg.File)
	} else {
		fmt.Fprintln(ctx.Out, "# no config file found, using defaults")
	}
	encoder := yaml.NewEncoder(ctx.Out)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(cfg)
}
