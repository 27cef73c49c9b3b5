package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-esp-partition/internal/config"
	"github.com/deploymenttheory/go-esp-partition/internal/device"
	"github.com/deploymenttheory/go-esp-partition/pkg/app"
	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

var (
	// Global output flags
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string

	// Table settings; unset flags fall back to the config file
	flashSize      string
	maxTableSize   string
	tableOffset    string
	checksumPolicy string
	flashImage     bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "espart",
	Short: "ESP-IDF partition table tool",
	Long: `espart reads, validates and converts ESP-IDF partition tables.

Tables are accepted in the csv form used in projects and in the 32 byte
record binary form flashed next to the bootloader. The format of an input
file is detected from its content.

Commands:
  validate    Check a table against the layout rules
  list        List the partitions of a table
  find        Find partitions by name, type or subtype
  convert     Convert between csv and binary
  config      Show the effective configuration`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "failed to load configuration", err)
		}
		applyFlagOverrides(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid settings", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code := app.ErrorCode(err); code != "" {
			fmt.Fprintf(os.Stderr, "Code: %s\n", code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", config.OutputTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: espart.yaml in ., ./config, $HOME/.espart or /etc/espart)")

	rootCmd.PersistentFlags().StringVar(&flashSize, "flash-size", "", "flash size partitions must fit in (4M, 0x400000)")
	rootCmd.PersistentFlags().StringVar(&maxTableSize, "max-table-size", "", "space reserved for the binary table (default 0x1000)")
	rootCmd.PersistentFlags().StringVar(&tableOffset, "table-offset", "", "flash address of the binary table (default 0x8000)")
	rootCmd.PersistentFlags().StringVar(&checksumPolicy, "checksum", "", "binary checksum policy (strict, lenient)")
	rootCmd.PersistentFlags().BoolVar(&flashImage, "image", false, "read the table out of a whole flash image")
}

// applyFlagOverrides copies explicitly set flags over the loaded config
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		c.OutputFormat = outputFormat
	}
	if flags.Changed("flash-size") {
		c.FlashSize = flashSize
	}
	if flags.Changed("max-table-size") {
		c.MaxTableSize = maxTableSize
	}
	if flags.Changed("table-offset") {
		c.TableOffset = tableOffset
	}
	if flags.Changed("checksum") {
		c.ChecksumPolicy = checksumPolicy
	}
}

// newContext builds the application context for a command
func newContext() *app.Context {
	ctx := app.NewContext()
	ctx.OutputFormat = cfg.OutputFormat
	ctx.Verbose = verbose
	ctx.Quiet = quiet
	ctx.Logger = app.NewLogger(os.Stderr, verbose, quiet)
	return ctx
}

// tableOptions returns the partitiontable options of the effective config
func tableOptions() ([]partitiontable.Option, error) {
	opts, err := cfg.TableOptions()
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "invalid table settings", err)
	}
	return opts, nil
}

// imageConfig locates the table in a flash image when --image is set
func imageConfig() (*device.ImageConfig, error) {
	if !flashImage {
		return nil, nil
	}
	offset, err := cfg.TableOffsetAddress()
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "invalid table offset", err)
	}
	size, err := cfg.MaxTableSizeBytes()
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "invalid table size", err)
	}
	return &device.ImageConfig{TableOffset: offset, MaxTableSize: size, AutoDetect: true}, nil
}
