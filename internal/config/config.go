// Package config loads espart settings from a config file, ESPART_
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	texttable "github.com/deploymenttheory/go-esp-partition/internal/parsers/text_table"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "ESPART"

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config holds the settings shared by every command. Sizes and offsets are
// kept as strings so they accept the same notations as a partition csv.
type Config struct {
	FlashSize      string `mapstructure:"flash_size" yaml:"flash_size" json:"flash_size"`
	MaxTableSize   string `mapstructure:"max_table_size" yaml:"max_table_size" json:"max_table_size"`
	TableOffset    string `mapstructure:"table_offset" yaml:"table_offset" json:"table_offset"`
	ChecksumPolicy string `mapstructure:"checksum_policy" yaml:"checksum_policy" json:"checksum_policy"`
	CSVHeader      bool   `mapstructure:"csv_header" yaml:"csv_header" json:"csv_header"`
	OutputFormat   string `mapstructure:"output_format" yaml:"output_format" json:"output_format"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-" yaml:"-" json:"file,omitempty"`
}

// Load reads the configuration. When path is empty espart.yaml is searched
// for in the working directory, ./config, $HOME/.espart and /etc/espart; a
// missing file is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("espart")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.espart")
		v.AddConfigPath("/etc/espart")
	}

	// Set defaults
	v.SetDefault("flash_size", "")
	v.SetDefault("max_table_size", fmt.Sprintf("%#x", types.DefaultMaxTableSize))
	v.SetDefault("table_offset", fmt.Sprintf("%#x", types.DefaultTableOffset))
	v.SetDefault("checksum_policy", "strict")
	v.SetDefault("csv_header", true)
	v.SetDefault("output_format", OutputTable)

	// Allow environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
		found = false
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if found {
		config.File = v.ConfigFileUsed()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks that every setting can be interpreted
func (c *Config) Validate() error {
	if _, err := c.FlashSizeBytes(); err != nil {
		return err
	}
	if _, err := c.MaxTableSizeBytes(); err != nil {
		return err
	}
	if _, err := c.TableOffsetAddress(); err != nil {
		return err
	}
	if _, err := partitiontable.ParseChecksumPolicy(c.ChecksumPolicy); err != nil {
		return fmt.Errorf("checksum_policy: %w", err)
	}
	switch c.OutputFormat {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output_format: unsupported format %q (want table, json or yaml)", c.OutputFormat)
	}
	return nil
}

// FlashSizeBytes returns the flash size bound, or zero when none is set
func (c *Config) FlashSizeBytes() (uint64, error) {
	if strings.TrimSpace(c.FlashSize) == "" {
		return 0, nil
	}
	v, err := texttable.ParseNumber(strings.TrimSpace(c.FlashSize), 64)
	if err != nil {
		return 0, fmt.Errorf("flash_size %q: %w", c.FlashSize, err)
	}
	return v, nil
}

// MaxTableSizeBytes returns the space reserved for the binary table
func (c *Config) MaxTableSizeBytes() (int, error) {
	v, err := texttable.ParseNumber(strings.TrimSpace(c.MaxTableSize), 32)
	if err != nil {
		return 0, fmt.Errorf("max_table_size %q: %w", c.MaxTableSize, err)
	}
	if v < 2*types.EntrySize {
		return 0, fmt.Errorf("max_table_size %q: must hold at least one entry and the checksum record", c.MaxTableSize)
	}
	return int(v), nil
}

// TableOffsetAddress returns the flash address of the binary table
func (c *Config) TableOffsetAddress() (uint32, error) {
	v, err := texttable.ParseNumber(strings.TrimSpace(c.TableOffset), 32)
	if err != nil {
		return 0, fmt.Errorf("table_offset %q: %w", c.TableOffset, err)
	}
	return uint32(v), nil
}

// TableOptions converts the settings into partitiontable options
func (c *Config) TableOptions() ([]partitiontable.Option, error) {
	flashSize, err := c.FlashSizeBytes()
	if err != nil {
		return nil, err
	}
	maxTableSize, err := c.MaxTableSizeBytes()
	if err != nil {
		return nil, err
	}
	tableOffset, err := c.TableOffsetAddress()
	if err != nil {
		return nil, err
	}
	policy, err := partitiontable.ParseChecksumPolicy(c.ChecksumPolicy)
	if err != nil {
		return nil, err
	}

	return []partitiontable.Option{
		partitiontable.WithFlashSize(flashSize),
		partitiontable.WithMaxTableSize(maxTableSize),
		partitiontable.WithTableOffset(tableOffset),
		partitiontable.WithChecksumPolicy(policy),
		partitiontable.WithHeader(c.CSVHeader),
	}, nil
}
