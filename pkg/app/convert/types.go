package convert

import (
	"github.com/deploymenttheory/go-esp-partition/internal/device"
	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

// Output formats
const (
	FormatAuto   = "auto"
	FormatCSV    = "csv"
	FormatBinary = "bin"
)

// Request represents a table conversion request
type Request struct {
	InputPath string
	// OutputPath is where the converted table is written; empty means the
	// caller's output writer
	OutputPath string
	// To is "auto", "csv" or "bin". Auto converts to the other format.
	To string
	// Header adds column comments to CSV output
	Header bool
	// TableOptions are passed to parsing, validation and encoding
	TableOptions []partitiontable.Option
	// Image, when set, reads the table out of a whole flash image
	Image *device.ImageConfig
}

// Response represents a conversion result
type Response struct {
	InputFormat  string `json:"input_format" yaml:"input_format"`
	OutputFormat string `json:"output_format" yaml:"output_format"`
	OutputPath   string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Entries      int    `json:"entries" yaml:"entries"`
	BytesWritten int    `json:"bytes_written" yaml:"bytes_written"`
	// Data holds the encoded table when no output path was given
	Data []byte `json:"-" yaml:"-"`
}
