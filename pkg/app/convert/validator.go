package convert

import (
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-esp-partition/pkg/app"
)

// Validate validates a conversion request
func (r *Request) Validate() error {
	if r.InputPath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "input path is required", nil)
	}

	if r.To == "" || r.To == FormatAuto {
		r.To = formatFromExtension(r.OutputPath)
	}
	switch r.To {
	case FormatAuto, FormatCSV, FormatBinary:
	default:
		return app.NewError(app.ErrCodeInvalidInput, "output format must be auto, csv or bin", nil)
	}

	if r.OutputPath != "" && filepath.Clean(r.OutputPath) == filepath.Clean(r.InputPath) {
		return app.NewError(app.ErrCodeInvalidInput, "output path must differ from input path", nil)
	}
	return nil
}

// formatFromExtension picks the output format named by a file extension
func formatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".bin":
		return FormatBinary
	}
	return FormatAuto
}
