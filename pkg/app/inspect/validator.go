package inspect

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-esp-partition/pkg/app"
	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

// Input formats
const (
	FormatAuto   = "auto"
	FormatCSV    = "csv"
	FormatBinary = "bin"
)

// Validate validates an inspection request
func (r *Request) Validate() error {
	// Input path is required
	if r.InputPath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "input path is required", nil)
	}

	switch r.Format {
	case "":
		r.Format = FormatAuto
	case FormatAuto, FormatCSV, FormatBinary:
	default:
		return app.NewError(app.ErrCodeInvalidInput, "format must be auto, csv or bin", nil)
	}
	if r.Image != nil && r.Format == FormatCSV {
		return app.NewError(app.ErrCodeInvalidInput, "flash images hold binary tables only", nil)
	}

	if r.Type != "" {
		if _, err := parseTypeFilter(r.Type); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid type filter", err)
		}
	}
	if r.SubType != "" {
		if r.Type == "" {
			return app.NewError(app.ErrCodeInvalidInput, "a subtype filter requires a type filter", nil)
		}
		ty, _ := parseTypeFilter(r.Type)
		if _, err := parseSubTypeFilter(ty, r.SubType); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid subtype filter", err)
		}
	}

	return nil
}

// parseTypeFilter and parseSubTypeFilter reuse the csv parser so filters
// accept exactly what a table row accepts
func parseTypeFilter(s string) (partitiontable.Type, error) {
	p, err := filterRow(s, "0")
	if err != nil {
		return 0, err
	}
	return p.Type, nil
}

func parseSubTypeFilter(ty partitiontable.Type, s string) (partitiontable.SubType, error) {
	p, err := filterRow(ty.String(), s)
	if err != nil {
		return partitiontable.SubType{}, err
	}
	if !p.SubType.ValidFor(ty) {
		return partitiontable.SubType{}, fmt.Errorf("%w: %s is not a %s subtype", partitiontable.ErrInvalidSubType, s, ty)
	}
	return p.SubType, nil
}

func filterRow(ty, subtype string) (partitiontable.Partition, error) {
	row := strings.Join([]string{"filter", ty, subtype, "", "4"}, ",")
	table, err := partitiontable.ParseCSV([]byte(row))
	if err != nil {
		return partitiontable.Partition{}, err
	}
	return table.Partitions()[0], nil
}
