package texttable

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/deploymenttheory/go-esp-partition/internal/interfaces"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

var _ interfaces.TableDecoder = (*TableReader)(nil)

// Column names, used in parse errors and the header row
const (
	FieldName    = "name"
	FieldType    = "type"
	FieldSubType = "subtype"
	FieldOffset  = "offset"
	FieldSize    = "size"
	FieldFlags   = "flags"
)

// utf8BOM is skipped when it starts the input, as written by some editors
var utf8BOM = []byte("\xef\xbb\xbf")

const (
	minFields    = 5
	maxFields    = 6
	commentStart = "#"
)

// TableReader parses the comma separated form of a partition table
type TableReader struct {
	fold cases.Caser
}

// NewTableReader creates a TableReader. A TableReader is not safe for
// concurrent use.
func NewTableReader() *TableReader {
	return &TableReader{fold: cases.Fold()}
}

// Decode parses every row of data into a candidate table. Rows without an
// offset are left unplaced.
func (tr *TableReader) Decode(data []byte) (types.Table, error) {
	var table types.Table

	scanner := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	lineNo := 0
	seenRow := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentStart) {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if !seenRow {
			seenRow = true
			if tr.isHeader(fields) {
				continue
			}
		}

		p, err := tr.parseRow(fields)
		if err != nil {
			err.Line = lineNo
			return types.Table{}, err
		}
		table.Partitions = append(table.Partitions, p)
	}
	if err := scanner.Err(); err != nil {
		return types.Table{}, fmt.Errorf("failed to read partition table: %w", err)
	}

	return table, nil
}

func (tr *TableReader) isHeader(fields []string) bool {
	return len(fields) >= 2 &&
		tr.fold.String(fields[0]) == FieldName &&
		tr.fold.String(fields[1]) == FieldType
}

// parseRow converts the trimmed fields of one row. The returned error has no
// line number yet.
func (tr *TableReader) parseRow(fields []string) (types.Partition, *types.ParseError) {
	if len(fields) < minFields || len(fields) > maxFields {
		return types.Partition{}, &types.ParseError{
			Format: "csv",
			Err:    fmt.Errorf("%w: got %d, want %d or %d", types.ErrFieldCount, len(fields), minFields, maxFields),
		}
	}

	fieldErr := func(field string, err error) *types.ParseError {
		return &types.ParseError{Format: "csv", Field: field, Err: err}
	}

	p := types.Partition{Name: fields[0]}
	if err := types.CheckName(p.Name); err != nil {
		return p, fieldErr(FieldName, err)
	}

	var err error
	if p.Type, err = tr.parseType(fields[1]); err != nil {
		return p, fieldErr(FieldType, err)
	}
	if p.SubType, err = tr.parseSubType(p.Type, fields[2]); err != nil {
		return p, fieldErr(FieldSubType, err)
	}

	if fields[3] != "" {
		offset, err := ParseNumber(fields[3], 32)
		if err != nil {
			return p, fieldErr(FieldOffset, err)
		}
		p.Offset = uint32(offset)
		p.HasOffset = true
	}

	if fields[4] == "" {
		return p, fieldErr(FieldSize, types.ErrMissingSize)
	}
	size, err := ParseNumber(fields[4], 32)
	if err != nil {
		return p, fieldErr(FieldSize, err)
	}
	p.Size = uint32(size)

	if len(fields) == maxFields {
		if p.Flags, err = tr.parseFlags(fields[5]); err != nil {
			return p, fieldErr(FieldFlags, err)
		}
	}

	return p, nil
}

func (tr *TableReader) parseType(s string) (types.Type, error) {
	switch tr.fold.String(s) {
	case "app":
		return types.TypeApp, nil
	case "data":
		return types.TypeData, nil
	}

	v, err := ParseNumber(s, 8)
	if errors.Is(err, types.ErrInvalidNumber) {
		return 0, fmt.Errorf("%w %q", types.ErrUnknownType, s)
	} else if err != nil {
		return 0, err
	}

	ty := types.Type(v)
	if ty.IsReserved() {
		return 0, fmt.Errorf("%w: %s", types.ErrReservedType, ty)
	}
	return ty, nil
}

// parseSubType resolves a subtype name or byte. A name from the other
// family is accepted here and rejected during validation.
func (tr *TableReader) parseSubType(ty types.Type, s string) (types.SubType, error) {
	if s == "" && ty.IsCustom() {
		return types.RawSubType(0), nil
	}

	if st, ok := types.LookupSubType(tr.fold.String(s)); ok {
		return st, nil
	}

	v, err := ParseNumber(s, 8)
	if errors.Is(err, types.ErrInvalidNumber) {
		return types.SubType{}, fmt.Errorf("%w %q", types.ErrUnknownSubType, s)
	} else if err != nil {
		return types.SubType{}, err
	}

	st := types.DecodeSubType(ty, uint8(v))
	if !ty.IsCustom() && !st.IsNamed() {
		return types.SubType{}, fmt.Errorf("%w: 0x%02x is not a known %s subtype", types.ErrUnknownSubType, v, ty)
	}
	return st, nil
}

func (tr *TableReader) parseFlags(s string) (types.Flags, error) {
	var flags types.Flags
	if s == "" {
		return flags, nil
	}

	for _, part := range strings.Split(s, ":") {
		part = strings.TrimSpace(part)
		if f, ok := types.LookupFlag(tr.fold.String(part)); ok {
			flags |= f
			continue
		}
		v, err := ParseNumber(part, 32)
		if err != nil {
			return 0, fmt.Errorf("%w %q", types.ErrUnknownFlag, part)
		}
		flags |= types.Flags(v)
	}
	return flags, nil
}
