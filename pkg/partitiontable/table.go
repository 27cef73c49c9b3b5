package partitiontable

import (
	"bytes"
	"fmt"

	binarytable "github.com/deploymenttheory/go-esp-partition/internal/parsers/binary_table"
	texttable "github.com/deploymenttheory/go-esp-partition/internal/parsers/text_table"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

// Format identifies an encoding of a partition table
type Format int

const (
	// FormatCSV is the comma separated, human editable form
	FormatCSV Format = iota
	// FormatBinary is the 32 byte record form read by the bootloader
	FormatBinary
)

func (f Format) String() string {
	if f == FormatBinary {
		return "binary"
	}
	return "csv"
}

// Table is an ordered partition table. A Table is a value: methods that
// change it return a new Table.
type Table struct {
	table     types.Table
	validated bool
	checksum  ChecksumStatus
}

// New builds a candidate table from partitions, in order
func New(parts ...Partition) *Table {
	t := types.Table{Partitions: make([]Partition, len(parts))}
	copy(t.Partitions, parts)
	return &Table{table: t}
}

// ParseCSV parses the comma separated form into a candidate table
func ParseCSV(data []byte) (*Table, error) {
	t, err := texttable.NewTableReader().Decode(data)
	if err != nil {
		return nil, err
	}
	return &Table{table: t}, nil
}

// DecodeBinary decodes the binary form into a candidate table. The checksum
// record is verified according to WithChecksumPolicy.
func DecodeBinary(data []byte, opts ...Option) (*Table, error) {
	o := newOptions(opts)
	result, err := binarytable.NewTableReader(o.policy).Read(data)
	if err != nil {
		return nil, err
	}
	return &Table{table: result.Table, checksum: result.Checksum}, nil
}

// FromCSV parses and validates the comma separated form
func FromCSV(data []byte, opts ...Option) (*Table, error) {
	t, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}
	return t.Validate(opts...)
}

// FromBinary decodes and validates the binary form
func FromBinary(data []byte, opts ...Option) (*Table, error) {
	t, err := DecodeBinary(data, opts...)
	if err != nil {
		return nil, err
	}
	return t.Validate(opts...)
}

// Detect guesses the encoding of data. Input starting with an entry or
// checksum record magic is binary; anything else is treated as CSV.
func Detect(data []byte) Format {
	if bytes.HasPrefix(data, types.EntryMagic[:]) || bytes.HasPrefix(data, types.ChecksumMagic[:]) {
		return FormatBinary
	}
	return FormatCSV
}

// Parse detects the encoding of data, then decodes and validates it
func Parse(data []byte, opts ...Option) (*Table, error) {
	if Detect(data) == FormatBinary {
		return FromBinary(data, opts...)
	}
	return FromCSV(data, opts...)
}

// Append returns a new candidate table with p added at the end
func (t *Table) Append(p Partition) *Table {
	next := t.table.Clone()
	next.Partitions = append(next.Partitions, p)
	return &Table{table: next, checksum: t.checksum}
}

// Validate places unplaced partitions and checks every layout rule. It
// returns a new, validated table, or the first violation found.
func (t *Table) Validate(opts ...Option) (*Table, error) {
	placed, err := newOptions(opts).validator().Validate(t.table)
	if err != nil {
		return nil, err
	}
	return &Table{table: placed, validated: true, checksum: t.checksum}, nil
}

// Violations returns every rule the table breaks, in rule order
func (t *Table) Violations(opts ...Option) []*ValidationError {
	return newOptions(opts).validator().Violations(t.table)
}

// CSV renders a validated table in the comma separated form
func (t *Table) CSV(opts ...Option) ([]byte, error) {
	if !t.validated {
		return nil, ErrNotValidated
	}
	o := newOptions(opts)
	return texttable.NewTableWriter(texttable.WithHeader(o.header)).Encode(t.table)
}

// Binary encodes a validated table, padded to the maximum table size
func (t *Table) Binary(opts ...Option) ([]byte, error) {
	if !t.validated {
		return nil, ErrNotValidated
	}
	o := newOptions(opts)
	data, err := binarytable.NewTableWriter(o.maxTableSize).Encode(t.table)
	if err != nil {
		return nil, fmt.Errorf("failed to encode partition table: %w", err)
	}
	return data, nil
}

// Find returns the partition with the given name
func (t *Table) Find(name string) (Partition, bool) {
	return t.table.Find(name)
}

// FindByType returns the first partition of type ty
func (t *Table) FindByType(ty Type) (Partition, bool) {
	return t.table.FindByType(ty)
}

// FindBySubType returns the first partition of type ty and subtype st
func (t *Table) FindBySubType(ty Type, st SubType) (Partition, bool) {
	return t.table.FindBySubType(ty, st)
}

// FilterByType returns every partition of type ty, in table order
func (t *Table) FilterByType(ty Type) []Partition {
	return t.table.Filter(func(p Partition) bool { return p.Type == ty })
}

// Partitions returns a copy of the partitions in table order
func (t *Table) Partitions() []Partition {
	return t.table.Clone().Partitions
}

// Len returns the number of partitions
func (t *Table) Len() int {
	return len(t.table.Partitions)
}

// Validated reports whether the table passed validation
func (t *Table) Validated() bool {
	return t.validated
}

// ChecksumStatus reports what binary decoding found in the checksum record.
// Tables not decoded from binary report ChecksumNotChecked.
func (t *Table) ChecksumStatus() ChecksumStatus {
	return t.checksum
}
