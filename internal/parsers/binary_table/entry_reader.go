// Package binarytable reads and writes the fixed 32 byte record layout of an
// ESP partition table, including its MD5 checksum record.
package binarytable

import (
	"bytes"
	"encoding/binary"

	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

// EntryReader decodes a single partition entry record
type EntryReader struct {
	data   []byte
	offset int
}

// NewEntryReader creates a reader for the record that starts at offset.
// data must begin with the entry magic.
func NewEntryReader(data []byte, offset int) (*EntryReader, error) {
	if len(data) < types.EntrySize {
		return nil, binaryError(offset, "", types.ErrTruncated)
	}
	if !hasMagic(data, types.EntryMagic) {
		return nil, binaryError(offset, "magic", types.ErrBadMagic)
	}

	return &EntryReader{
		data:   data[:types.EntrySize],
		offset: offset,
	}, nil
}

// Type returns the raw type byte
func (er *EntryReader) Type() types.Type {
	return types.Type(er.data[types.EntryTypeOffset])
}

// SubType returns the subtype interpreted against the entry's type
func (er *EntryReader) SubType() types.SubType {
	return types.DecodeSubType(er.Type(), er.data[types.EntrySubTypeOffset])
}

// Offset returns the flash address of the partition
func (er *EntryReader) Offset() uint32 {
	return binary.LittleEndian.Uint32(er.data[types.EntryOffsetOffset : types.EntryOffsetOffset+4])
}

// Size returns the length of the partition in bytes
func (er *EntryReader) Size() uint32 {
	return binary.LittleEndian.Uint32(er.data[types.EntrySizeOffset : types.EntrySizeOffset+4])
}

// Name returns the name field up to the first NUL byte
func (er *EntryReader) Name() string {
	field := er.data[types.EntryNameOffset : types.EntryNameOffset+types.MaxNameLen]
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}

// Flags returns the attribute bits, including bits without a name
func (er *EntryReader) Flags() types.Flags {
	return types.Flags(binary.LittleEndian.Uint32(er.data[types.EntryFlagsOffset : types.EntryFlagsOffset+4]))
}

// RecordOffset returns the byte offset of the record within the table
func (er *EntryReader) RecordOffset() int {
	return er.offset
}

// Partition assembles the decoded fields. Binary entries always carry an offset.
func (er *EntryReader) Partition() types.Partition {
	return types.Partition{
		Name:      er.Name(),
		Type:      er.Type(),
		SubType:   er.SubType(),
		Offset:    er.Offset(),
		HasOffset: true,
		Size:      er.Size(),
		Flags:     er.Flags(),
	}
}

func hasMagic(record []byte, magic [2]byte) bool {
	return len(record) >= 2 && record[0] == magic[0] && record[1] == magic[1]
}

func isPadding(record []byte) bool {
	for _, b := range record {
		if b != types.PaddingByte {
			return false
		}
	}
	return true
}

func binaryError(offset int, field string, err error) *types.ParseError {
	return &types.ParseError{Format: "binary", Offset: offset, Field: field, Err: err}
}
