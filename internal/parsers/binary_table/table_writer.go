package binarytable

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-esp-partition/internal/interfaces"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

var _ interfaces.TableEncoder = (*TableWriter)(nil)

// TableWriter encodes placed partition tables into their binary form
type TableWriter struct {
	maxTableSize int
}

// NewTableWriter creates a TableWriter that pads its output to maxTableSize.
// A non-positive size selects types.DefaultMaxTableSize.
func NewTableWriter(maxTableSize int) *TableWriter {
	if maxTableSize <= 0 {
		maxTableSize = types.DefaultMaxTableSize
	}
	return &TableWriter{maxTableSize: maxTableSize}
}

// MaxTableSize returns the size every encoded table is padded to
func (tw *TableWriter) MaxTableSize() int {
	return tw.maxTableSize
}

// Encode writes the entry records, the checksum record and 0xFF padding.
// Every partition must have a resolved offset.
func (tw *TableWriter) Encode(table types.Table) ([]byte, error) {
	if size := table.EncodedSize(); size > tw.maxTableSize {
		return nil, types.NewValidationError(types.ErrTableTooLarge,
			fmt.Sprintf("%d entries need %#x bytes, maximum is %#x", len(table.Partitions), size, tw.maxTableSize))
	}

	buf := bytes.Repeat([]byte{types.PaddingByte}, tw.maxTableSize)
	for i, p := range table.Partitions {
		off := i * types.EntrySize
		if err := putEntry(buf[off:off+types.EntrySize], p); err != nil {
			return nil, fmt.Errorf("failed to encode partition %d (%q): %w", i, p.Name, err)
		}
	}

	entriesLen := len(table.Partitions) * types.EntrySize
	copy(buf[entriesLen:], ChecksumRecord(buf[:entriesLen]))

	return buf, nil
}

// putEntry fills a 32 byte record from p
func putEntry(record []byte, p types.Partition) error {
	if !p.HasOffset {
		return types.ErrNotValidated
	}
	if err := types.CheckName(p.Name); err != nil {
		return err
	}

	copy(record, types.EntryMagic[:])
	record[types.EntryTypeOffset] = byte(p.Type)
	record[types.EntrySubTypeOffset] = p.SubType.Value
	binary.LittleEndian.PutUint32(record[types.EntryOffsetOffset:], p.Offset)
	binary.LittleEndian.PutUint32(record[types.EntrySizeOffset:], p.Size)

	name := record[types.EntryNameOffset : types.EntryNameOffset+types.MaxNameLen]
	clear(name)
	copy(name, p.Name)

	binary.LittleEndian.PutUint32(record[types.EntryFlagsOffset:], uint32(p.Flags))
	return nil
}
