// Package types implements the data structures of the ESP partition table.
// The binary layout follows the format consumed by the ESP-IDF second stage
// bootloader and produced by gen_esp32part.py.
package types

// Partition Table Layout
// A partition table is a flat array of 32 byte records stored at a fixed flash
// offset. Entry records are followed by a checksum record and 0xFF padding.

// EntrySize is the size, in bytes, of every record in a binary partition table.
const EntrySize = 32

// EntryMagic identifies a partition entry record. Stored as the first two bytes
// of the record ("\xAA\x50").
var EntryMagic = [2]byte{0xAA, 0x50}

// ChecksumMagic identifies the checksum record that follows the last entry.
// The magic is followed by 14 bytes of 0xFF and a 16 byte MD5 digest.
var ChecksumMagic = [2]byte{0xEB, 0xEB}

// ChecksumPrefixSize is the size of the checksum record before the digest.
const ChecksumPrefixSize = 16

// ChecksumDigestSize is the size of the MD5 digest stored in the checksum record.
const ChecksumDigestSize = 16

// PaddingByte fills the unused space of a binary table. A record made entirely
// of padding bytes terminates the entry list.
const PaddingByte byte = 0xFF

// MaxNameLen is the width of the name field of an entry record.
const MaxNameLen = 16

// Offsets of the fields inside an entry record.
const (
	EntryMagicOffset   = 0
	EntryTypeOffset    = 2
	EntrySubTypeOffset = 3
	EntryOffsetOffset  = 4
	EntrySizeOffset    = 8
	EntryNameOffset    = 12
	EntryFlagsOffset   = 28
)

// DefaultMaxTableSize is the conventional maximum size of a binary table.
const DefaultMaxTableSize = 0x1000

// DefaultTableOffset is the flash address the bootloader reads the table from.
const DefaultTableOffset = 0x8000

// FlashSectorSize is the flash erase granularity. The table region is rounded up to it.
const FlashSectorSize = 0x1000

// Alignment requirements.
const (
	// AppAlignment is the offset alignment of application partitions (64 KiB).
	AppAlignment uint32 = 0x10000
	// DataAlignment is the offset alignment of data and custom partitions (4 KiB).
	DataAlignment uint32 = 0x1000
	// MinAlignment applies to every offset and size.
	MinAlignment uint32 = 0x4
)

// OTADataSize is the required size of the OTA metadata partition.
const OTADataSize uint32 = 0x2000

// MaxAppSize is the largest application image the bootloader can map (16 MiB).
const MaxAppSize uint32 = 0x1000000

// MaxOTASlots is the number of numbered OTA application slots.
const MaxOTASlots = 16

// MaxEntries returns how many entry records fit in a table of maxTableSize
// bytes, leaving room for the checksum record.
func MaxEntries(maxTableSize int) int {
	if maxTableSize < EntrySize {
		return 0
	}
	return maxTableSize/EntrySize - 1
}

// AlignUp rounds x up to the next multiple of a.
func AlignUp(x, a uint64) uint64 {
	if a == 0 {
		return x
	}
	r := x % a
	if r == 0 {
		return x
	}
	return x + (a - r)
}
