package binarytable

import (
	"crypto/md5"

	"github.com/deploymenttheory/go-esp-partition/internal/interfaces"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

var _ interfaces.ChecksumVerifier = (*ChecksumInspector)(nil)

// ChecksumInspector compares the digest stored in a checksum record with the
// MD5 digest of the entry records that precede it
type ChecksumInspector struct {
	Entries []byte // raw entry records, in table order
	Record  []byte // the 32 byte checksum record
}

// NewChecksumInspector creates a ChecksumInspector
func NewChecksumInspector(entries, record []byte) *ChecksumInspector {
	return &ChecksumInspector{Entries: entries, Record: record}
}

// Checksum returns the digest stored in the record
func (c *ChecksumInspector) Checksum() [types.ChecksumDigestSize]byte {
	var digest [types.ChecksumDigestSize]byte
	copy(digest[:], c.Record[types.ChecksumPrefixSize:types.EntrySize])
	return digest
}

// Computed returns the digest of the entry records
func (c *ChecksumInspector) Computed() [types.ChecksumDigestSize]byte {
	return md5.Sum(c.Entries)
}

// VerifyChecksum reports whether the stored digest matches the entries
func (c *ChecksumInspector) VerifyChecksum() bool {
	return c.Checksum() == c.Computed()
}

// Err returns a *types.ChecksumError describing a mismatch, or nil
func (c *ChecksumInspector) Err() error {
	stored, computed := c.Checksum(), c.Computed()
	if stored == computed {
		return nil
	}
	return &types.ChecksumError{Expected: stored, Computed: computed}
}

// ChecksumRecord builds the checksum record for the given entry records:
// the magic, 0xFF filler and the MD5 digest.
func ChecksumRecord(entries []byte) []byte {
	record := make([]byte, types.EntrySize)
	for i := range record[:types.ChecksumPrefixSize] {
		record[i] = types.PaddingByte
	}
	copy(record, types.ChecksumMagic[:])
	digest := md5.Sum(entries)
	copy(record[types.ChecksumPrefixSize:], digest[:])
	return record
}
