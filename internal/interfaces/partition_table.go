package interfaces

import (
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

// TableDecoder turns an encoded partition table into a candidate table
type TableDecoder interface {
	// Decode parses data. The result has not been validated.
	Decode(data []byte) (types.Table, error)
}

// TableEncoder turns a validated partition table into its encoded form
type TableEncoder interface {
	// Encode serializes the table. Offsets must already be resolved.
	Encode(table types.Table) ([]byte, error)
}

// ChecksumVerifier provides methods for verifying the integrity of a binary table
type ChecksumVerifier interface {
	// Checksum returns the digest stored in the checksum record
	Checksum() [types.ChecksumDigestSize]byte

	// Computed returns the digest of the entry records
	Computed() [types.ChecksumDigestSize]byte

	// VerifyChecksum reports whether the stored and computed digests match
	VerifyChecksum() bool
}

// TablePlacer assigns offsets to partitions that were declared without one
type TablePlacer interface {
	// Place returns a copy of table in which every partition has an offset
	Place(table types.Table) types.Table
}

// TableValidator checks a table against the partition table rules
type TableValidator interface {
	// Violations returns every rule violation, in rule order
	Violations(table types.Table) []*types.ValidationError

	// Validate places the table and returns the placed table, or the first violation
	Validate(table types.Table) (types.Table, error)
}
