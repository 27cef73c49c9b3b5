package binarytable

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-esp-partition/internal/interfaces"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

var _ interfaces.TableDecoder = (*TableReader)(nil)

// ChecksumPolicy controls how the decoder reacts to a bad or missing checksum record
type ChecksumPolicy int

const (
	// ChecksumStrict fails decoding on a mismatched or missing checksum
	ChecksumStrict ChecksumPolicy = iota
	// ChecksumLenient decodes anyway and reports the outcome as a ChecksumStatus
	ChecksumLenient
)

func (p ChecksumPolicy) String() string {
	if p == ChecksumLenient {
		return "lenient"
	}
	return "strict"
}

// ParseChecksumPolicy converts "strict" or "lenient" to a ChecksumPolicy
func ParseChecksumPolicy(s string) (ChecksumPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ChecksumStrict, nil
	case "lenient":
		return ChecksumLenient, nil
	}
	return ChecksumStrict, fmt.Errorf("unknown checksum policy %q (want strict or lenient)", s)
}

// ChecksumStatus records what the decoder found in the checksum record
type ChecksumStatus int

const (
	// ChecksumNotChecked means the table did not come from binary input
	ChecksumNotChecked ChecksumStatus = iota
	// ChecksumVerified means the stored digest matched the entries
	ChecksumVerified
	// ChecksumMismatch means the stored digest did not match (lenient decoding only)
	ChecksumMismatch
	// ChecksumAbsent means the table ended without a checksum record (lenient decoding only)
	ChecksumAbsent
)

func (s ChecksumStatus) String() string {
	switch s {
	case ChecksumVerified:
		return "verified"
	case ChecksumMismatch:
		return "mismatch"
	case ChecksumAbsent:
		return "absent"
	default:
		return "not checked"
	}
}

// DecodeResult is the outcome of reading a binary table
type DecodeResult struct {
	Table    types.Table
	Checksum ChecksumStatus
	// Stored and Computed hold the digests when a checksum record was found
	Stored   [types.ChecksumDigestSize]byte
	Computed [types.ChecksumDigestSize]byte
}

// TableReader decodes binary partition tables
type TableReader struct {
	policy ChecksumPolicy
}

// NewTableReader creates a TableReader using the given checksum policy
func NewTableReader(policy ChecksumPolicy) *TableReader {
	return &TableReader{policy: policy}
}

// Decode parses data into a candidate table
func (tr *TableReader) Decode(data []byte) (types.Table, error) {
	result, err := tr.Read(data)
	if err != nil {
		return types.Table{}, err
	}
	return result.Table, nil
}

// Read walks the records of data until the checksum record or an all-0xFF
// record ends the entry list. Bytes after the terminator are ignored.
func (tr *TableReader) Read(data []byte) (*DecodeResult, error) {
	if rem := len(data) % types.EntrySize; rem != 0 {
		return nil, binaryError(len(data)-rem, "", types.ErrTruncated)
	}

	result := &DecodeResult{}
	for off := 0; off < len(data); off += types.EntrySize {
		record := data[off : off+types.EntrySize]

		if isPadding(record) {
			if tr.policy == ChecksumStrict {
				return nil, binaryError(off, "", types.ErrMissingChecksum)
			}
			result.Checksum = ChecksumAbsent
			return result, nil
		}

		if hasMagic(record, types.ChecksumMagic) {
			inspector := NewChecksumInspector(data[:off], record)
			result.Stored = inspector.Checksum()
			result.Computed = inspector.Computed()
			if inspector.VerifyChecksum() {
				result.Checksum = ChecksumVerified
				return result, nil
			}
			if tr.policy == ChecksumStrict {
				return nil, inspector.Err()
			}
			result.Checksum = ChecksumMismatch
			return result, nil
		}

		// A damaged entry magic is a checksum failure when a digest covers it
		if !hasMagic(record, types.EntryMagic) && tr.policy == ChecksumStrict {
			if inspector, ok := checksumAfter(data, off); ok && !inspector.VerifyChecksum() {
				return nil, inspector.Err()
			}
		}

		entry, err := NewEntryReader(record, off)
		if err != nil {
			return nil, err
		}
		result.Table.Partitions = append(result.Table.Partitions, entry.Partition())
	}

	return nil, binaryError(len(data), "", types.ErrNoTerminator)
}

// checksumAfter finds the checksum record following the record at off. The
// search stops at the first padding record.
func checksumAfter(data []byte, off int) (*ChecksumInspector, bool) {
	for next := off + types.EntrySize; next+types.EntrySize <= len(data); next += types.EntrySize {
		record := data[next : next+types.EntrySize]
		if isPadding(record) {
			return nil, false
		}
		if hasMagic(record, types.ChecksumMagic) {
			return NewChecksumInspector(data[:next], record), true
		}
	}
	return nil, false
}
