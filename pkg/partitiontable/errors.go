package partitiontable

import (
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

// Error types
type (
	// ParseError reports malformed csv or binary input
	ParseError = types.ParseError
	// ChecksumError reports a binary table whose digest does not match its entries
	ChecksumError = types.ChecksumError
	// ValidationError reports a violated layout rule and the partitions involved
	ValidationError = types.ValidationError
)

// Parse errors
var (
	ErrFieldCount      = types.ErrFieldCount
	ErrInvalidNumber   = types.ErrInvalidNumber
	ErrNumberOverflow  = types.ErrNumberOverflow
	ErrUnknownType     = types.ErrUnknownType
	ErrUnknownSubType  = types.ErrUnknownSubType
	ErrUnknownFlag     = types.ErrUnknownFlag
	ErrNameTooLong     = types.ErrNameTooLong
	ErrNameEmpty       = types.ErrNameEmpty
	ErrNameNUL         = types.ErrNameNUL
	ErrMissingSize     = types.ErrMissingSize
	ErrTruncated       = types.ErrTruncated
	ErrNoTerminator    = types.ErrNoTerminator
	ErrBadMagic        = types.ErrBadMagic
	ErrMissingChecksum = types.ErrMissingChecksum

	ErrChecksumMismatch = types.ErrChecksumMismatch
)

// Validation rules
var (
	ErrInvalidName      = types.ErrInvalidName
	ErrInvalidSize      = types.ErrInvalidSize
	ErrInvalidOffset    = types.ErrInvalidOffset
	ErrInvalidSubType   = types.ErrInvalidSubType
	ErrReservedType     = types.ErrReservedType
	ErrDuplicateName    = types.ErrDuplicateName
	ErrUnaligned        = types.ErrUnaligned
	ErrOverlap          = types.ErrOverlap
	ErrCapacityExceeded = types.ErrCapacityExceeded
	ErrNoAppPartition   = types.ErrNoAppPartition
	ErrMultipleFactory  = types.ErrMultipleFactory
	ErrMultipleOTAData  = types.ErrMultipleOTAData
	ErrMissingOTAData   = types.ErrMissingOTAData
	ErrOTADataSize      = types.ErrOTADataSize
	ErrAppTooLarge      = types.ErrAppTooLarge
	ErrTableTooLarge    = types.ErrTableTooLarge
)

// ErrNotValidated is returned when encoding a table that was never validated
var ErrNotValidated = types.ErrNotValidated
