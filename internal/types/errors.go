package types

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors. They are wrapped in a *ParseError carrying the location.
var (
	ErrFieldCount      = errors.New("wrong number of fields")
	ErrInvalidNumber   = errors.New("invalid number")
	ErrNumberOverflow  = errors.New("number does not fit in 32 bits")
	ErrUnknownType     = errors.New("unknown partition type")
	ErrUnknownSubType  = errors.New("unknown partition subtype")
	ErrUnknownFlag     = errors.New("unknown partition flag")
	ErrNameTooLong     = errors.New("partition name exceeds 16 bytes")
	ErrNameEmpty       = errors.New("partition name is empty")
	ErrNameNUL         = errors.New("partition name contains a NUL byte")
	ErrMissingSize     = errors.New("partition size is missing")
	ErrTruncated       = errors.New("binary table length is not a multiple of 32 bytes")
	ErrNoTerminator    = errors.New("binary table has no end marker")
	ErrBadMagic        = errors.New("unrecognized record magic")
	ErrMissingChecksum = errors.New("binary table has no checksum record")
)

// ErrChecksumMismatch is matched by every *ChecksumError.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Validation rules. Every *ValidationError unwraps to one of these.
var (
	ErrInvalidName      = errors.New("invalid partition name")
	ErrInvalidSize      = errors.New("invalid partition size")
	ErrInvalidOffset    = errors.New("invalid partition offset")
	ErrInvalidSubType   = errors.New("subtype not valid for partition type")
	ErrReservedType     = errors.New("reserved partition type")
	ErrDuplicateName    = errors.New("duplicate partition name")
	ErrUnaligned        = errors.New("partition is not correctly aligned")
	ErrOverlap          = errors.New("partitions overlap")
	ErrCapacityExceeded = errors.New("partition exceeds flash size")
	ErrNoAppPartition   = errors.New("no app partition")
	ErrMultipleFactory  = errors.New("more than one factory app partition")
	ErrMultipleOTAData  = errors.New("more than one ota data partition")
	ErrMissingOTAData   = errors.New("missing ota data partition")
	ErrOTADataSize      = errors.New("ota data partition has the wrong size")
	ErrAppTooLarge      = errors.New("app partition exceeds 16 MiB")
	ErrTableTooLarge    = errors.New("encoded table exceeds maximum table size")
)

// ErrNotValidated is returned when encoding a table that has not passed validation.
var ErrNotValidated = errors.New("partition table has not been validated")

// ParseError reports malformed tabular or binary input.
type ParseError struct {
	// Format is "csv" or "binary"
	Format string
	// Line is the 1-based line number of a csv row
	Line int
	// Offset is the byte offset of a binary record
	Offset int
	// Field names the offending column, if known
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	var loc string
	if e.Format == "binary" {
		loc = fmt.Sprintf("binary offset %#x", e.Offset)
	} else {
		loc = fmt.Sprintf("%s line %d", e.Format, e.Line)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field %s: %v", loc, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ChecksumError indicates that the digest stored in a binary table does not
// match the digest of its entry records.
type ChecksumError struct {
	Expected [ChecksumDigestSize]byte
	Computed [ChecksumDigestSize]byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: table declares %x, entries hash to %x", e.Expected, e.Computed)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// ValidationError reports a violated table rule and the partitions involved.
type ValidationError struct {
	Rule       error
	Partitions []string
	Detail     string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Rule.Error())
	if len(e.Partitions) > 0 {
		quoted := make([]string, len(e.Partitions))
		for i, p := range e.Partitions {
			quoted[i] = fmt.Sprintf("%q", p)
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(quoted, " and "))
	}
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Rule
}

// NewValidationError builds a ValidationError for rule.
func NewValidationError(rule error, detail string, partitions ...string) *ValidationError {
	return &ValidationError{Rule: rule, Partitions: partitions, Detail: detail}
}
