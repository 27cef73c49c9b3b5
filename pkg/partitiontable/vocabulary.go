package partitiontable

import (
	binarytable "github.com/deploymenttheory/go-esp-partition/internal/parsers/binary_table"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

type (
	// Partition is one named region of flash
	Partition = types.Partition
	// Type identifies what a partition is used for
	Type = types.Type
	// SubType refines a Type
	SubType = types.SubType
	// SubTypeKind is the family a SubType belongs to
	SubTypeKind = types.SubTypeKind
	// Flags holds partition attribute bits
	Flags = types.Flags
	// ChecksumPolicy controls how binary decoding treats the checksum record
	ChecksumPolicy = binarytable.ChecksumPolicy
	// ChecksumStatus reports the checksum outcome of binary decoding
	ChecksumStatus = binarytable.ChecksumStatus
)

const (
	TypeApp      = types.TypeApp
	TypeData     = types.TypeData
	TypeReserved = types.TypeReserved

	SubTypeKindRaw  = types.SubTypeKindRaw
	SubTypeKindApp  = types.SubTypeKindApp
	SubTypeKindData = types.SubTypeKindData

	FlagEncrypted = types.FlagEncrypted
	FlagReadOnly  = types.FlagReadOnly

	ChecksumStrict  = binarytable.ChecksumStrict
	ChecksumLenient = binarytable.ChecksumLenient

	ChecksumNotChecked = binarytable.ChecksumNotChecked
	ChecksumVerified   = binarytable.ChecksumVerified
	ChecksumMismatch   = binarytable.ChecksumMismatch
	ChecksumAbsent     = binarytable.ChecksumAbsent
)

// Named subtypes
var (
	AppFactory = types.AppFactory
	AppTest    = types.AppTest

	DataOTA       = types.DataOTA
	DataPHY       = types.DataPHY
	DataNVS       = types.DataNVS
	DataCoreDump  = types.DataCoreDump
	DataNVSKeys   = types.DataNVSKeys
	DataEfuse     = types.DataEfuse
	DataUndefined = types.DataUndefined
	DataESPHTTPD  = types.DataESPHTTPD
	DataFAT       = types.DataFAT
	DataSPIFFS    = types.DataSPIFFS
	DataLittleFS  = types.DataLittleFS
)

// Layout constants
const (
	EntrySize           = types.EntrySize
	DefaultMaxTableSize = types.DefaultMaxTableSize
	DefaultTableOffset  = types.DefaultTableOffset
)

// AppOTA returns the subtype of OTA slot n (0..15)
func AppOTA(n int) (SubType, error) {
	return types.AppOTA(n)
}

// RawSubType wraps an opaque subtype byte for a custom partition type
func RawSubType(v uint8) SubType {
	return types.RawSubType(v)
}

// ParseChecksumPolicy converts "strict" or "lenient" to a ChecksumPolicy
func ParseChecksumPolicy(s string) (ChecksumPolicy, error) {
	return binarytable.ParseChecksumPolicy(s)
}
