package types

import (
	"fmt"
	"strings"
)

// Type identifies what a partition is used for.
// TypeApp and TypeData are defined by ESP-IDF; every other value is a
// vendor defined custom type.
type Type uint8

const (
	// TypeApp marks a partition holding a bootable application image.
	TypeApp Type = 0x00
	// TypeData marks a partition holding data (NVS, OTA metadata, filesystems, ...).
	TypeData Type = 0x01
	// TypeReserved is the ESP-IDF "any type" wildcard and never describes a real partition.
	TypeReserved Type = 0xFF
)

// IsCustom reports whether the type is a vendor defined type.
func (t Type) IsCustom() bool {
	return t != TypeApp && t != TypeData
}

// IsReserved reports whether the type value may not be stored in a table.
func (t Type) IsReserved() bool {
	return t == TypeReserved
}

// String returns the canonical textual form of the type.
func (t Type) String() string {
	switch t {
	case TypeApp:
		return "app"
	case TypeData:
		return "data"
	default:
		return fmt.Sprintf("0x%02x", uint8(t))
	}
}

// SubTypeKind tells which family of names a SubType value belongs to.
type SubTypeKind uint8

const (
	// SubTypeKindRaw is an opaque byte, used with custom types and for
	// values that have no name.
	SubTypeKindRaw SubTypeKind = iota
	// SubTypeKindApp is an application subtype.
	SubTypeKindApp
	// SubTypeKindData is a data subtype.
	SubTypeKindData
)

func (k SubTypeKind) String() string {
	switch k {
	case SubTypeKindApp:
		return "app"
	case SubTypeKindData:
		return "data"
	default:
		return "raw"
	}
}

// SubType refines a partition Type. The same byte means different things
// for different types, so the family is carried alongside the value.
type SubType struct {
	Kind  SubTypeKind
	Value uint8
}

// Application subtypes.
var (
	AppFactory = SubType{Kind: SubTypeKindApp, Value: 0x00}
	AppOTA0    = SubType{Kind: SubTypeKindApp, Value: 0x10}
	AppOTA15   = SubType{Kind: SubTypeKindApp, Value: 0x1F}
	AppTest    = SubType{Kind: SubTypeKindApp, Value: 0x20}
)

// Data subtypes.
var (
	DataOTA       = SubType{Kind: SubTypeKindData, Value: 0x00}
	DataPHY       = SubType{Kind: SubTypeKindData, Value: 0x01}
	DataNVS       = SubType{Kind: SubTypeKindData, Value: 0x02}
	DataCoreDump  = SubType{Kind: SubTypeKindData, Value: 0x03}
	DataNVSKeys   = SubType{Kind: SubTypeKindData, Value: 0x04}
	DataEfuse     = SubType{Kind: SubTypeKindData, Value: 0x05}
	DataUndefined = SubType{Kind: SubTypeKindData, Value: 0x06}
	DataESPHTTPD  = SubType{Kind: SubTypeKindData, Value: 0x80}
	DataFAT       = SubType{Kind: SubTypeKindData, Value: 0x81}
	DataSPIFFS    = SubType{Kind: SubTypeKindData, Value: 0x82}
	DataLittleFS  = SubType{Kind: SubTypeKindData, Value: 0x83}
)

// AppOTA returns the subtype of OTA slot n (0..15).
func AppOTA(n int) (SubType, error) {
	if n < 0 || n >= MaxOTASlots {
		return SubType{}, fmt.Errorf("ota slot %d out of range 0-%d", n, MaxOTASlots-1)
	}
	return SubType{Kind: SubTypeKindApp, Value: AppOTA0.Value + uint8(n)}, nil
}

// RawSubType wraps an opaque subtype byte.
func RawSubType(v uint8) SubType {
	return SubType{Kind: SubTypeKindRaw, Value: v}
}

var dataSubTypeNames = map[uint8]string{
	0x00: "ota",
	0x01: "phy",
	0x02: "nvs",
	0x03: "coredump",
	0x04: "nvs_keys",
	0x05: "efuse",
	0x06: "undefined",
	0x80: "esphttpd",
	0x81: "fat",
	0x82: "spiffs",
	0x83: "littlefs",
}

// relaxedAlignment lists the filesystem data subtypes that only need the
// minimum offset alignment.
var relaxedAlignment = map[uint8]bool{
	0x80: true,
	0x81: true,
	0x82: true,
	0x83: true,
}

func appSubTypeName(v uint8) (string, bool) {
	switch {
	case v == AppFactory.Value:
		return "factory", true
	case v >= AppOTA0.Value && v <= AppOTA15.Value:
		return fmt.Sprintf("ota_%d", v-AppOTA0.Value), true
	case v == AppTest.Value:
		return "test", true
	}
	return "", false
}

// Name returns the canonical name of a named subtype.
func (s SubType) Name() (string, bool) {
	switch s.Kind {
	case SubTypeKindApp:
		return appSubTypeName(s.Value)
	case SubTypeKindData:
		name, ok := dataSubTypeNames[s.Value]
		return name, ok
	}
	return "", false
}

// IsNamed reports whether the subtype has a canonical name.
func (s SubType) IsNamed() bool {
	_, ok := s.Name()
	return ok
}

// IsOTASlot reports whether the subtype is one of the numbered OTA slots.
func (s SubType) IsOTASlot() bool {
	return s.Kind == SubTypeKindApp && s.Value >= AppOTA0.Value && s.Value <= AppOTA15.Value
}

// String returns the canonical textual form of the subtype.
func (s SubType) String() string {
	if name, ok := s.Name(); ok {
		return name
	}
	return fmt.Sprintf("0x%02x", s.Value)
}

// ValidFor reports whether the subtype may be used with the given type.
func (s SubType) ValidFor(t Type) bool {
	switch t {
	case TypeApp:
		return s.Kind == SubTypeKindApp && s.IsNamed()
	case TypeData:
		return s.Kind == SubTypeKindData && s.IsNamed()
	default:
		return s.Kind == SubTypeKindRaw
	}
}

// DecodeSubType interprets a subtype byte read from a table according to
// its partition type. Unknown values are kept as raw bytes.
func DecodeSubType(t Type, v uint8) SubType {
	var s SubType
	switch t {
	case TypeApp:
		s = SubType{Kind: SubTypeKindApp, Value: v}
	case TypeData:
		s = SubType{Kind: SubTypeKindData, Value: v}
	default:
		return RawSubType(v)
	}
	if !s.IsNamed() {
		return RawSubType(v)
	}
	return s
}

// LookupSubType resolves a canonical subtype name. App names are tried
// before data names, so "ota" is the data subtype and "ota_0" the app slot.
// Matching is exact; callers fold case beforehand.
func LookupSubType(name string) (SubType, bool) {
	switch name {
	case "factory":
		return AppFactory, true
	case "test":
		return AppTest, true
	}
	if strings.HasPrefix(name, "ota_") {
		var n int
		if _, err := fmt.Sscanf(name, "ota_%d", &n); err == nil && fmt.Sprintf("ota_%d", n) == name {
			if st, err := AppOTA(n); err == nil {
				return st, true
			}
		}
		return SubType{}, false
	}
	for v, dn := range dataSubTypeNames {
		if dn == name {
			return SubType{Kind: SubTypeKindData, Value: v}, true
		}
	}
	return SubType{}, false
}

// OffsetAlignment returns the alignment a partition offset must satisfy.
func OffsetAlignment(t Type, s SubType) uint32 {
	switch {
	case t == TypeApp:
		return AppAlignment
	case t == TypeData && s.Kind == SubTypeKindData && relaxedAlignment[s.Value]:
		return MinAlignment
	default:
		return DataAlignment
	}
}

// PlacementAlignment returns the alignment used when an offset is assigned
// automatically.
func PlacementAlignment(t Type) uint32 {
	if t == TypeApp {
		return AppAlignment
	}
	return DataAlignment
}

// Flags is the bit field stored in the last word of an entry record.
type Flags uint32

const (
	// FlagEncrypted marks a partition encrypted with flash encryption.
	FlagEncrypted Flags = 1 << 0
	// FlagReadOnly marks a partition the application may not write.
	FlagReadOnly Flags = 1 << 1
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagEncrypted, "encrypted"},
	{FlagReadOnly, "readonly"},
}

// LookupFlag resolves a canonical flag name.
func LookupFlag(name string) (Flags, bool) {
	for _, f := range flagNames {
		if f.name == name {
			return f.flag, true
		}
	}
	return 0, false
}

// Has reports whether every bit of f2 is set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// String returns the flags as ':'-separated names. Bits without a name are
// appended as a single hex value.
func (f Flags) String() string {
	if f == 0 {
		return ""
	}
	var parts []string
	rest := f
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, ":")
}
