package types

import (
	"fmt"
	"strings"
)

// Partition is one row of a partition table.
type Partition struct {
	// Name is a human readable label, at most MaxNameLen bytes, unique within a table
	Name string
	// Type is the partition's purpose
	Type Type
	// SubType refines Type
	SubType SubType
	// Offset is the absolute flash address of the partition. Only meaningful when HasOffset is set.
	Offset uint32
	// HasOffset is false when the offset was omitted and must be assigned by auto-placement
	HasOffset bool
	// Size is the length of the partition in bytes
	Size uint32
	// Flags holds the partition attribute bits
	Flags Flags
}

// End returns the first address past the partition. The result is 64 bit
// so that offset+size cannot wrap.
func (p Partition) End() uint64 {
	return uint64(p.Offset) + uint64(p.Size)
}

// Overlaps reports whether the byte ranges of p and o intersect. Both
// partitions must have resolved offsets.
func (p Partition) Overlaps(o Partition) bool {
	return uint64(max(p.Offset, o.Offset)) < min(p.End(), o.End())
}

// Encrypted reports whether the encrypted flag is set.
func (p Partition) Encrypted() bool {
	return p.Flags.Has(FlagEncrypted)
}

func (p Partition) String() string {
	offset := "auto"
	if p.HasOffset {
		offset = fmt.Sprintf("%#x", p.Offset)
	}
	return fmt.Sprintf("%s (%s/%s) offset=%s size=%#x", p.Name, p.Type, p.SubType, offset, p.Size)
}

// CheckName verifies the constraints an entry record places on a name.
func CheckName(name string) error {
	switch {
	case name == "":
		return ErrNameEmpty
	case len(name) > MaxNameLen:
		return ErrNameTooLong
	case strings.IndexByte(name, 0) >= 0:
		return ErrNameNUL
	}
	return nil
}

// Check runs the checks that only depend on the partition itself and
// returns every violation found, in a fixed order.
func (p Partition) Check() []*ValidationError {
	var errs []*ValidationError

	if err := CheckName(p.Name); err != nil {
		errs = append(errs, NewValidationError(ErrInvalidName, err.Error(), p.Name))
	}

	if p.Size == 0 {
		errs = append(errs, NewValidationError(ErrInvalidSize, "size must be greater than zero", p.Name))
	} else if p.Size%MinAlignment != 0 {
		errs = append(errs, NewValidationError(ErrInvalidSize,
			fmt.Sprintf("size %#x is not a multiple of %d", p.Size, MinAlignment), p.Name))
	}

	if p.HasOffset && p.Offset%MinAlignment != 0 {
		errs = append(errs, NewValidationError(ErrInvalidOffset,
			fmt.Sprintf("offset %#x is not a multiple of %d", p.Offset, MinAlignment), p.Name))
	} else if p.HasOffset && p.End() > 1<<32 {
		errs = append(errs, NewValidationError(ErrInvalidOffset,
			fmt.Sprintf("offset %#x + size %#x exceeds the 32 bit address space", p.Offset, p.Size), p.Name))
	}

	if p.Type.IsReserved() {
		errs = append(errs, NewValidationError(ErrReservedType,
			fmt.Sprintf("type %s is reserved", p.Type), p.Name))
	} else if !p.SubType.ValidFor(p.Type) {
		errs = append(errs, NewValidationError(ErrInvalidSubType,
			fmt.Sprintf("subtype %s (%s) cannot be used with type %s", p.SubType, p.SubType.Kind, p.Type), p.Name))
	}

	return errs
}
