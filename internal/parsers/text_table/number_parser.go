// Package texttable reads and writes the comma separated, human editable form
// of an ESP partition table.
package texttable

import (
	"errors"
	"strconv"

	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

// Size suffix multipliers
const (
	kibi = 1024
	mebi = 1024 * 1024
)

// ParseNumber parses an unsigned value written in decimal, 0x hexadecimal,
// 0o octal, 0b binary, or decimal followed by a K or M size suffix. The
// result must fit in bitSize bits.
func ParseNumber(s string, bitSize int) (uint64, error) {
	if s == "" {
		return 0, types.ErrInvalidNumber
	}

	base := 10
	digits := s
	var multiplier uint64 = 1

	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, digits = 16, s[2:]
		case 'o', 'O':
			base, digits = 8, s[2:]
		case 'b', 'B':
			base, digits = 2, s[2:]
		}
	}

	if base == 10 {
		switch s[len(s)-1] {
		case 'k', 'K':
			multiplier, digits = kibi, s[:len(s)-1]
		case 'm', 'M':
			multiplier, digits = mebi, s[:len(s)-1]
		}
	}

	if digits == "" {
		return 0, types.ErrInvalidNumber
	}

	v, err := strconv.ParseUint(digits, base, bitSize)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, types.ErrNumberOverflow
		}
		return 0, types.ErrInvalidNumber
	}

	limit := uint64(1)<<bitSize - 1
	if v > limit/multiplier {
		return 0, types.ErrNumberOverflow
	}
	return v * multiplier, nil
}
