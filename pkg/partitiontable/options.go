package partitiontable

import (
	binarytable "github.com/deploymenttheory/go-esp-partition/internal/parsers/binary_table"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
	"github.com/deploymenttheory/go-esp-partition/internal/validation"
)

// Option tunes parsing, validation and encoding
type Option func(*options)

type options struct {
	flashSize    uint64
	maxTableSize int
	tableOffset  uint32
	policy       ChecksumPolicy
	header       bool
}

func newOptions(opts []Option) options {
	o := options{
		maxTableSize: types.DefaultMaxTableSize,
		tableOffset:  types.DefaultTableOffset,
		policy:       binarytable.ChecksumStrict,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) validator() *validation.TableValidator {
	return validation.NewTableValidator(validation.Options{
		FlashSize:    o.flashSize,
		MaxTableSize: o.maxTableSize,
		TableOffset:  o.tableOffset,
	})
}

// WithFlashSize bounds every partition to the first size bytes of flash.
// Zero, the default, disables the capacity check.
func WithFlashSize(size uint64) Option {
	return func(o *options) {
		o.flashSize = size
	}
}

// WithMaxTableSize sets the space reserved for the binary table. The default
// is 0x1000. It bounds the number of entries, sets the padded length of
// encoded tables and moves the first auto-placed offset.
func WithMaxTableSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.maxTableSize = size
		}
	}
}

// WithTableOffset sets the flash address of the binary table. The default is 0x8000.
func WithTableOffset(offset uint32) Option {
	return func(o *options) {
		if offset != 0 {
			o.tableOffset = offset
		}
	}
}

// WithChecksumPolicy selects how binary decoding treats a bad or missing checksum
func WithChecksumPolicy(policy ChecksumPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithHeader makes CSV output start with comment rows naming the columns
func WithHeader(enabled bool) Option {
	return func(o *options) {
		o.header = enabled
	}
}
