package validation

import (
	"fmt"

	"github.com/deploymenttheory/go-esp-partition/internal/interfaces"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

var _ interfaces.TableValidator = (*TableValidator)(nil)

// Options bounds the layout a table may describe
type Options struct {
	// FlashSize is the size of the flash chip in bytes. Zero disables the capacity check.
	FlashSize uint64
	// MaxTableSize is the space reserved for the binary table. Zero selects types.DefaultMaxTableSize.
	MaxTableSize int
	// TableOffset is the flash address of the binary table. Zero selects types.DefaultTableOffset.
	TableOffset uint32
}

// DefaultOptions returns the conventional ESP-IDF layout bounds with no flash size limit
func DefaultOptions() Options {
	return Options{
		MaxTableSize: types.DefaultMaxTableSize,
		TableOffset:  types.DefaultTableOffset,
	}
}

// TableValidator places and checks partition tables
type TableValidator struct {
	opts   Options
	placer *OffsetPlacer
}

// NewTableValidator creates a TableValidator. Zero fields of opts take their defaults.
func NewTableValidator(opts Options) *TableValidator {
	if opts.MaxTableSize <= 0 {
		opts.MaxTableSize = types.DefaultMaxTableSize
	}
	if opts.TableOffset == 0 {
		opts.TableOffset = types.DefaultTableOffset
	}
	return &TableValidator{
		opts:   opts,
		placer: NewOffsetPlacer(opts.TableOffset, opts.MaxTableSize),
	}
}

// Options returns the effective options
func (tv *TableValidator) Options() Options {
	return tv.opts
}

// Place assigns offsets to unplaced partitions
func (tv *TableValidator) Place(table types.Table) types.Table {
	return tv.placer.Place(table)
}

// Validate places the table and checks it. It returns the placed table, or
// the first violation found.
func (tv *TableValidator) Validate(table types.Table) (types.Table, error) {
	placed := tv.placer.Place(table)
	if errs := tv.check(placed); len(errs) > 0 {
		return types.Table{}, errs[0]
	}
	return placed, nil
}

// Violations places the table and returns every violation, ordered by rule
// and then by table order.
func (tv *TableValidator) Violations(table types.Table) []*types.ValidationError {
	return tv.check(tv.placer.Place(table))
}

func (tv *TableValidator) check(table types.Table) []*types.ValidationError {
	var errs []*types.ValidationError
	errs = append(errs, checkFields(table)...)
	errs = append(errs, checkAlignment(table)...)
	errs = append(errs, checkOverlap(table)...)
	errs = append(errs, checkCapacity(table, tv.opts.FlashSize)...)
	errs = append(errs, checkRequired(table)...)
	errs = append(errs, checkTableSize(table, tv.opts.MaxTableSize)...)
	return errs
}

func checkFields(table types.Table) []*types.ValidationError {
	var errs []*types.ValidationError
	firstRow := make(map[string]int, len(table.Partitions))

	for i, p := range table.Partitions {
		errs = append(errs, p.Check()...)

		if !p.HasOffset {
			errs = append(errs, types.NewValidationError(types.ErrInvalidOffset,
				fmt.Sprintf("no free space for %#x bytes below 4 GiB", p.Size), p.Name))
		}

		if first, seen := firstRow[p.Name]; seen {
			errs = append(errs, types.NewValidationError(types.ErrDuplicateName,
				fmt.Sprintf("rows %d and %d", first+1, i+1), p.Name))
		} else {
			firstRow[p.Name] = i
		}
	}
	return errs
}

func checkAlignment(table types.Table) []*types.ValidationError {
	var errs []*types.ValidationError
	for _, p := range table.Partitions {
		// Offsets that are not word aligned were reported by the field checks.
		if !p.HasOffset || p.Offset%types.MinAlignment != 0 {
			continue
		}
		align := types.OffsetAlignment(p.Type, p.SubType)
		if p.Offset%align != 0 {
			errs = append(errs, types.NewValidationError(types.ErrUnaligned,
				fmt.Sprintf("offset %#x is not a multiple of %#x", p.Offset, align), p.Name))
		}
	}
	return errs
}

func checkOverlap(table types.Table) []*types.ValidationError {
	var errs []*types.ValidationError
	parts := table.Partitions
	for i := 0; i < len(parts); i++ {
		if !parts[i].HasOffset {
			continue
		}
		for j := i + 1; j < len(parts); j++ {
			if !parts[j].HasOffset || !parts[i].Overlaps(parts[j]) {
				continue
			}
			errs = append(errs, types.NewValidationError(types.ErrOverlap,
				fmt.Sprintf("[%#x, %#x) and [%#x, %#x)", parts[i].Offset, parts[i].End(), parts[j].Offset, parts[j].End()),
				parts[i].Name, parts[j].Name))
		}
	}
	return errs
}

func checkCapacity(table types.Table, flashSize uint64) []*types.ValidationError {
	if flashSize == 0 {
		return nil
	}
	var errs []*types.ValidationError
	for _, p := range table.Partitions {
		if p.HasOffset && p.End() > flashSize {
			errs = append(errs, types.NewValidationError(types.ErrCapacityExceeded,
				fmt.Sprintf("ends at %#x, flash size is %#x", p.End(), flashSize), p.Name))
		}
	}
	return errs
}

func checkRequired(table types.Table) []*types.ValidationError {
	var errs []*types.ValidationError

	apps := table.Filter(func(p types.Partition) bool { return p.Type == types.TypeApp })
	if len(apps) == 0 {
		errs = append(errs, types.NewValidationError(types.ErrNoAppPartition, "at least one app partition is required"))
	}

	factories := table.Filter(func(p types.Partition) bool {
		return p.Type == types.TypeApp && p.SubType == types.AppFactory
	})
	if len(factories) > 1 {
		errs = append(errs, types.NewValidationError(types.ErrMultipleFactory, "", names(factories)...))
	}

	otadata := table.Filter(func(p types.Partition) bool {
		return p.Type == types.TypeData && p.SubType == types.DataOTA
	})
	if len(otadata) > 1 {
		errs = append(errs, types.NewValidationError(types.ErrMultipleOTAData, "", names(otadata)...))
	}
	for _, p := range otadata {
		if p.Size != types.OTADataSize {
			errs = append(errs, types.NewValidationError(types.ErrOTADataSize,
				fmt.Sprintf("size is %#x, must be %#x", p.Size, types.OTADataSize), p.Name))
		}
	}
	if len(apps) >= 2 && len(otadata) == 0 {
		errs = append(errs, types.NewValidationError(types.ErrMissingOTAData,
			fmt.Sprintf("%d app partitions need an ota data partition", len(apps))))
	}

	for _, p := range apps {
		if p.Size > types.MaxAppSize {
			errs = append(errs, types.NewValidationError(types.ErrAppTooLarge,
				fmt.Sprintf("size is %#x, limit is %#x", p.Size, types.MaxAppSize), p.Name))
		}
	}
	return errs
}

func checkTableSize(table types.Table, maxTableSize int) []*types.ValidationError {
	if size := table.EncodedSize(); size > maxTableSize {
		return []*types.ValidationError{types.NewValidationError(types.ErrTableTooLarge,
			fmt.Sprintf("%d entries need %#x bytes, maximum is %#x", len(table.Partitions), size, maxTableSize))}
	}
	return nil
}

func names(parts []types.Partition) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.Name
	}
	return out
}
