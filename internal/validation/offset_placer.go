// Package validation assigns offsets to unplaced partitions and checks
// partition tables against the layout rules of the ESP bootloader.
package validation

import (
	"github.com/deploymenttheory/go-esp-partition/internal/interfaces"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

var _ interfaces.TablePlacer = (*OffsetPlacer)(nil)

const addressSpace = uint64(1) << 32

// OffsetPlacer assigns offsets to partitions declared without one
type OffsetPlacer struct {
	start uint64
}

// NewOffsetPlacer creates a placer whose first free address is the end of
// the partition table region: tableOffset plus maxTableSize rounded up to a
// flash sector.
func NewOffsetPlacer(tableOffset uint32, maxTableSize int) *OffsetPlacer {
	if maxTableSize <= 0 {
		maxTableSize = types.DefaultMaxTableSize
	}
	return &OffsetPlacer{
		start: uint64(tableOffset) + types.AlignUp(uint64(maxTableSize), types.FlashSectorSize),
	}
}

// Start returns the address placement begins at
func (op *OffsetPlacer) Start() uint64 {
	return op.start
}

// Place returns a copy of table with offsets assigned in table order. Each
// unplaced partition goes to the lowest aligned address at or after the end
// of the previous row that does not overlap a partition with a fixed offset.
// A partition that does not fit below 4 GiB is left unplaced.
func (op *OffsetPlacer) Place(table types.Table) types.Table {
	placed := table.Clone()
	fixed := table.Filter(func(p types.Partition) bool { return p.HasOffset })

	cursor := op.start
	for i := range placed.Partitions {
		p := &placed.Partitions[i]
		if p.HasOffset {
			cursor = p.End()
			continue
		}

		offset, ok := findSlot(cursor, uint64(p.Size), uint64(types.PlacementAlignment(p.Type)), fixed)
		if !ok {
			continue
		}
		p.Offset = uint32(offset)
		p.HasOffset = true
		cursor = p.End()
	}

	return placed
}

// findSlot returns the first address at or after from, aligned to align,
// where size bytes do not collide with any fixed partition.
func findSlot(from, size, align uint64, fixed []types.Partition) (uint64, bool) {
	candidate := types.AlignUp(from, align)
	for {
		if candidate+size > addressSpace {
			return 0, false
		}
		moved := false
		for _, f := range fixed {
			if candidate < f.End() && uint64(f.Offset) < candidate+size {
				candidate = types.AlignUp(f.End(), align)
				moved = true
			}
		}
		if !moved {
			return candidate, true
		}
	}
}
