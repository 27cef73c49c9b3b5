package types

// Table is an ordered list of partitions. The order is the order in which
// entries are encoded and in which offsets are auto-placed.
type Table struct {
	Partitions []Partition
}

// Clone returns a copy that shares no storage with t.
func (t Table) Clone() Table {
	parts := make([]Partition, len(t.Partitions))
	copy(parts, t.Partitions)
	return Table{Partitions: parts}
}

// Find returns the partition with the given name (exact, case-sensitive match).
func (t Table) Find(name string) (Partition, bool) {
	for _, p := range t.Partitions {
		if p.Name == name {
			return p, true
		}
	}
	return Partition{}, false
}

// FindByType returns the first partition of the given type.
func (t Table) FindByType(ty Type) (Partition, bool) {
	for _, p := range t.Partitions {
		if p.Type == ty {
			return p, true
		}
	}
	return Partition{}, false
}

// FindBySubType returns the first partition with the given type and subtype.
func (t Table) FindBySubType(ty Type, st SubType) (Partition, bool) {
	for _, p := range t.Partitions {
		if p.Type == ty && p.SubType == st {
			return p, true
		}
	}
	return Partition{}, false
}

// Filter returns the partitions for which keep returns true, in table order.
func (t Table) Filter(keep func(Partition) bool) []Partition {
	var out []Partition
	for _, p := range t.Partitions {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of partitions for which match returns true.
func (t Table) Count(match func(Partition) bool) int {
	n := 0
	for _, p := range t.Partitions {
		if match(p) {
			n++
		}
	}
	return n
}

// EncodedSize returns the size of the table's binary form without padding:
// one record per entry plus the checksum record.
func (t Table) EncodedSize() int {
	return (len(t.Partitions) + 1) * EntrySize
}
