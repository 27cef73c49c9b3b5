// Package partitiontable reads, validates and writes ESP partition tables.
//
// A table is parsed from its comma separated form or decoded from the 32 byte
// record binary form, validated, and then rendered back to either form:
//
//	table, err := partitiontable.FromCSV(csv, partitiontable.WithFlashSize(4<<20))
//	if err != nil {
//		return err
//	}
//	bin, err := table.Binary()
//
// Partitions without an offset are placed during validation. Only validated
// tables can be encoded. Tables are values: methods that change a table
// return a new one.
package partitiontable
