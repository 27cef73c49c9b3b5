package texttable

import (
	"errors"
	"strings"
	"testing"

	"github.com/deploymenttheory/go-esp-partition/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleAppCSV = `# ESP-IDF Partition Table
# Name,   Type, SubType, Offset,  Size, Flags
nvs,      data, nvs,     0x9000,  0x6000,
phy_init, data, phy,     0xf000,  0x1000,
factory,  app,  factory, 0x10000, 1M,
`

func TestTableReader_Decode(t *testing.T) {
	table, err := NewTableReader().Decode([]byte(singleAppCSV))
	require.NoError(t, err)
	require.Len(t, table.Partitions, 3)

	want := []types.Partition{
		{Name: "nvs", Type: types.TypeData, SubType: types.DataNVS, Offset: 0x9000, HasOffset: true, Size: 0x6000},
		{Name: "phy_init", Type: types.TypeData, SubType: types.DataPHY, Offset: 0xF000, HasOffset: true, Size: 0x1000},
		{Name: "factory", Type: types.TypeApp, SubType: types.AppFactory, Offset: 0x10000, HasOffset: true, Size: 0x100000},
	}
	assert.Equal(t, want, table.Partitions)
}

func TestTableReader_HeaderRow(t *testing.T) {
	input := "Name, Type, SubType, Offset, Size, Flags\nnvs, data, nvs, , 24K\n"

	table, err := NewTableReader().Decode([]byte(input))
	require.NoError(t, err)
	require.Len(t, table.Partitions, 1)
	assert.Equal(t, "nvs", table.Partitions[0].Name)
	assert.False(t, table.Partitions[0].HasOffset)
	assert.Equal(t, uint32(24*1024), table.Partitions[0].Size)
}

func TestTableReader_HeaderOnlyFirstRow(t *testing.T) {
	input := "nvs, data, nvs, , 24K\nname, type, nvs, , 4K\n"

	_, err := NewTableReader().Decode([]byte(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownType)
}

func TestTableReader_CaseInsensitiveNames(t *testing.T) {
	input := "Factory, APP, Factory, 0x10000, 0x100000, ENCRYPTED:ReadOnly\n"

	table, err := NewTableReader().Decode([]byte(input))
	require.NoError(t, err)
	p := table.Partitions[0]
	assert.Equal(t, "Factory", p.Name, "partition names keep their case")
	assert.Equal(t, types.TypeApp, p.Type)
	assert.Equal(t, types.AppFactory, p.SubType)
	assert.Equal(t, types.FlagEncrypted|types.FlagReadOnly, p.Flags)
}

func TestTableReader_NumericTypes(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantTy  types.Type
		wantSub types.SubType
	}{
		{"numeric app", "a, 0x00, 0x10, , 0x10000", types.TypeApp, types.AppOTA0},
		{"numeric data", "d, 1, 2, , 0x1000", types.TypeData, types.DataNVS},
		{"vendor type and subtype", "v, 0x40, 0x07, , 0x1000", types.Type(0x40), types.RawSubType(0x07)},
		{"vendor type with named subtype", "v, 0x40, nvs, , 0x1000", types.Type(0x40), types.DataNVS},
		{"vendor type with empty subtype", "v, 0x40, , , 0x1000", types.Type(0x40), types.RawSubType(0)},
		{"wrong family name", "d, data, factory, , 0x1000", types.TypeData, types.AppFactory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTableReader().Decode([]byte(tt.row))
			require.NoError(t, err)
			require.Len(t, table.Partitions, 1)
			assert.Equal(t, tt.wantTy, table.Partitions[0].Type)
			assert.Equal(t, tt.wantSub, table.Partitions[0].SubType)
		})
	}
}

func TestTableReader_ErrorCases(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   error
		wantLine  int
		wantField string
	}{
		{"Too few fields", "nvs, data, nvs, 0x9000", types.ErrFieldCount, 1, ""},
		{"Too many fields", "nvs, data, nvs, 0x9000, 0x6000, , extra", types.ErrFieldCount, 1, ""},
		{"Unknown type", "# c\nnvs, dta, nvs, 0x9000, 0x6000", types.ErrUnknownType, 2, FieldType},
		{"Reserved type", "x, 0xff, 0, , 0x1000", types.ErrReservedType, 1, FieldType},
		{"Type out of range", "x, 0x100, 0, , 0x1000", types.ErrNumberOverflow, 1, FieldType},
		{"Unknown subtype name", "nvs, data, nvram, 0x9000, 0x6000", types.ErrUnknownSubType, 1, FieldSubType},
		{"Unknown numeric app subtype", "a, app, 0x05, , 0x10000", types.ErrUnknownSubType, 1, FieldSubType},
		{"Bad digit in offset", "nvs, data, nvs, 0x9g00, 0x6000", types.ErrInvalidNumber, 1, FieldOffset},
		{"Offset overflow", "nvs, data, nvs, 0x100000000, 0x6000", types.ErrNumberOverflow, 1, FieldOffset},
		{"Suffix overflow", "nvs, data, nvs, , 4096M", types.ErrNumberOverflow, 1, FieldSize},
		{"Missing size", "nvs, data, nvs, 0x9000, ", types.ErrMissingSize, 1, FieldSize},
		{"Name too long", "a_very_long_partition_name, data, nvs, , 0x1000", types.ErrNameTooLong, 1, FieldName},
		{"Empty name", ", data, nvs, , 0x1000", types.ErrNameEmpty, 1, FieldName},
		{"Embedded NUL", "nv\x00s, data, nvs, , 0x1000", types.ErrNameNUL, 1, FieldName},
		{"Unknown flag", "nvs, data, nvs, , 0x1000, secure", types.ErrUnknownFlag, 1, FieldFlags},
		{"Error on later line", "nvs, data, nvs, , 0x1000\n\nphy, data, phy, , zz", types.ErrInvalidNumber, 3, FieldSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTableReader().Decode([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *types.ParseError
			require.True(t, errors.As(err, &perr), "expected a *types.ParseError, got %T", err)
			assert.Equal(t, "csv", perr.Format)
			assert.Equal(t, tt.wantLine, perr.Line)
			assert.Equal(t, tt.wantField, perr.Field)
		})
	}
}

func TestTableReader_EmptyInput(t *testing.T) {
	table, err := NewTableReader().Decode([]byte("\n# only comments\n   \n"))
	require.NoError(t, err)
	assert.Empty(t, table.Partitions)
}

func TestTableReader_CRLF(t *testing.T) {
	input := strings.ReplaceAll(singleAppCSV, "\n", "\r\n")
	table, err := NewTableReader().Decode([]byte(input))
	require.NoError(t, err)
	assert.Len(t, table.Partitions, 3)
}

func TestTableReader_ByteOrderMark(t *testing.T) {
	table, err := NewTableReader().Decode([]byte("\ufefffactory, app, factory, , 1M"))
	require.NoError(t, err)
	require.Len(t, table.Partitions, 1)
	assert.Equal(t, "factory", table.Partitions[0].Name)

	// The header row is still recognised after the mark
	table, err = NewTableReader().Decode([]byte("\ufeffName, Type, SubType, Offset, Size\nfactory, app, factory, , 1M\n"))
	require.NoError(t, err)
	require.Len(t, table.Partitions, 1)
	assert.Equal(t, "factory", table.Partitions[0].Name)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    uint64
		wantErr error
	}{
		{"4096", 4096, nil},
		{"0x1000", 0x1000, nil},
		{"0X1000", 0x1000, nil},
		{"0o10", 8, nil},
		{"0b101", 5, nil},
		{"010", 10, nil},
		{"4K", 4096, nil},
		{"4k", 4096, nil},
		{"2M", 2 * 1024 * 1024, nil},
		{"0xffffffff", 0xFFFFFFFF, nil},
		{"0x100000000", 0, types.ErrNumberOverflow},
		{"4194304K", 0, types.ErrNumberOverflow},
		{"", 0, types.ErrInvalidNumber},
		{"K", 0, types.ErrInvalidNumber},
		{"0x", 0, types.ErrInvalidNumber},
		{"-1", 0, types.ErrInvalidNumber},
		{"+1", 0, types.ErrInvalidNumber},
		{"1.5M", 0, types.ErrInvalidNumber},
		{"0x10K", 0, types.ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNumber(tt.input, 32)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
