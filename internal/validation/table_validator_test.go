package validation

import (
	"errors"
	"testing"

	"github.com/deploymenttheory/go-esp-partition/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func app(name string, st types.SubType, offset, size uint32) types.Partition {
	return types.Partition{Name: name, Type: types.TypeApp, SubType: st, Offset: offset, HasOffset: offset != 0, Size: size}
}

func data(name string, st types.SubType, offset, size uint32) types.Partition {
	return types.Partition{Name: name, Type: types.TypeData, SubType: st, Offset: offset, HasOffset: offset != 0, Size: size}
}

func ota(n int) types.SubType {
	st, _ := types.AppOTA(n)
	return st
}

func TestTableValidator_Validate(t *testing.T) {
	tests := []struct {
		name      string
		parts     []types.Partition
		opts      Options
		wantRule  error
		wantNames []string
	}{
		{
			name: "Single factory app",
			parts: []types.Partition{
				data("nvs", types.DataNVS, 0, 0x6000),
				data("phy_init", types.DataPHY, 0, 0x1000),
				app("factory", types.AppFactory, 0, 0x100000),
			},
		},
		{
			name: "Two OTA slots with otadata",
			parts: []types.Partition{
				data("nvs", types.DataNVS, 0, 0x4000),
				data("otadata", types.DataOTA, 0, 0x2000),
				data("phy_init", types.DataPHY, 0, 0x1000),
				app("ota_0", ota(0), 0, 0x100000),
				app("ota_1", ota(1), 0, 0x100000),
			},
		},
		{
			name: "Overlapping partitions",
			parts: []types.Partition{
				app("factory", types.AppFactory, 0x10000, 0x10000),
				data("storage", types.DataFAT, 0x18000, 0x10000),
			},
			wantRule:  types.ErrOverlap,
			wantNames: []string{"factory", "storage"},
		},
		{
			name: "Misaligned app",
			parts: []types.Partition{
				app("factory", types.AppFactory, 0x11000, 0x10000),
			},
			wantRule:  types.ErrUnaligned,
			wantNames: []string{"factory"},
		},
		{
			name: "Misaligned data",
			parts: []types.Partition{
				data("nvs", types.DataNVS, 0x9004, 0x1000),
				app("factory", types.AppFactory, 0x10000, 0x10000),
			},
			wantRule:  types.ErrUnaligned,
			wantNames: []string{"nvs"},
		},
		{
			name: "Filesystem data only needs word alignment",
			parts: []types.Partition{
				data("fs", types.DataLittleFS, 0x9004, 0x1000),
				app("factory", types.AppFactory, 0x10000, 0x10000),
			},
		},
		{
			name: "Custom type needs sector alignment",
			parts: []types.Partition{
				{Name: "vendor", Type: types.Type(0x40), SubType: types.RawSubType(1), Offset: 0x9800, HasOffset: true, Size: 0x800},
				app("factory", types.AppFactory, 0x10000, 0x10000),
			},
			wantRule:  types.ErrUnaligned,
			wantNames: []string{"vendor"},
		},
		{
			name: "Two apps without otadata",
			parts: []types.Partition{
				app("ota_0", ota(0), 0, 0x100000),
				app("ota_1", ota(1), 0, 0x100000),
			},
			wantRule: types.ErrMissingOTAData,
		},
		{
			name: "Otadata of the wrong size",
			parts: []types.Partition{
				data("otadata", types.DataOTA, 0, 0x1000),
				app("ota_0", ota(0), 0, 0x100000),
				app("ota_1", ota(1), 0, 0x100000),
			},
			wantRule:  types.ErrOTADataSize,
			wantNames: []string{"otadata"},
		},
		{
			name: "Two otadata partitions",
			parts: []types.Partition{
				data("otadata", types.DataOTA, 0, 0x2000),
				data("otadata2", types.DataOTA, 0, 0x2000),
				app("factory", types.AppFactory, 0, 0x100000),
			},
			wantRule:  types.ErrMultipleOTAData,
			wantNames: []string{"otadata", "otadata2"},
		},
		{
			name: "No app",
			parts: []types.Partition{
				data("nvs", types.DataNVS, 0, 0x6000),
			},
			wantRule: types.ErrNoAppPartition,
		},
		{
			name: "Two factory apps",
			parts: []types.Partition{
				data("otadata", types.DataOTA, 0, 0x2000),
				app("factory", types.AppFactory, 0, 0x100000),
				app("factory2", types.AppFactory, 0, 0x100000),
			},
			wantRule:  types.ErrMultipleFactory,
			wantNames: []string{"factory", "factory2"},
		},
		{
			name: "App larger than 16 MiB",
			parts: []types.Partition{
				app("factory", types.AppFactory, 0, 0x1010000),
			},
			wantRule:  types.ErrAppTooLarge,
			wantNames: []string{"factory"},
		},
		{
			name: "Duplicate names",
			parts: []types.Partition{
				data("nvs", types.DataNVS, 0, 0x1000),
				data("nvs", types.DataPHY, 0, 0x1000),
				app("factory", types.AppFactory, 0, 0x100000),
			},
			wantRule:  types.ErrDuplicateName,
			wantNames: []string{"nvs"},
		},
		{
			name: "Wrong subtype family",
			parts: []types.Partition{
				data("nvs", types.AppFactory, 0, 0x1000),
				app("factory", types.AppFactory, 0, 0x100000),
			},
			wantRule:  types.ErrInvalidSubType,
			wantNames: []string{"nvs"},
		},
		{
			name: "Exceeds flash size",
			parts: []types.Partition{
				data("nvs", types.DataNVS, 0, 0x6000),
				app("factory", types.AppFactory, 0, 0x400000),
			},
			opts:      Options{FlashSize: 0x400000},
			wantRule:  types.ErrCapacityExceeded,
			wantNames: []string{"factory"},
		},
		{
			name: "Fits flash size exactly",
			parts: []types.Partition{
				app("factory", types.AppFactory, 0, 0x3F0000),
			},
			opts: Options{FlashSize: 0x400000},
		},
		{
			name: "Too many entries for the table",
			parts: []types.Partition{
				app("factory", types.AppFactory, 0, 0x10000),
				data("a", types.DataNVS, 0, 0x1000),
				data("b", types.DataNVS, 0, 0x1000),
			},
			opts:     Options{MaxTableSize: 3 * types.EntrySize},
			wantRule: types.ErrTableTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placed, err := NewTableValidator(tt.opts).Validate(types.Table{Partitions: tt.parts})
			if tt.wantRule == nil {
				require.NoError(t, err)
				for _, p := range placed.Partitions {
					assert.True(t, p.HasOffset, "partition %s placed", p.Name)
				}
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantRule)

			var verr *types.ValidationError
			require.True(t, errors.As(err, &verr))
			if tt.wantNames != nil {
				assert.Equal(t, tt.wantNames, verr.Partitions)
			}
		})
	}
}

func TestTableValidator_AppAlignment(t *testing.T) {
	v := NewTableValidator(DefaultOptions())

	_, err := v.Validate(types.Table{Partitions: []types.Partition{app("factory", types.AppFactory, 0x11000, 0x10000)}})
	assert.ErrorIs(t, err, types.ErrUnaligned)

	_, err = v.Validate(types.Table{Partitions: []types.Partition{app("factory", types.AppFactory, 0x10000, 0x10000)}})
	assert.NoError(t, err)
}

func TestTableValidator_ViolationsOrder(t *testing.T) {
	table := types.Table{Partitions: []types.Partition{
		data("nvs", types.DataNVS, 0x9000, 0x6000),
		data("nvs", types.DataPHY, 0xA000, 0x1000),
		data("otadata", types.DataOTA, 0xF004, 0x1000),
	}}

	errs := NewTableValidator(DefaultOptions()).Violations(table)

	var rules []error
	for _, e := range errs {
		rules = append(rules, e.Rule)
	}
	assert.Equal(t, []error{
		types.ErrDuplicateName,
		types.ErrUnaligned,
		types.ErrOverlap,
		types.ErrNoAppPartition,
		types.ErrOTADataSize,
	}, rules)

	again := NewTableValidator(DefaultOptions()).Violations(table)
	assert.Equal(t, errs, again)
}

func TestTableValidator_OverlapPairs(t *testing.T) {
	table := types.Table{Partitions: []types.Partition{
		app("factory", types.AppFactory, 0x10000, 0x30000),
		data("a", types.DataFAT, 0x20000, 0x1000),
		data("b", types.DataFAT, 0x20800, 0x1000),
	}}

	var pairs [][]string
	for _, e := range NewTableValidator(DefaultOptions()).Violations(table) {
		if errors.Is(e, types.ErrOverlap) {
			pairs = append(pairs, e.Partitions)
		}
	}
	assert.Equal(t, [][]string{{"factory", "a"}, {"factory", "b"}, {"a", "b"}}, pairs)
}

func TestTableValidator_UnplaceablePartition(t *testing.T) {
	table := types.Table{Partitions: []types.Partition{
		app("factory", types.AppFactory, 0x10000, 0x100000),
		data("huge", types.DataFAT, 0x110000, 0xFFEE0000),
		data("more", types.DataFAT, 0, 0x20000),
	}}

	_, err := NewTableValidator(DefaultOptions()).Validate(table)
	assert.ErrorIs(t, err, types.ErrInvalidOffset)
}
