package convert

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-esp-partition/internal/device"
	"github.com/deploymenttheory/go-esp-partition/pkg/app"
	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

const singleAppCSV = `nvs,      data, nvs,     0x9000,  0x6000,
phy_init, data, phy,     0xf000,  0x1000,
factory,  app,  factory, 0x10000, 1M,
`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantTo  string
		wantErr bool
	}{
		{"defaults to auto", Request{InputPath: "a.csv"}, FormatAuto, false},
		{"extension picks binary", Request{InputPath: "a.csv", OutputPath: "out/a.bin"}, FormatBinary, false},
		{"extension picks csv", Request{InputPath: "a.bin", OutputPath: "a.CSV"}, FormatCSV, false},
		{"explicit format wins", Request{InputPath: "a.csv", OutputPath: "a.bin", To: FormatCSV}, FormatCSV, false},
		{"missing input", Request{}, "", true},
		{"bad format", Request{InputPath: "a.csv", To: "hex"}, "", true},
		{"same path", Request{InputPath: "a.csv", OutputPath: "./a.csv", To: FormatCSV}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, app.ErrCodeInvalidInput, app.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTo, tt.req.To)
		})
	}
}

func TestHandle_CSVToBinaryAndBack(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "partitions.csv", []byte(singleAppCSV))
	binPath := filepath.Join(dir, "build", "partitions.bin")

	resp, err := Handle(app.NewContext(), &Request{InputPath: input, OutputPath: binPath})
	require.NoError(t, err)
	assert.Equal(t, "csv", resp.InputFormat)
	assert.Equal(t, "binary", resp.OutputFormat)
	assert.Equal(t, 3, resp.Entries)
	assert.Equal(t, partitiontable.DefaultMaxTableSize, resp.BytesWritten)
	assert.Nil(t, resp.Data)

	image, err := os.ReadFile(binPath)
	require.NoError(t, err)
	table, err := partitiontable.FromBinary(image)
	require.NoError(t, err)
	assert.Equal(t, partitiontable.ChecksumVerified, table.ChecksumStatus())

	// Back to csv, in memory
	resp, err = Handle(app.NewContext(), &Request{InputPath: binPath})
	require.NoError(t, err)
	assert.Equal(t, "binary", resp.InputFormat)
	assert.Equal(t, "csv", resp.OutputFormat)
	require.NotEmpty(t, resp.Data)

	roundTrip, err := partitiontable.FromCSV(resp.Data)
	require.NoError(t, err)
	original, err := partitiontable.FromCSV([]byte(singleAppCSV))
	require.NoError(t, err)
	assert.Equal(t, original.Partitions(), roundTrip.Partitions())
}

func TestHandle_Header(t *testing.T) {
	input := writeFile(t, t.TempDir(), "partitions.csv", []byte(singleAppCSV))

	resp, err := Handle(app.NewContext(), &Request{InputPath: input, To: FormatCSV, Header: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(resp.Data), "#"))

	resp, err = Handle(app.NewContext(), &Request{InputPath: input, To: FormatCSV})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(resp.Data), "nvs,"))
}

func TestHandle_MaxTableSize(t *testing.T) {
	input := writeFile(t, t.TempDir(), "partitions.csv", []byte(singleAppCSV))

	resp, err := Handle(app.NewContext(), &Request{
		InputPath:    input,
		To:           FormatBinary,
		TableOptions: []partitiontable.Option{partitiontable.WithMaxTableSize(0x80)},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 0x80)

	_, err = Handle(app.NewContext(), &Request{
		InputPath:    input,
		To:           FormatBinary,
		TableOptions: []partitiontable.Option{partitiontable.WithMaxTableSize(0x60)},
	})
	require.Error(t, err)
	assert.Equal(t, app.ErrCodeValidationFailed, app.ErrorCode(err))
	assert.ErrorIs(t, err, partitiontable.ErrTableTooLarge)
}

func TestHandle_InvalidTableIsNotWritten(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "partitions.csv", []byte("nvs, data, nvs, 0x9000, 0x6000,\n"))
	output := filepath.Join(dir, "partitions.bin")

	_, err := Handle(app.NewContext(), &Request{InputPath: input, OutputPath: output})
	require.Error(t, err)
	assert.Equal(t, app.ErrCodeValidationFailed, app.ErrorCode(err))
	assert.ErrorIs(t, err, partitiontable.ErrNoAppPartition)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHandle_FromFlashImage(t *testing.T) {
	dir := t.TempDir()
	table, err := partitiontable.FromCSV([]byte(singleAppCSV))
	require.NoError(t, err)
	encoded, err := table.Binary()
	require.NoError(t, err)

	image := bytes.Repeat([]byte{0xFF}, 0x10000)
	copy(image[0x8000:], encoded)
	input := writeFile(t, dir, "flash_dump.bin", image)

	resp, err := Handle(app.NewContext(), &Request{
		InputPath: input,
		To:        FormatCSV,
		Image:     &device.ImageConfig{},
	})
	require.NoError(t, err)
	assert.Equal(t, "binary", resp.InputFormat)
	assert.Equal(t, 3, resp.Entries)
	assert.Contains(t, string(resp.Data), "factory,app,factory,0x10000,0x100000,")
}
