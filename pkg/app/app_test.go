package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

func TestErrorCode(t *testing.T) {
	_, parseErr := partitiontable.ParseCSV([]byte("nvs, data, nvs"))
	require.Error(t, parseErr)

	_, validateErr := partitiontable.New().Validate()
	require.Error(t, validateErr)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"common error", NewError(ErrCodeNotFound, "missing", nil), ErrCodeNotFound},
		{"wrapped common error", fmt.Errorf("outer: %w", NewError(ErrCodeIOFailed, "io", nil)), ErrCodeIOFailed},
		{"parse error", parseErr, ErrCodeParseFailed},
		{"checksum error", &partitiontable.ChecksumError{}, ErrCodeParseFailed},
		{"validation error", validateErr, ErrCodeValidationFailed},
		{"other error", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestWrapTableError(t *testing.T) {
	_, err := partitiontable.New().Validate()
	wrapped := WrapTableError("table is invalid", err)

	assert.Equal(t, ErrCodeValidationFailed, wrapped.Code)
	assert.ErrorIs(t, wrapped, partitiontable.ErrNoAppPartition)
	assert.True(t, strings.HasPrefix(wrapped.Error(), "table is invalid: "))

	assert.Equal(t, ErrCodeInvalidInput, WrapTableError("x", errors.New("boom")).Code)
}

func TestReadWrite(t *testing.T) {
	ctx := NewContext()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "table.csv")

	require.NoError(t, WriteOutput(ctx, path, []byte("hello")))

	data, err := ReadInput(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = ReadInput(ctx, filepath.Join(dir, "missing.csv"))
	assert.Equal(t, ErrCodeIOFailed, ErrorCode(err))

	_, err = ReadInput(ctx, dir)
	assert.Equal(t, ErrCodeInvalidInput, ErrorCode(err))

	big := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(big, make([]byte, MaxInputSize+1), 0o644))
	_, err = ReadInput(ctx, big)
	assert.Equal(t, ErrCodeInvalidInput, ErrorCode(err))
}

func TestReadInput_Cancelled(t *testing.T) {
	ctx := NewContext()
	cancelled, cancel := context.WithCancel(ctx.Context)
	cancel()
	ctx.Context = cancelled

	_, err := ReadInput(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithDefaultTimeout(t *testing.T) {
	t.Run("bounded", func(t *testing.T) {
		ctx := NewContext()
		ctx.DefaultTimeout = time.Minute

		bounded, cancel := ctx.WithDefaultTimeout()
		defer cancel()

		deadline, ok := bounded.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
		assert.Equal(t, ctx.OutputFormat, bounded.OutputFormat)

		_, ok = ctx.Deadline()
		assert.False(t, ok, "parent context must stay unbounded")

		cancel()
		_, err := ReadInput(bounded, "anything")
		assert.Equal(t, ErrCodeIOFailed, ErrorCode(err))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("disabled", func(t *testing.T) {
		ctx := NewContext()
		ctx.DefaultTimeout = 0

		bounded, cancel := ctx.WithDefaultTimeout()
		defer cancel()

		_, ok := bounded.Deadline()
		assert.False(t, ok)
		assert.Same(t, ctx, bounded)
	})
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		quiet     bool
		wantDebug bool
		wantWarn  bool
	}{
		{"default", false, false, false, true},
		{"verbose", true, false, true, true},
		{"quiet", false, true, false, false},
		{"quiet wins", true, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := NewContext()
			ctx.Logger = NewLogger(&buf, tt.verbose, tt.quiet)

			ctx.Log("debug message")
			ctx.Warn("warn message")
			ctx.Error("error message")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug message"))
			assert.Equal(t, tt.wantWarn, strings.Contains(out, "warn message"))
			assert.Contains(t, out, "error message")
		})
	}
}
