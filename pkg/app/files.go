package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deploymenttheory/go-esp-partition/internal/device"
)

// MaxInputSize bounds the files commands will read. Partition tables are a
// few KiB; anything much larger is not a table.
const MaxInputSize = 1 << 20

// ReadInput reads a partition table file
func ReadInput(ctx *Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewError(ErrCodeIOFailed, "operation cancelled", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, NewError(ErrCodeIOFailed, fmt.Sprintf("cannot access %s", path), err)
	}
	if info.IsDir() {
		return nil, NewError(ErrCodeInvalidInput, fmt.Sprintf("%s is a directory", path), nil)
	}
	if info.Size() > MaxInputSize {
		return nil, NewError(ErrCodeInvalidInput, fmt.Sprintf("%s is %d bytes, larger than any partition table", path, info.Size()), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(ErrCodeIOFailed, fmt.Sprintf("failed to read %s", path), err)
	}
	ctx.Log("read input", "path", path, "bytes", len(data))
	return data, nil
}

// WriteOutput writes data to path, creating parent directories
func WriteOutput(ctx *Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return NewError(ErrCodeIOFailed, "operation cancelled", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return NewError(ErrCodeIOFailed, fmt.Sprintf("failed to create %s", dir), err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return NewError(ErrCodeIOFailed, fmt.Sprintf("failed to write %s", path), err)
	}
	ctx.Log("wrote output", "path", path, "bytes", len(data))
	return nil
}

// ReadFlashImage reads the partition table region out of a flash image and
// returns it with the offset it was found at
func ReadFlashImage(ctx *Context, path string, config device.ImageConfig) ([]byte, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, NewError(ErrCodeIOFailed, "operation cancelled", err)
	}

	image, err := device.OpenFlashImage(path, config)
	if errors.Is(err, device.ErrTableNotFound) {
		return nil, 0, NewError(ErrCodeNotFound, fmt.Sprintf("no partition table in %s", path), err)
	} else if err != nil {
		return nil, 0, NewError(ErrCodeIOFailed, fmt.Sprintf("cannot open %s", path), err)
	}
	defer image.Close()

	data, err := image.ReadTable()
	if err != nil {
		return nil, 0, NewError(ErrCodeIOFailed, fmt.Sprintf("failed to read %s", path), err)
	}
	ctx.Log("read flash image", "path", path, "image_size", image.Size(), "table_offset", image.TableOffset())
	return data, image.TableOffset(), nil
}
