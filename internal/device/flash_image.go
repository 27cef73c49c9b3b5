// Package device locates the partition table inside a raw flash image, such
// as the dump written by "esptool.py read_flash".
package device

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

// scanLimit bounds how far into an image the table is searched for. The
// bootloader never looks past the first MiB.
const scanLimit = 1 << 20

// ErrTableNotFound is returned when no partition table record is found
var ErrTableNotFound = errors.New("partition table not found in flash image")

// ImageConfig controls how the table is located in an image
type ImageConfig struct {
	// TableOffset is checked first; zero means the default 0x8000
	TableOffset uint32
	// MaxTableSize is the number of bytes read from the table offset
	MaxTableSize int
	// AutoDetect scans other 4 KiB aligned offsets when TableOffset holds no table
	AutoDetect bool
}

// FlashImage provides access to the partition table within a flash image
type FlashImage struct {
	file        *os.File
	size        int64
	tableOffset int64
	tableSize   int
}

// OpenFlashImage opens a flash image and finds the partition table within it
func OpenFlashImage(path string, config ImageConfig) (*FlashImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flash image: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat flash image: %w", err)
	}

	image := &FlashImage{
		file:      file,
		size:      stat.Size(),
		tableSize: config.MaxTableSize,
	}
	if image.tableSize <= 0 {
		image.tableSize = types.DefaultMaxTableSize
	}

	preferred := int64(config.TableOffset)
	if preferred == 0 {
		preferred = types.DefaultTableOffset
	}

	if image.hasTableAt(preferred) {
		image.tableOffset = preferred
		return image, nil
	}
	if !config.AutoDetect {
		file.Close()
		return nil, fmt.Errorf("%w at %#x", ErrTableNotFound, preferred)
	}

	offset, err := image.detectTableOffset()
	if err != nil {
		file.Close()
		return nil, err
	}
	image.tableOffset = offset
	return image, nil
}

// detectTableOffset scans 4 KiB aligned offsets for an entry record
func (f *FlashImage) detectTableOffset() (int64, error) {
	limit := f.size
	if limit > scanLimit {
		limit = scanLimit
	}
	for offset := int64(0); offset+types.EntrySize <= limit; offset += types.FlashSectorSize {
		if f.hasTableAt(offset) {
			return offset, nil
		}
	}
	return 0, ErrTableNotFound
}

// hasTableAt reports whether an entry record starts at offset
func (f *FlashImage) hasTableAt(offset int64) bool {
	magic := make([]byte, len(types.EntryMagic))
	if _, err := f.file.ReadAt(magic, offset); err != nil {
		return false
	}
	return bytes.Equal(magic, types.EntryMagic[:])
}

// ReadTable returns the table region. An image that ends early yields the
// whole records that were present.
func (f *FlashImage) ReadTable() ([]byte, error) {
	buf := make([]byte, f.tableSize)
	n, err := f.file.ReadAt(buf, f.tableOffset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read partition table at %#x: %w", f.tableOffset, err)
	}
	return buf[:n-n%types.EntrySize], nil
}

// ReadAt implements io.ReaderAt relative to the start of the table
func (f *FlashImage) ReadAt(p []byte, off int64) (n int, err error) {
	return f.file.ReadAt(p, f.tableOffset+off)
}

// TableOffset returns the flash address the table was found at
func (f *FlashImage) TableOffset() int64 {
	return f.tableOffset
}

// Size returns the size of the whole image
func (f *FlashImage) Size() int64 {
	return f.size
}

// Close closes the image file
func (f *FlashImage) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}
