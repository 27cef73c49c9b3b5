package inspect

import (
	"fmt"

	"github.com/deploymenttheory/go-esp-partition/internal/device"
	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

// Request represents a table inspection request
type Request struct {
	InputPath string
	// Format is "auto", "csv" or "bin"
	Format string
	// TableOptions are passed to parsing and validation
	TableOptions []partitiontable.Option
	// Image, when set, reads the table out of a whole flash image
	Image *device.ImageConfig

	// Search criteria; empty fields match everything
	Name    string
	Type    string
	SubType string
}

// Response represents inspection results
type Response struct {
	Layout     LayoutInfo        `json:"layout" yaml:"layout"`
	Partitions []PartitionResult `json:"partitions" yaml:"partitions"`
	TotalFound int               `json:"total_found" yaml:"total_found"`
	Violations []string          `json:"violations,omitempty" yaml:"violations,omitempty"`
	Query      SearchQuery       `json:"query" yaml:"query"`
}

// LayoutInfo describes the inspected table as a whole
type LayoutInfo struct {
	// ID identifies the binary image of a valid table; empty when invalid
	ID             string `json:"id,omitempty" yaml:"id,omitempty"`
	Source         string `json:"source" yaml:"source"`
	Format         string `json:"format" yaml:"format"`
	Entries        int    `json:"entries" yaml:"entries"`
	Valid          bool   `json:"valid" yaml:"valid"`
	ChecksumStatus string `json:"checksum_status" yaml:"checksum_status"`
	// FlashUsed is the end of the last partition
	FlashUsed uint64 `json:"flash_used" yaml:"flash_used"`
	// ImageOffset is where the table was found in a flash image
	ImageOffset string `json:"image_offset,omitempty" yaml:"image_offset,omitempty"`
}

// PartitionResult represents one partition in the output
type PartitionResult struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	SubType string `json:"subtype" yaml:"subtype"`
	// Offset is empty when the partition could not be placed
	Offset    string `json:"offset" yaml:"offset"`
	Size      uint32 `json:"size" yaml:"size"`
	End       string `json:"end,omitempty" yaml:"end,omitempty"`
	Flags     string `json:"flags,omitempty" yaml:"flags,omitempty"`
	Encrypted bool   `json:"encrypted" yaml:"encrypted"`
	ReadOnly  bool   `json:"readonly" yaml:"readonly"`
}

// SearchQuery represents the executed search parameters
type SearchQuery struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	SubType string `json:"subtype,omitempty" yaml:"subtype,omitempty"`
}

// IsEmpty reports whether the query matches every partition
func (q SearchQuery) IsEmpty() bool {
	return q.Name == "" && q.Type == "" && q.SubType == ""
}

// newPartitionResult converts a partition for output
func newPartitionResult(p partitiontable.Partition) PartitionResult {
	result := PartitionResult{
		Name:      p.Name,
		Type:      p.Type.String(),
		SubType:   p.SubType.String(),
		Size:      p.Size,
		Flags:     p.Flags.String(),
		Encrypted: p.Encrypted(),
		ReadOnly:  p.Flags.Has(partitiontable.FlagReadOnly),
	}
	if p.HasOffset {
		result.Offset = fmt.Sprintf("%#x", p.Offset)
		result.End = fmt.Sprintf("%#x", p.End())
	}
	return result
}

// FormatSize returns a human-readable size string
func (p *PartitionResult) FormatSize() string {
	return formatBytes(uint64(p.Size))
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
