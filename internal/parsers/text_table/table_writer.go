package texttable

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-esp-partition/internal/interfaces"
	"github.com/deploymenttheory/go-esp-partition/internal/types"
)

var _ interfaces.TableEncoder = (*TableWriter)(nil)

// HeaderComment is the comment row emitted before the partitions when the
// header option is enabled
const HeaderComment = "# Name, Type, SubType, Offset, Size, Flags"

const titleComment = "# ESP-IDF Partition Table"

// WriterOption configures a TableWriter
type WriterOption func(*TableWriter)

// WithHeader controls whether the rendered table starts with comment rows
// naming the columns
func WithHeader(enabled bool) WriterOption {
	return func(tw *TableWriter) {
		tw.header = enabled
	}
}

// TableWriter renders partition tables in their comma separated form
type TableWriter struct {
	header bool
}

// NewTableWriter creates a TableWriter. No header is written by default.
func NewTableWriter(opts ...WriterOption) *TableWriter {
	tw := &TableWriter{}
	for _, opt := range opts {
		opt(tw)
	}
	return tw
}

// Encode renders one row per partition in table order. Offsets and sizes are
// written in hexadecimal; partitions without an offset get an empty column.
func (tw *TableWriter) Encode(table types.Table) ([]byte, error) {
	var buf bytes.Buffer

	if tw.header {
		buf.WriteString(titleComment + "\n")
		buf.WriteString(HeaderComment + "\n")
	}

	for i, p := range table.Partitions {
		if err := checkRenderableName(p.Name); err != nil {
			return nil, fmt.Errorf("failed to render partition %d: %w", i, err)
		}
		buf.WriteString(FormatRow(p))
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// FormatRow returns the comma separated row for p, without a line terminator
func FormatRow(p types.Partition) string {
	offset := ""
	if p.HasOffset {
		offset = fmt.Sprintf("%#x", p.Offset)
	}
	return strings.Join([]string{
		p.Name,
		p.Type.String(),
		p.SubType.String(),
		offset,
		fmt.Sprintf("%#x", p.Size),
		p.Flags.String(),
	}, ",")
}

// checkRenderableName rejects names that would not parse back to themselves
func checkRenderableName(name string) error {
	if err := types.CheckName(name); err != nil {
		return err
	}
	if strings.ContainsAny(name, ",\r\n") || strings.HasPrefix(name, commentStart) || strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q cannot be written as a csv field", types.ErrInvalidName, name)
	}
	return nil
}
