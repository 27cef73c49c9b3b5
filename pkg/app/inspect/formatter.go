package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// FormatOutput writes inspection results to w in the given output format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatTable formats results as a table
func formatTable(w io.Writer, response *Response) error {
	if len(response.Partitions) == 0 {
		fmt.Fprintln(w, "No partitions found matching the search criteria.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

		// Header
		fmt.Fprintf(tw, "NAME\tTYPE\tSUBTYPE\tOFFSET\tSIZE\tFLAGS\n")
		fmt.Fprintf(tw, "----\t----\t-------\t------\t----\t-----\n")

		// Data rows, in table order
		for _, p := range response.Partitions {
			offset := p.Offset
			if offset == "" {
				offset = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%#x (%s)\t%s\n",
				p.Name, p.Type, p.SubType, offset, p.Size, p.FormatSize(), p.Flags)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	// Summary
	fmt.Fprintf(w, "\n%s\n", FormatSummary(response))
	for _, v := range response.Violations {
		fmt.Fprintf(w, "  - %s\n", v)
	}
	return nil
}

// formatJSON formats results as JSON
func formatJSON(w io.Writer, response *Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// formatYAML formats results as YAML
func formatYAML(w io.Writer, response *Response) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}

// FormatSummary provides a one line summary of the inspected table
func FormatSummary(response *Response) string {
	layout := response.Layout

	summary := fmt.Sprintf("%s (%s): %d entr", layout.Source, layout.Format, layout.Entries)
	if layout.Entries == 1 {
		summary += "y"
	} else {
		summary += "ies"
	}

	if !response.Query.IsEmpty() {
		summary += fmt.Sprintf(", %d matching", response.TotalFound)
	}
	if layout.FlashUsed > 0 {
		summary += fmt.Sprintf(", %s of flash used", formatBytes(layout.FlashUsed))
	}
	if layout.Format == "binary" {
		summary += ", checksum " + layout.ChecksumStatus
	}

	if layout.Valid {
		summary += ", valid, layout " + layout.ID
	} else {
		summary += fmt.Sprintf(", INVALID (%d violations)", len(response.Violations))
	}
	return summary
}
