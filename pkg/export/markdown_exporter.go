package export

import (
	"bytes"
	"fmt"
	"strings"
)

// MarkdownExporter renders datasets as a GitHub-flavored markdown table.
type MarkdownExporter struct{}

// NewMarkdownExporter constructs a markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Render produces a markdown document with an optional title heading.
func (e *MarkdownExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("markdown requires at least one header")
	}

	buf := &bytes.Buffer{}
	if title != "" {
		fmt.Fprintf(buf, "# %s\n\n", title)
	}

	buf.WriteString("| " + strings.Join(data.Headers, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(data.Headers)) + "\n")

	for _, row := range data.Rows {
		cells := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			cells[i] = escapeCell(row[header])
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return buf.Bytes(), nil
}

func escapeCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(value, "\n", " ")
}
