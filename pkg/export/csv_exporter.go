package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer writes a dataset in one output format.
type Renderer interface {
	Write(w io.Writer, data Dataset) error
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer for "csv" or "pdf".
func ForFormat(format string) (Renderer, bool) {
	switch format {
	case "", "csv":
		return NewCSVExporter(), true
	case "pdf":
		return NewPDFExporter(), true
	default:
		return nil, false
	}
}

// CSVExporter renders Dataset records as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) ContentType() string { return "text/csv" }

func (e *CSVExporter) Extension() string { return "csv" }

// Write streams the header row followed by every data row.
func (e *CSVExporter) Write(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("csv requires at least one header")
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(data.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		copy(record, row)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
