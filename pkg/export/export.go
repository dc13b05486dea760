package export

import "fmt"

const (
	FormatNone = "none"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Dataset is a titled table. Every row holds one cell per header.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a dataset into file bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	Extension() string
}

// ForFormat picks the renderer for a report format name. A nil renderer with
// a nil error means the report is disabled.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", FormatNone:
		return nil, nil
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

func validate(data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	for i, row := range data.Rows {
		if len(row) != len(data.Headers) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(data.Headers))
		}
	}
	return nil
}
