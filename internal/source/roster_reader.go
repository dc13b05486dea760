package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/roster-etl/internal/models"
)

// RosterReader reads a roster from a delimited or spreadsheet file.
type RosterReader struct {
	sheet     string
	delimiter rune
}

// RosterOption customises a RosterReader.
type RosterOption func(*RosterReader)

// WithSheet selects the worksheet read from .xlsx rosters.
func WithSheet(name string) RosterOption {
	return func(r *RosterReader) { r.sheet = name }
}

// WithDelimiter overrides the CSV field delimiter.
func WithDelimiter(d rune) RosterOption {
	return func(r *RosterReader) { r.delimiter = d }
}

// NewRosterReader builds a roster reader.
func NewRosterReader(opts ...RosterOption) *RosterReader {
	r := &RosterReader{delimiter: ','}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read loads the roster at path, choosing the format by extension.
func (r *RosterReader) Read(ctx context.Context, path string) (*models.Roster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return r.readXLSX(path)
	default:
		return r.readCSV(path)
	}
}

func (r *RosterReader) readCSV(path string) (*models.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	cr := csv.NewReader(stripUTF8BOM(bufio.NewReader(f)))
	cr.Comma = r.delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: missing header", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	columns, err := normalizeHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	roster := &models.Roster{Source: path, Columns: columns}
	for {
		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		roster.Rows = append(roster.Rows, buildRow(line, columns, rec))
	}
	return roster, nil
}

func (r *RosterReader) readXLSX(path string) (*models.Roster, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: sheet %q: %w", path, sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}
	columns, err := normalizeHeader(records[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	roster := &models.Roster{Source: path, Columns: columns}
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		roster.Rows = append(roster.Rows, buildRow(i+2, columns, rec))
	}
	return roster, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func normalizeHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if !utf8.ValidString(name) {
			return nil, fmt.Errorf("invalid header encoding in column %d", i+1)
		}
		if name == "" {
			return nil, fmt.Errorf("empty header in column %d", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate header column: %s", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}
	return columns, nil
}

func buildRow(line int, columns []string, rec []string) models.RosterRow {
	values := make(map[string]string, len(columns))
	for i, name := range columns {
		if i < len(rec) {
			values[name] = rec[i]
		}
	}
	return models.RosterRow{Line: line, Values: values}
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
