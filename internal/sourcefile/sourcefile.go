// Package sourcefile reads XLSX and CSV exports into column-name-keyed rows.
// Files are read fully into memory; the importer processes them in file order.
package sourcefile

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Row maps a source column name to the raw cell text for one record.
type Row map[string]string

// Get returns the raw value for a column, and whether the column was present.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Table is the parsed contents of one source file.
type Table struct {
	Columns []string
	Rows    []Row
}

// Read parses a source file based on its extension.
// Supported extensions: .csv, .xlsx, .xls.
func Read(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx", ".xls":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return ReadXLSX(data)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// buildTable assembles a Table from a header row and data rows.
// Rows shorter than the header leave trailing columns absent; cells beyond
// the header are dropped. Fully blank rows are skipped.
func buildTable(header []string, records [][]string) *Table {
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	table := &Table{Columns: columns}

	for _, record := range records {
		row := make(Row, len(columns))
		blank := true
		for i, name := range columns {
			if name == "" || i >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[i])
			row[name] = value
			if value != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}
