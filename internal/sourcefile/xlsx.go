package sourcefile

import (
	"fmt"

	"github.com/tealeg/xlsx/v2"
)

// ReadXLSX parses the first sheet of an XLSX workbook into a Table.
// The first row is treated as the header.
func ReadXLSX(data []byte) (*Table, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sheet := file.Sheets[0]
	if len(sheet.Rows) == 0 {
		return &Table{}, nil
	}

	header := rowToStrings(sheet.Rows[0])
	records := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		records = append(records, rowToStrings(row))
	}

	return buildTable(header, records), nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
