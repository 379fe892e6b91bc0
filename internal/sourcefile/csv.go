package sourcefile

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses delimited text with a header row into a Table.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	return buildTable(records[0], records[1:]), nil
}
