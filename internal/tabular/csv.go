package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV decodes a CSV stream into a Table. The first record is the header
// row; every cell is kept as raw text. Records shorter than the header are
// padded with empty cells, longer ones are truncated.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: failed to read header: %w", err)
	}

	table := &Table{Columns: append([]string(nil), header...)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: failed to read record: %w", err)
		}

		row := make(Row, len(header))
		for i, c := range header {
			if i < len(record) {
				row[c] = record[i]
			} else {
				row[c] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
