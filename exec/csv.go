package exec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// CSVOptions controls CSV import and export.
type CSVOptions struct {
	Header    bool // first row holds column names (import) / write names (export)
	Delimiter rune // 0 means comma
}

// ReadCSV loads a table from CSV data. Each column's values are sniffed in
// order int, float, bool; a column where every non-empty cell parses as one
// of those becomes typed, anything else stays text. Empty cells are NULL.
// Blank lines hold no record and are skipped.
func ReadCSV(r io.Reader, tableName string, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return NewRowTable(0), nil
	}

	var names []string
	rows := records
	if opts.Header {
		names = records[0]
		rows = records[1:]
	} else {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = "c" + strconv.Itoa(i)
		}
	}

	columns := make([]Column, len(names))
	for c, name := range names {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if c < len(row) {
				cells[i] = row[c]
			}
		}
		columns[c] = NewColumn(tableName, name, sniffColumn(cells))
	}
	return NewTable(columns...)
}

// sniffColumn converts text cells to the narrowest type covering all
// non-empty cells.
func sniffColumn(cells []string) []any {
	allInt, allFloat, allBool := true, true, true
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			allFloat = false
		}
		lower := strings.ToLower(cell)
		if lower != "true" && lower != "false" {
			allBool = false
		}
	}

	values := make([]any, len(cells))
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		switch {
		case allInt:
			values[i], _ = strconv.ParseInt(cell, 10, 64)
		case allFloat:
			values[i], _ = strconv.ParseFloat(cell, 64)
		case allBool:
			values[i] = strings.ToLower(cell) == "true"
		default:
			values[i] = cell
		}
	}
	return values
}

// WriteCSV writes the table as CSV. NULLs become empty cells.
func WriteCSV(w io.Writer, t *Table, opts CSVOptions) error {
	writer := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}

	if opts.Header {
		names := make([]string, t.NumCols())
		for i, col := range t.Columns() {
			names[i] = col.Key.Name
		}
		if err := writer.Write(names); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}

	for i := 0; i < t.NumRows(); i++ {
		record := make([]string, t.NumCols())
		for c, value := range t.Row(i) {
			if value != nil {
				record[c] = cast.ToString(value)
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
