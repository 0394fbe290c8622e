package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/bawdo/quarry/exec"
)

// formatTable renders a result table with padded columns, psql-style.
func formatTable(t *exec.Table, maxRows int) string {
	if t.NumCols() == 0 {
		return fmt.Sprintf("(%d rows, no columns)\n", t.NumRows())
	}

	columns := make([]string, t.NumCols())
	for i, col := range t.Columns() {
		columns[i] = col.Key.Name
	}

	truncated := false
	n := t.NumRows()
	if n > maxRows {
		n = maxRows
		truncated = true
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, t.NumCols())
		for c, value := range t.Row(i) {
			row[c] = formatValue(value)
		}
		rows[i] = row
	}

	result := renderGrid(columns, rows)
	if truncated {
		result += fmt.Sprintf("(truncated at %d rows)\n", maxRows)
	}
	return result
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return cast.ToString(v)
}

func renderGrid(columns []string, rows [][]string) string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	sep := buildSeparator(widths)

	b.WriteString(sep)
	b.WriteByte('|')
	for i, c := range columns {
		fmt.Fprintf(&b, " %-*s |", widths[i], c)
	}
	b.WriteByte('\n')
	b.WriteString(sep)

	for _, row := range rows {
		b.WriteByte('|')
		for i, cell := range row {
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteByte('\n')
	}

	b.WriteString(sep)

	if len(rows) == 1 {
		b.WriteString("(1 row)\n")
	} else {
		fmt.Fprintf(&b, "(%d rows)\n", len(rows))
	}
	return b.String()
}

func buildSeparator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		for j := 0; j < w+2; j++ {
			b.WriteByte('-')
		}
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}
