// Package exec executes logical plans against in-memory columnar tables.
//
// A Table is an ordered list of equal-length column vectors, each keyed by a
// (table, column) pair. Values are dynamically typed: nil, int64, float64,
// string, or bool. Run walks a plan bottom-up, materializing one table per
// operator.
package exec

import (
	"fmt"

	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrUnknownTable is returned when the catalog has no table by the
	// requested name.
	ErrUnknownTable = errors.NewKind("unknown table %q")

	// ErrUnknownColumn is returned when a column reference resolves to
	// nothing.
	ErrUnknownColumn = errors.NewKind("unknown column %q")

	// ErrAmbiguousColumn is returned when an unqualified column reference
	// matches more than one column.
	ErrAmbiguousColumn = errors.NewKind("ambiguous column %q")

	// ErrColumnLength is returned when a table is built from columns of
	// differing lengths.
	ErrColumnLength = errors.NewKind("column %q has %d values, expected %d")
)

// Catalog resolves table names for GetTable leaves.
type Catalog interface {
	Table(name string) (*Table, error)
}

// ColKey identifies a column: the table (or alias) it belongs to and its
// name. Computed columns have an empty table part.
type ColKey struct {
	Table string
	Name  string
}

// String renders the key as table.name, or just the name for computed
// columns.
func (k ColKey) String() string {
	if k.Table == "" {
		return k.Name
	}
	return k.Table + "." + k.Name
}

// Column is a named value vector.
type Column struct {
	Key    ColKey
	Values []any
}

// NewColumn creates a column keyed by (table, name).
func NewColumn(table, name string, values []any) Column {
	return Column{Key: ColKey{Table: table, Name: name}, Values: values}
}

// Table is an immutable columnar table. A table may have rows without
// columns (the DUAL relation is one row, no columns), so the row count is
// tracked independently.
type Table struct {
	columns []Column
	length  int
}

// NewTable builds a table from columns, which must all have the same length.
func NewTable(columns ...Column) (*Table, error) {
	length := 0
	if len(columns) > 0 {
		length = len(columns[0].Values)
	}
	for _, col := range columns {
		if len(col.Values) != length {
			return nil, ErrColumnLength.New(col.Key.String(), len(col.Values), length)
		}
	}
	return &Table{columns: columns, length: length}, nil
}

// NewRowTable builds a table with the given number of rows and no columns.
func NewRowTable(rows int) *Table {
	return &Table{length: rows}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.length }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns the table's columns in order. The slice must not be
// modified.
func (t *Table) Columns() []Column { return t.columns }

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for c, col := range t.columns {
		row[c] = col.Values[i]
	}
	return row
}

// WithTableName returns a copy of the table with every column re-keyed to
// the given table name. Used when a GetTable leaf carries an alias.
func (t *Table) WithTableName(name string) *Table {
	columns := make([]Column, len(t.columns))
	for i, col := range t.columns {
		columns[i] = Column{Key: ColKey{Table: name, Name: col.Key.Name}, Values: col.Values}
	}
	return &Table{columns: columns, length: t.length}
}

// Resolve finds the index of the column referenced by a 1-, 2-, or 3-part
// dotted path. One part matches by name and must be unambiguous; two parts
// match (table, name); three parts ignore the leading schema component.
func (t *Table) Resolve(parts []string) (int, error) {
	switch len(parts) {
	case 1:
		found := -1
		for i, col := range t.columns {
			if col.Key.Name == parts[0] {
				if found >= 0 {
					return 0, ErrAmbiguousColumn.New(parts[0])
				}
				found = i
			}
		}
		if found < 0 {
			return 0, ErrUnknownColumn.New(parts[0])
		}
		return found, nil

	case 2, 3:
		table, name := parts[len(parts)-2], parts[len(parts)-1]
		for i, col := range t.columns {
			if col.Key.Table == table && col.Key.Name == name {
				return i, nil
			}
		}
		return 0, ErrUnknownColumn.New(table + "." + name)

	default:
		return 0, ErrUnknownColumn.New(fmt.Sprintf("%v", parts))
	}
}

// selectRows builds a new table holding the given row indices, in order.
// Indices may repeat.
func (t *Table) selectRows(indices []int) *Table {
	columns := make([]Column, len(t.columns))
	for c, col := range t.columns {
		values := make([]any, len(indices))
		for r, idx := range indices {
			values[r] = col.Values[idx]
		}
		columns[c] = Column{Key: col.Key, Values: values}
	}
	return &Table{columns: columns, length: len(indices)}
}
