package main

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/bawdo/quarry/exec"
	"github.com/bawdo/quarry/internal/quoting"
)

var driverName = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// importTable reads an entire table from an external database into an
// in-memory columnar table.
func importTable(engine, dsn, table string) (*exec.Table, error) {
	driver, ok := driverName[engine]
	if !ok {
		return nil, fmt.Errorf("no driver for engine %q", engine)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	quoted := quoting.DoubleQuote(table)
	if engine == "mysql" {
		quoted = "`" + table + "`"
	}
	rows, err := db.Query("SELECT * FROM " + quoted)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTable(rows, table)
}

// scanTable drains a database/sql result into column vectors. Values arrive
// through the driver's dynamic types: []byte becomes string, int and int32
// become int64, float32 becomes float64; any other type is kept as the
// driver returned it.
func scanTable(rows *sql.Rows, tableName string) (*exec.Table, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	values := make([][]any, len(names))
	for rows.Next() {
		cells := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for i, cell := range cells {
			values[i] = append(values[i], narrowValue(cell))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	columns := make([]exec.Column, len(names))
	for i, name := range names {
		columns[i] = exec.NewColumn(tableName, name, values[i])
	}
	return exec.NewTable(columns...)
}

func narrowValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
