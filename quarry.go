// Package quarry executes a subset of SQL SELECT statements against an
// in-memory catalog of named, column-oriented tables.
//
// A Context holds the catalog. Select parses, compiles, and runs a query in
// one call; Exec additionally handles CREATE TABLE AS, DROP TABLE,
// COPY FROM/TO, and SHOW. The subsystems are importable on their own:
//   - github.com/bawdo/quarry/parser (SQL text -> AST)
//   - github.com/bawdo/quarry/nodes (AST node types)
//   - github.com/bawdo/quarry/compiler (AST -> logical plan)
//   - github.com/bawdo/quarry/plan (plan operators)
//   - github.com/bawdo/quarry/exec (plan execution, tables, CSV I/O)
//   - github.com/bawdo/quarry/render (AST -> canonical SQL)
package quarry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bawdo/quarry/compiler"
	"github.com/bawdo/quarry/exec"
	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/parser"
	"github.com/bawdo/quarry/plan"
)

// --- Re-exported core types ---

// Table is an in-memory columnar table.
type Table = exec.Table

// Column is a named value vector within a Table.
type Column = exec.Column

// IDGenerator is the compiler's fresh-name source.
type IDGenerator = compiler.IDGenerator

// --- Re-exported constructors ---

// NewColumn creates a column keyed by (table, name).
func NewColumn(table, name string, values []any) Column {
	return exec.NewColumn(table, name, values)
}

// NewTable builds a table from equal-length columns.
func NewTable(columns ...Column) (*Table, error) {
	return exec.NewTable(columns...)
}

// Parse parses a single SQL statement.
func Parse(query string) (nodes.Statement, error) {
	return parser.Parse(query)
}

// Compile lowers a parsed select into a logical plan.
func Compile(sel *nodes.Select, gen IDGenerator) (plan.Node, error) {
	return compiler.Compile(sel, gen)
}

// NewIDGenerator returns the default generator yielding "0", "1", ...
func NewIDGenerator() IDGenerator {
	return compiler.NewIDGenerator()
}

// --- Context ---

// dualTable is the built-in one-row relation that FROM DUAL reads.
const dualTable = "DUAL"

// Context is a catalog of named tables and the entry point for queries.
// A Context is not safe for concurrent mutation; independent Contexts may
// be used from separate goroutines freely.
type Context struct {
	tables map[string]*Table
}

// NewContext creates a context holding the given tables plus the built-in
// DUAL relation.
func NewContext(tables map[string]*Table) *Context {
	ctx := &Context{tables: make(map[string]*Table, len(tables)+1)}
	for name, table := range tables {
		ctx.tables[name] = table
	}
	if _, ok := ctx.tables[dualTable]; !ok {
		ctx.tables[dualTable] = exec.NewRowTable(1)
	}
	return ctx
}

// Register adds or replaces a table.
func (c *Context) Register(name string, table *Table) {
	c.tables[name] = table
}

// Drop removes a table. Dropping an unknown table is an error.
func (c *Context) Drop(name string) error {
	if _, ok := c.tables[name]; !ok {
		return exec.ErrUnknownTable.New(name)
	}
	delete(c.tables, name)
	return nil
}

// Table implements exec.Catalog.
func (c *Context) Table(name string) (*Table, error) {
	table, ok := c.tables[name]
	if !ok {
		return nil, exec.ErrUnknownTable.New(name)
	}
	return table, nil
}

// TableNames returns the registered table names in sorted order.
func (c *Context) TableNames() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select parses, compiles, and runs a SELECT query. Each call compiles with
// its own fresh id generator.
func (c *Context) Select(query string) (*Table, error) {
	stmt, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*nodes.Select)
	if !ok {
		return nil, fmt.Errorf("not a SELECT statement (use Exec)")
	}
	return c.runSelect(sel)
}

func (c *Context) runSelect(sel *nodes.Select) (*Table, error) {
	root, err := compiler.Compile(sel, nil)
	if err != nil {
		return nil, err
	}
	return exec.Run(root, c)
}

// Exec parses and executes any supported statement. SELECT, SHOW, and
// COPY ... TO return a table; the other statements return nil.
func (c *Context) Exec(query string) (*Table, error) {
	stmt, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}

	switch x := stmt.(type) {
	case *nodes.Select:
		return c.runSelect(x)

	case *nodes.CreateTableAs:
		result, err := c.runSelect(x.Query)
		if err != nil {
			return nil, err
		}
		c.Register(x.Name, result)
		return nil, nil

	case *nodes.DropTable:
		for _, name := range x.Names {
			if err := c.Drop(name); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case *nodes.CopyFrom:
		return nil, c.copyFrom(x)

	case *nodes.CopyTo:
		return c.copyTo(x)

	case *nodes.Show:
		return c.show(x)

	default:
		return nil, fmt.Errorf("unsupported statement %T", stmt)
	}
}

func (c *Context) copyFrom(stmt *nodes.CopyFrom) error {
	f, err := os.Open(stmt.Filename)
	if err != nil {
		return fmt.Errorf("copy from: %w", err)
	}
	defer func() { _ = f.Close() }()

	table, err := exec.ReadCSV(f, stmt.Name, csvOptions(stmt.Options))
	if err != nil {
		return err
	}
	c.Register(stmt.Name, table)
	return nil
}

func (c *Context) copyTo(stmt *nodes.CopyTo) (*Table, error) {
	table, err := c.Table(stmt.Name)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(stmt.Filename)
	if err != nil {
		return nil, fmt.Errorf("copy to: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := exec.WriteCSV(f, table, csvOptions(stmt.Options)); err != nil {
		return nil, err
	}
	return table, nil
}

// csvOptions maps COPY options to CSV settings. HEADER defaults to true.
// CSV is the only format, so FORMAT is accepted and ignored.
func csvOptions(options []nodes.CopyOption) exec.CSVOptions {
	opts := exec.CSVOptions{Header: true}
	for _, o := range options {
		switch o.Key {
		case "HEADER":
			opts.Header = strings.EqualFold(o.Value, "true")
		case "DELIMITER":
			if o.Value != "" {
				opts.Delimiter = rune(o.Value[0])
			}
		}
	}
	return opts
}

func (c *Context) show(stmt *nodes.Show) (*Table, error) {
	if len(stmt.Args) == 1 && strings.EqualFold(stmt.Args[0], "tables") {
		names := c.TableNames()
		values := make([]any, len(names))
		for i, name := range names {
			values[i] = name
		}
		return NewTable(NewColumn("", "table_name", values))
	}
	return nil, fmt.Errorf("unsupported SHOW %v", stmt.Args)
}
