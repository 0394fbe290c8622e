package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bawdo/quarry"
	"github.com/bawdo/quarry/compiler"
	"github.com/bawdo/quarry/exec"
	"github.com/bawdo/quarry/parser"
	"github.com/bawdo/quarry/plan"
	"github.com/bawdo/quarry/render"
)

const maxRows = 1000

// commandEntry maps a REPL prefix to its handler.
type commandEntry struct {
	prefix  string
	usage   string
	handler func(args string) error
}

// Session holds the REPL state: the query context and the command registry.
// Lines that match no command are executed as SQL.
type Session struct {
	ctx      *quarry.Context
	log      *logrus.Logger
	commands []commandEntry
	out      io.Writer // destination for REPL output (default os.Stdout)
}

// NewSession creates a session over the given context.
func NewSession(ctx *quarry.Context, log *logrus.Logger) *Session {
	s := &Session{ctx: ctx, log: log, out: os.Stdout}
	s.commands = []commandEntry{
		{prefix: "help", usage: "help", handler: func(string) error { s.cmdHelp(); return nil }},
		{prefix: "tables", usage: "tables", handler: func(string) error { return s.cmdTables() }},
		{prefix: `\ast `, usage: `\ast <sql>`, handler: s.cmdAST},
		{prefix: `\plan `, usage: `\plan <sql>`, handler: s.cmdPlan},
		{prefix: `\load `, usage: `\load <engine> <dsn> <table>`, handler: s.cmdLoad},
	}
	return s
}

// Execute dispatches one input line: a registered command, or SQL.
func (s *Session) Execute(line string) error {
	for _, cmd := range s.commands {
		if line == strings.TrimSpace(cmd.prefix) {
			return cmd.handler("")
		}
		if strings.HasPrefix(line, cmd.prefix) {
			return cmd.handler(strings.TrimSpace(line[len(cmd.prefix):]))
		}
	}
	return s.runSQL(line)
}

func (s *Session) runSQL(query string) error {
	s.log.WithField("query", query).Debug("executing")
	result, err := s.ctx.Exec(query)
	if err != nil {
		return err
	}
	if result == nil {
		_, _ = fmt.Fprintln(s.out, "OK")
		return nil
	}
	_, _ = fmt.Fprint(s.out, formatTable(result, maxRows))
	return nil
}

func (s *Session) cmdHelp() {
	_, _ = fmt.Fprintln(s.out, "Commands:")
	for _, cmd := range s.commands {
		_, _ = fmt.Fprintf(s.out, "  %s\n", cmd.usage)
	}
	_, _ = fmt.Fprintln(s.out, "  exit")
	_, _ = fmt.Fprintln(s.out, "Anything else is executed as SQL (SELECT, CREATE TABLE AS, DROP TABLE, COPY, SHOW).")
}

func (s *Session) cmdTables() error {
	for _, name := range s.ctx.TableNames() {
		table, err := s.ctx.Table(name)
		if err != nil {
			return err
		}
		names := make([]string, table.NumCols())
		for i, col := range table.Columns() {
			names[i] = col.Key.Name
		}
		_, _ = fmt.Fprintf(s.out, "%s (%d rows): %s\n", name, table.NumRows(), strings.Join(names, ", "))
	}
	return nil
}

func (s *Session) cmdAST(query string) error {
	stmt, err := parser.Parse(query)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(s.out, render.Statement(stmt))
	return nil
}

func (s *Session) cmdPlan(query string) error {
	sel, err := parser.ParseSelect(query)
	if err != nil {
		return err
	}
	root, err := compiler.Compile(sel, nil)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(s.out, plan.TreeString(root))
	return nil
}

// cmdLoad imports a table from a live database: \load <engine> <dsn> <table>.
func (s *Session) cmdLoad(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return fmt.Errorf(`usage: \load <engine> <dsn> <table>`)
	}
	engine, dsn, table := fields[0], fields[1], fields[2]

	imported, err := importTable(engine, dsn, table)
	if err != nil {
		return err
	}
	s.ctx.Register(table, imported)
	s.log.WithFields(logrus.Fields{"engine": engine, "table": table}).Info("table imported")
	_, _ = fmt.Fprintf(s.out, "Loaded %q (%d rows)\n", table, imported.NumRows())
	return nil
}

// loadCSV registers a CSV file as a table, header row expected.
func (s *Session) loadCSV(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	table, err := exec.ReadCSV(f, name, exec.CSVOptions{Header: true})
	if err != nil {
		return err
	}
	s.ctx.Register(name, table)
	return nil
}

// columnNames lists every known column name for tab completion.
func (s *Session) columnNames() []string {
	var names []string
	for _, name := range s.ctx.TableNames() {
		table, err := s.ctx.Table(name)
		if err != nil {
			continue
		}
		for _, col := range table.Columns() {
			names = append(names, col.Key.Name)
		}
	}
	return names
}
