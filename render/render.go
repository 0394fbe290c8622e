// Package render turns AST nodes back into canonical SQL text.
//
// The output is normalized: keywords upper-cased, one space between tokens,
// identifiers quoted only when required. It is used for display (plan operator
// descriptions, the shell's \ast command) and for round-trip tests; it is not a wire format.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bawdo/quarry/internal/quoting"
	"github.com/bawdo/quarry/nodes"
)

// Expr renders an expression as canonical SQL.
func Expr(e nodes.Expr) string {
	switch x := e.(type) {
	case *nodes.ColumnReference:
		parts := make([]string, len(x.Parts))
		for i, p := range x.Parts {
			parts[i] = quoting.Ident(p)
		}
		return strings.Join(parts, ".")

	case *nodes.Integer:
		return x.Text

	case *nodes.Float:
		return x.Text

	case *nodes.String:
		return x.Text

	case *nodes.Bool:
		if x.Value {
			return "TRUE"
		}
		return "FALSE"

	case *nodes.Null:
		return "NULL"

	case *nodes.Asterisk:
		return "*"

	case *nodes.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", Expr(x.Left), x.Op, Expr(x.Right))

	case *nodes.UnaryExpr:
		if x.Op == nodes.OpNot {
			return fmt.Sprintf("(NOT %s)", Expr(x.Operand))
		}
		return fmt.Sprintf("%s%s", x.Op, Expr(x.Operand))

	case *nodes.FunctionCall:
		args := make([]string, len(x.Args))
		for i, arg := range x.Args {
			args[i] = Expr(arg)
		}
		return fmt.Sprintf("%s(%s)", x.Name, strings.Join(args, ", "))

	case *nodes.SetFunction:
		return fmt.Sprintf("%s(%s)", x.Func, Expr(x.Arg))

	case *nodes.CaseExpr:
		var sb strings.Builder
		sb.WriteString("CASE")
		for _, w := range x.Whens {
			sb.WriteString(" WHEN ")
			sb.WriteString(Expr(w.Condition))
			sb.WriteString(" THEN ")
			sb.WriteString(Expr(w.Result))
		}
		if x.ElseVal != nil {
			sb.WriteString(" ELSE ")
			sb.WriteString(Expr(x.ElseVal))
		}
		sb.WriteString(" END")
		return sb.String()

	case *nodes.Cast:
		return fmt.Sprintf("CAST(%s AS %s)", Expr(x.Value), x.TypeName)

	case *nodes.DerivedColumn:
		if x.Alias != "" {
			return fmt.Sprintf("%s AS %s", Expr(x.Value), quoting.Ident(x.Alias))
		}
		return Expr(x.Value)

	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// TableExpr renders a FROM-clause element.
func TableExpr(te nodes.TableExpr) string {
	switch x := te.(type) {
	case *nodes.TableName:
		if x.Alias != "" {
			return fmt.Sprintf("%s AS %s", quoting.Ident(x.Table), quoting.Ident(x.Alias))
		}
		return quoting.Ident(x.Table)

	case *nodes.Select:
		return "(" + Select(x) + ")"

	case *nodes.JoinedTable:
		var sb strings.Builder
		sb.WriteString(TableExpr(x.Left))
		for _, step := range x.Joins {
			switch j := step.(type) {
			case *nodes.Join:
				sb.WriteString(" ")
				sb.WriteString(joinKeyword(j.How))
				sb.WriteString(" ")
				sb.WriteString(TableExpr(j.Table))
				sb.WriteString(" ON ")
				sb.WriteString(Expr(j.On))
			case *nodes.CrossJoin:
				sb.WriteString(" CROSS JOIN ")
				sb.WriteString(TableExpr(j.Table))
			}
		}
		return sb.String()

	default:
		return fmt.Sprintf("<%T>", te)
	}
}

func joinKeyword(how nodes.JoinKind) string {
	switch how {
	case nodes.LeftOuterJoin:
		return "LEFT OUTER JOIN"
	case nodes.RightOuterJoin:
		return "RIGHT OUTER JOIN"
	case nodes.FullOuterJoin:
		return "FULL OUTER JOIN"
	default:
		return "INNER JOIN"
	}
}

// Select renders a SELECT statement.
func Select(sel *nodes.Select) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if sel.Quantifier == nodes.Distinct {
		sb.WriteString("DISTINCT ")
	}

	if sel.SelectStar {
		sb.WriteString("*")
	} else {
		cols := make([]string, len(sel.SelectList))
		for i, col := range sel.SelectList {
			cols[i] = Expr(col)
		}
		sb.WriteString(strings.Join(cols, ", "))
	}

	sb.WriteString(" FROM ")
	tables := make([]string, len(sel.From))
	for i, te := range sel.From {
		tables[i] = TableExpr(te)
	}
	sb.WriteString(strings.Join(tables, ", "))

	if sel.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(Expr(sel.Where))
	}
	if len(sel.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		keys := make([]string, len(sel.GroupBy))
		for i, g := range sel.GroupBy {
			keys[i] = Expr(g)
		}
		sb.WriteString(strings.Join(keys, ", "))
	}
	if sel.Having != nil {
		sb.WriteString(" HAVING ")
		sb.WriteString(Expr(sel.Having))
	}
	if len(sel.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		keys := make([]string, len(sel.OrderBy))
		for i, k := range sel.OrderBy {
			keys[i] = Expr(k.Value)
			if k.Direction == nodes.Descending {
				keys[i] += " DESC"
			}
		}
		sb.WriteString(strings.Join(keys, ", "))
	}
	if sel.Limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(sel.Limit.Count))
		if sel.Limit.Offset > 0 {
			sb.WriteString(" OFFSET ")
			sb.WriteString(strconv.Itoa(sel.Limit.Offset))
		}
	}
	return sb.String()
}

// Statement renders any statement variant.
func Statement(stmt nodes.Statement) string {
	switch x := stmt.(type) {
	case *nodes.Select:
		return Select(x)

	case *nodes.CreateTableAs:
		return fmt.Sprintf("CREATE TABLE %s AS %s", quoting.Ident(x.Name), Select(x.Query))

	case *nodes.DropTable:
		names := make([]string, len(x.Names))
		for i, n := range x.Names {
			names[i] = quoting.Ident(n)
		}
		return "DROP TABLE " + strings.Join(names, ", ")

	case *nodes.CopyFrom:
		return copyStatement("FROM", x.Name, x.Filename, x.Options)

	case *nodes.CopyTo:
		return copyStatement("TO", x.Name, x.Filename, x.Options)

	case *nodes.Show:
		return "SHOW " + strings.Join(x.Args, ", ")

	default:
		return fmt.Sprintf("<%T>", stmt)
	}
}

func copyStatement(direction, name, filename string, options []nodes.CopyOption) string {
	s := fmt.Sprintf("COPY %s %s '%s'", quoting.Ident(name), direction, quoting.EscapeString(filename))
	if len(options) > 0 {
		opts := make([]string, len(options))
		for i, o := range options {
			opts[i] = o.Key + " " + o.Value
		}
		s += " WITH (" + strings.Join(opts, ", ") + ")"
	}
	return s
}
