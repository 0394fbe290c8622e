// Package compiler lowers a parsed Select into a logical plan.
//
// The pipeline is applied in a fixed order so that aliases introduced by one
// step are visible to the next: FROM, WHERE, pre-aggregate projection,
// aggregation, ORDER BY, final projection, HAVING, DISTINCT, LIMIT. Mixed
// scalar/aggregate select lists are split into three scalar stages first, so
// downstream operators never see nested aggregation.
package compiler

import (
	"fmt"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/plan"
)

// Compile lowers sel into a plan rooted at the returned node. Pass nil to use
// a fresh id generator; inject a shared one to keep fresh names disjoint
// across several compilations.
func Compile(sel *nodes.Select, gen IDGenerator) (plan.Node, error) {
	if gen == nil {
		gen = NewIDGenerator()
	}
	c := &dagCompiler{gen: gen}
	return c.compileSelect(sel)
}

type dagCompiler struct {
	gen IDGenerator
}

func (c *dagCompiler) fresh() string {
	return "$" + c.gen.Next()
}

func (c *dagCompiler) compileSelect(sel *nodes.Select) (plan.Node, error) {
	table, err := c.compileFrom(sel.From)
	if err != nil {
		return nil, err
	}

	if sel.Where != nil {
		table = plan.NewFilter(table, sel.Where)
	}

	table, err = c.transformTable(sel, table)
	if err != nil {
		return nil, err
	}

	if sel.Having != nil {
		table = plan.NewFilter(table, sel.Having)
	}

	switch sel.Quantifier {
	case nodes.All:
	case nodes.Distinct:
		table = plan.NewDropDuplicates(table)
	default:
		return nil, ErrUnknownSetQuantifier.New(sel.Quantifier)
	}

	if sel.Limit != nil {
		table = plan.NewLimit(table, sel.Limit.Offset, sel.Limit.Count)
	}
	return table, nil
}

// transformTable applies the projection/aggregation sandwich and ORDER BY.
// Ordering happens before the final projection so that sorting on
// non-selected columns works.
func (c *dagCompiler) transformTable(sel *nodes.Select, table plan.Node) (plan.Node, error) {
	if sel.SelectStar {
		if sel.GroupBy != nil {
			return nil, ErrAsteriskWithGroupBy.New()
		}
		return c.order(sel, table), nil
	}

	columns, aggregates, preAggregates, err := splitAggregates(sel.SelectList, c.gen)
	if err != nil {
		return nil, err
	}

	groupBy, groupPre := c.normalizeGroupBy(sel.GroupBy)
	preAggregates = append(preAggregates, groupPre...)

	if len(preAggregates) > 0 {
		table = plan.NewTransform(table, preAggregates)
	}
	if len(aggregates) > 0 {
		table = plan.NewAggregate(table, aggregates, groupBy)
	}

	table = c.order(sel, table)
	return plan.NewTransform(table, columns), nil
}

// normalizeGroupBy turns each group expression into a pre-aggregate column
// and a reference to it. A bare column reference or an aliased derived
// column keeps its own name; any other expression gets a fresh one.
func (c *dagCompiler) normalizeGroupBy(groupBy []nodes.Expr) ([]*nodes.ColumnReference, []*nodes.DerivedColumn) {
	if groupBy == nil {
		return nil, nil
	}

	refs := make([]*nodes.ColumnReference, 0, len(groupBy))
	pre := make([]*nodes.DerivedColumn, 0, len(groupBy))
	for _, col := range groupBy {
		alias := groupColumnAlias(col)
		if alias == "" {
			alias = c.fresh()
		}
		refs = append(refs, nodes.Ref(alias))
		pre = append(pre, nodes.NewDerivedColumn(col, alias))
	}
	return refs, pre
}

func groupColumnAlias(col nodes.Expr) string {
	switch x := col.(type) {
	case *nodes.ColumnReference:
		return x.Name()
	case *nodes.DerivedColumn:
		return x.SelectedName()
	default:
		return ""
	}
}

func (c *dagCompiler) order(sel *nodes.Select, table plan.Node) plan.Node {
	if len(sel.OrderBy) == 0 {
		return table
	}
	return plan.NewSort(table, sel.OrderBy)
}

func (c *dagCompiler) compileFrom(from []nodes.TableExpr) (plan.Node, error) {
	if len(from) == 0 {
		return nil, ErrEmptyFrom.New()
	}

	result, err := c.compileTable(from[0])
	if err != nil {
		return nil, err
	}
	for _, next := range from[1:] {
		right, err := c.compileTable(next)
		if err != nil {
			return nil, err
		}
		result = plan.NewCrossJoin(result, right)
	}
	return result, nil
}

func (c *dagCompiler) compileTable(table nodes.TableExpr) (plan.Node, error) {
	switch x := table.(type) {
	case *nodes.TableName:
		return plan.NewGetTable(x.Table, x.Alias), nil

	case *nodes.Select:
		return c.compileSelect(x)

	case *nodes.JoinedTable:
		result, err := c.compileTable(x.Left)
		if err != nil {
			return nil, err
		}
		for _, step := range x.Joins {
			switch j := step.(type) {
			case *nodes.Join:
				right, err := c.compileTable(j.Table)
				if err != nil {
					return nil, err
				}
				if j.On == nil {
					return nil, ErrUnknownJoinKind.New("qualified join without ON condition")
				}
				result = plan.NewJoin(result, right, j.How, j.On)

			case *nodes.CrossJoin:
				right, err := c.compileTable(j.Table)
				if err != nil {
					return nil, err
				}
				result = plan.NewCrossJoin(result, right)

			default:
				return nil, ErrUnknownJoinKind.New(fmt.Sprintf("%T", step))
			}
		}
		return result, nil

	default:
		return nil, ErrUnknownJoinKind.New(fmt.Sprintf("%T", table))
	}
}
