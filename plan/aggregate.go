package plan

import (
	"fmt"
	"strings"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/render"
)

// Aggregate evaluates set functions over the input, optionally grouped.
// Every entry of Aggregates is a DerivedColumn whose value is a SetFunction
// applied to a plain column reference (or `*` for COUNT); the compiler's
// splitter guarantees this shape. GroupBy is nil for a global aggregation.
type Aggregate struct {
	Input      Node
	Aggregates []*nodes.DerivedColumn
	GroupBy    []*nodes.ColumnReference
}

// NewAggregate wraps input in an Aggregate.
func NewAggregate(input Node, aggregates []*nodes.DerivedColumn, groupBy []*nodes.ColumnReference) *Aggregate {
	return &Aggregate{Input: input, Aggregates: aggregates, GroupBy: groupBy}
}

func (a *Aggregate) Children() []Node { return []Node{a.Input} }

func (a *Aggregate) String() string {
	aggs := make([]string, len(a.Aggregates))
	for i, col := range a.Aggregates {
		aggs[i] = render.Expr(col)
	}
	if a.GroupBy == nil {
		return fmt.Sprintf("Aggregate(%s)", strings.Join(aggs, ", "))
	}
	keys := make([]string, len(a.GroupBy))
	for i, k := range a.GroupBy {
		keys[i] = render.Expr(k)
	}
	return fmt.Sprintf("Aggregate(%s GROUP BY %s)", strings.Join(aggs, ", "), strings.Join(keys, ", "))
}
