package plan

import (
	"fmt"
	"strings"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/render"
)

// Transform projects each input row through a list of scalar expressions.
// No projection may contain a set function; aggregation is the Aggregate
// operator's job.
type Transform struct {
	Input       Node
	Projections []*nodes.DerivedColumn
}

// NewTransform wraps input in a Transform.
func NewTransform(input Node, projections []*nodes.DerivedColumn) *Transform {
	return &Transform{Input: input, Projections: projections}
}

func (t *Transform) Children() []Node { return []Node{t.Input} }

func (t *Transform) String() string {
	cols := make([]string, len(t.Projections))
	for i, col := range t.Projections {
		cols[i] = render.Expr(col)
	}
	return fmt.Sprintf("Transform(%s)", strings.Join(cols, ", "))
}
