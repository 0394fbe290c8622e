package plan

import (
	"fmt"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/render"
)

// Filter keeps the input rows for which the predicate evaluates to true.
type Filter struct {
	Input     Node
	Predicate nodes.Expr
}

// NewFilter wraps input in a Filter.
func NewFilter(input Node, predicate nodes.Expr) *Filter {
	return &Filter{Input: input, Predicate: predicate}
}

func (f *Filter) Children() []Node { return []Node{f.Input} }

func (f *Filter) String() string {
	return fmt.Sprintf("Filter(%s)", render.Expr(f.Predicate))
}
