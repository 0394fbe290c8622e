package plan

import (
	"fmt"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/render"
)

// CrossJoin is the cartesian product of its two inputs.
type CrossJoin struct {
	Left  Node
	Right Node
}

// NewCrossJoin creates a CrossJoin.
func NewCrossJoin(left, right Node) *CrossJoin {
	return &CrossJoin{Left: left, Right: right}
}

func (c *CrossJoin) Children() []Node { return []Node{c.Left, c.Right} }

func (*CrossJoin) String() string { return "CrossJoin" }

// Join is a qualified join. On is an arbitrary boolean expression over the
// combined row; extracting equi-join keys is the runtime's concern.
type Join struct {
	Left  Node
	Right Node
	How   nodes.JoinKind
	On    nodes.Expr
}

// NewJoin creates a Join.
func NewJoin(left, right Node, how nodes.JoinKind, on nodes.Expr) *Join {
	return &Join{Left: left, Right: right, How: how, On: on}
}

func (j *Join) Children() []Node { return []Node{j.Left, j.Right} }

func (j *Join) String() string {
	return fmt.Sprintf("Join(%s, on=%s)", j.How, render.Expr(j.On))
}
