package plan

import (
	"fmt"
	"strings"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/render"
)

// Sort orders the input rows by the given keys. The sort is stable.
type Sort struct {
	Input Node
	Keys  []nodes.OrderKey
}

// NewSort wraps input in a Sort.
func NewSort(input Node, keys []nodes.OrderKey) *Sort {
	return &Sort{Input: input, Keys: keys}
}

func (s *Sort) Children() []Node { return []Node{s.Input} }

func (s *Sort) String() string {
	keys := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		keys[i] = render.Expr(k.Value)
		if k.Direction == nodes.Descending {
			keys[i] += " DESC"
		}
	}
	return fmt.Sprintf("Sort(%s)", strings.Join(keys, ", "))
}
