package plan

import "fmt"

// Limit skips Offset input rows and passes through at most Count rows.
type Limit struct {
	Input  Node
	Offset int
	Count  int
}

// NewLimit wraps input in a Limit.
func NewLimit(input Node, offset, count int) *Limit {
	return &Limit{Input: input, Offset: offset, Count: count}
}

func (l *Limit) Children() []Node { return []Node{l.Input} }

func (l *Limit) String() string {
	return fmt.Sprintf("Limit(offset=%d, count=%d)", l.Offset, l.Count)
}
