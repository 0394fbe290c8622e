package plan

// DropDuplicates removes duplicate rows, keeping first occurrences in input
// order.
type DropDuplicates struct {
	Input Node
}

// NewDropDuplicates wraps input in a DropDuplicates.
func NewDropDuplicates(input Node) *DropDuplicates {
	return &DropDuplicates{Input: input}
}

func (d *DropDuplicates) Children() []Node { return []Node{d.Input} }

func (*DropDuplicates) String() string { return "DropDuplicates" }
