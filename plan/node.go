// Package plan defines the logical plan operators produced by the compiler.
//
// A plan is a DAG of relational operators with a single root. The vocabulary
// is fixed: GetTable, Filter, Transform, Aggregate, Sort, Limit,
// DropDuplicates, CrossJoin, and Join. Runtimes dispatch on the concrete
// type with an exhaustive switch. Nodes are immutable after construction and
// never reference runtime table values.
package plan

import "strings"

// Node is the interface all plan operators implement.
type Node interface {
	// Children returns the operator's inputs, left to right.
	Children() []Node
	// String returns a one-line description of the operator alone.
	String() string
}

// TreeString renders the plan as an indented tree, root first.
func TreeString(n Node) string {
	var sb strings.Builder
	writeTree(&sb, n, 0)
	return sb.String()
}

func writeTree(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("    ", depth))
	sb.WriteString(n.String())
	sb.WriteString("\n")
	for _, child := range n.Children() {
		writeTree(sb, child, depth+1)
	}
}
