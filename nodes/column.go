package nodes

// ColumnReference is a possibly-qualified column reference. Parts holds the
// dotted path as written: `a` is one part, `t.a` two, `s.t.a` three. Paths
// never exceed three parts; resolution of shorter paths is up to the runtime.
type ColumnReference struct {
	Parts []string
}

func (*ColumnReference) node()     {}
func (*ColumnReference) exprNode() {}

// Ref creates a ColumnReference from the given path parts.
func Ref(parts ...string) *ColumnReference {
	return &ColumnReference{Parts: parts}
}

// Name returns the final (column) component of the path.
func (c *ColumnReference) Name() string {
	return c.Parts[len(c.Parts)-1]
}
