package nodes

// DerivedColumn is a select-list entry: a value expression with an optional
// alias. An empty Alias means no alias was given.
type DerivedColumn struct {
	Value Expr
	Alias string
}

func (*DerivedColumn) node()     {}
func (*DerivedColumn) exprNode() {}

// NewDerivedColumn creates a DerivedColumn with the given alias ("" for none).
func NewDerivedColumn(value Expr, alias string) *DerivedColumn {
	return &DerivedColumn{Value: value, Alias: alias}
}

// WithValue returns a copy of the column holding value, keeping the alias.
func (d *DerivedColumn) WithValue(value Expr) *DerivedColumn {
	return &DerivedColumn{Value: value, Alias: d.Alias}
}

// SelectedName reports the name a reader would use for this column: the
// alias if present, the referenced column name for a bare column reference,
// and "" otherwise.
func (d *DerivedColumn) SelectedName() string {
	if d.Alias != "" {
		return d.Alias
	}
	if ref, ok := d.Value.(*ColumnReference); ok {
		return ref.Name()
	}
	return ""
}
