package nodes

// Equal reports whether two AST nodes are structurally equal. Nodes of
// different variants are never equal; ordered children are compared
// element-wise. Both arguments may be nil.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *ColumnReference:
		y, ok := b.(*ColumnReference)
		return ok && stringsEqual(x.Parts, y.Parts)

	case *Integer:
		y, ok := b.(*Integer)
		return ok && x.Text == y.Text

	case *Float:
		y, ok := b.(*Float)
		return ok && x.Text == y.Text

	case *String:
		y, ok := b.(*String)
		return ok && x.Text == y.Text

	case *Bool:
		y, ok := b.(*Bool)
		return ok && x.Value == y.Value

	case *Null:
		_, ok := b.(*Null)
		return ok

	case *Asterisk:
		_, ok := b.(*Asterisk)
		return ok

	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)

	case *UnaryExpr:
		y, ok := b.(*UnaryExpr)
		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)

	case *FunctionCall:
		y, ok := b.(*FunctionCall)
		return ok && x.Name == y.Name && exprsEqual(x.Args, y.Args)

	case *SetFunction:
		y, ok := b.(*SetFunction)
		return ok && x.Func == y.Func && Equal(x.Arg, y.Arg)

	case *CaseExpr:
		y, ok := b.(*CaseExpr)
		if !ok || len(x.Whens) != len(y.Whens) || !Equal(x.ElseVal, y.ElseVal) {
			return false
		}
		for i := range x.Whens {
			if !Equal(x.Whens[i].Condition, y.Whens[i].Condition) ||
				!Equal(x.Whens[i].Result, y.Whens[i].Result) {
				return false
			}
		}
		return true

	case *Cast:
		y, ok := b.(*Cast)
		return ok && x.TypeName == y.TypeName && Equal(x.Value, y.Value)

	case *DerivedColumn:
		y, ok := b.(*DerivedColumn)
		return ok && x.Alias == y.Alias && Equal(x.Value, y.Value)

	case *Select:
		y, ok := b.(*Select)
		return ok && selectsEqual(x, y)

	case *TableName:
		y, ok := b.(*TableName)
		return ok && x.Table == y.Table && x.Alias == y.Alias

	case *JoinedTable:
		y, ok := b.(*JoinedTable)
		if !ok || !Equal(x.Left, y.Left) || len(x.Joins) != len(y.Joins) {
			return false
		}
		for i := range x.Joins {
			if !Equal(x.Joins[i], y.Joins[i]) {
				return false
			}
		}
		return true

	case *Join:
		y, ok := b.(*Join)
		return ok && x.How == y.How && Equal(x.Table, y.Table) && Equal(x.On, y.On)

	case *CrossJoin:
		y, ok := b.(*CrossJoin)
		return ok && Equal(x.Table, y.Table)

	case *CreateTableAs:
		y, ok := b.(*CreateTableAs)
		return ok && x.Name == y.Name && Equal(x.Query, y.Query)

	case *DropTable:
		y, ok := b.(*DropTable)
		return ok && stringsEqual(x.Names, y.Names)

	case *CopyFrom:
		y, ok := b.(*CopyFrom)
		return ok && x.Name == y.Name && x.Filename == y.Filename && optionsEqual(x.Options, y.Options)

	case *CopyTo:
		y, ok := b.(*CopyTo)
		return ok && x.Name == y.Name && x.Filename == y.Filename && optionsEqual(x.Options, y.Options)

	case *Show:
		y, ok := b.(*Show)
		return ok && stringsEqual(x.Args, y.Args)
	}
	return false
}

func selectsEqual(x, y *Select) bool {
	if x.SelectStar != y.SelectStar || x.Quantifier != y.Quantifier {
		return false
	}
	if len(x.SelectList) != len(y.SelectList) || len(x.From) != len(y.From) {
		return false
	}
	for i := range x.SelectList {
		if !Equal(x.SelectList[i], y.SelectList[i]) {
			return false
		}
	}
	for i := range x.From {
		if !Equal(x.From[i], y.From[i]) {
			return false
		}
	}
	if !Equal(x.Where, y.Where) || !Equal(x.Having, y.Having) {
		return false
	}
	if !exprsEqual(x.GroupBy, y.GroupBy) {
		return false
	}
	if len(x.OrderBy) != len(y.OrderBy) {
		return false
	}
	for i := range x.OrderBy {
		if x.OrderBy[i].Direction != y.OrderBy[i].Direction ||
			!Equal(x.OrderBy[i].Value, y.OrderBy[i].Value) {
			return false
		}
	}
	if (x.Limit == nil) != (y.Limit == nil) {
		return false
	}
	if x.Limit != nil && *x.Limit != *y.Limit {
		return false
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func exprsEqual(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func optionsEqual(a, b []CopyOption) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
