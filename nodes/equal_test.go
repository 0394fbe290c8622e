package nodes

import "testing"

func TestEqualLiterals(t *testing.T) {
	t.Parallel()
	if !Equal(&Integer{Text: "42"}, &Integer{Text: "42"}) {
		t.Error("equal integers should compare equal")
	}
	if Equal(&Integer{Text: "42"}, &Integer{Text: "43"}) {
		t.Error("different integers should not compare equal")
	}
	if Equal(&Integer{Text: "42"}, &Float{Text: "42"}) {
		t.Error("different variants should not compare equal")
	}
	if !Equal(&Null{}, &Null{}) {
		t.Error("null should equal null")
	}
	if !Equal(nil, nil) {
		t.Error("nil should equal nil")
	}
	if Equal(&Null{}, nil) {
		t.Error("node should not equal nil")
	}
}

func TestEqualColumnReferences(t *testing.T) {
	t.Parallel()
	if !Equal(Ref("t", "a"), Ref("t", "a")) {
		t.Error("same paths should compare equal")
	}
	if Equal(Ref("a"), Ref("t", "a")) {
		t.Error("different path lengths should not compare equal")
	}
}

func TestEqualNestedExpressions(t *testing.T) {
	t.Parallel()
	mk := func() Expr {
		return NewBinaryExpr(OpSub,
			Sum(Ref("a")),
			NewBinaryExpr(OpMul, &Integer{Text: "3"}, Avg(Ref("a"))),
		)
	}
	if !Equal(mk(), mk()) {
		t.Error("identically built trees should compare equal")
	}
	other := NewBinaryExpr(OpSub, Sum(Ref("a")), Avg(Ref("a")))
	if Equal(mk(), other) {
		t.Error("structurally different trees should not compare equal")
	}
}

func TestEqualSelect(t *testing.T) {
	t.Parallel()
	mk := func() *Select {
		return &Select{
			SelectList: []*DerivedColumn{
				NewDerivedColumn(Ref("a"), ""),
				NewDerivedColumn(Sum(Ref("b")), "s"),
			},
			From:    []TableExpr{&TableName{Table: "t"}},
			GroupBy: []Expr{Ref("g")},
			Limit:   &LimitClause{Offset: 1, Count: 2},
		}
	}
	if !Equal(mk(), mk()) {
		t.Error("identically built selects should compare equal")
	}

	changed := mk()
	changed.Limit = &LimitClause{Offset: 0, Count: 2}
	if Equal(mk(), changed) {
		t.Error("selects with different limits should not compare equal")
	}

	noLimit := mk()
	noLimit.Limit = nil
	if Equal(mk(), noLimit) {
		t.Error("selects with and without limit should not compare equal")
	}
}

func TestEqualJoinedTable(t *testing.T) {
	t.Parallel()
	mk := func(how JoinKind) *JoinedTable {
		return &JoinedTable{
			Left: &TableName{Table: "a"},
			Joins: []JoinStep{
				&Join{How: how, Table: &TableName{Table: "b"}, On: NewBinaryExpr(OpEq, Ref("a", "id"), Ref("b", "id"))},
				&CrossJoin{Table: &TableName{Table: "c"}},
			},
		}
	}
	if !Equal(mk(InnerJoin), mk(InnerJoin)) {
		t.Error("identical join trees should compare equal")
	}
	if Equal(mk(InnerJoin), mk(LeftOuterJoin)) {
		t.Error("join trees with different kinds should not compare equal")
	}
}
