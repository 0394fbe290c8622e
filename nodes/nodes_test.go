package nodes

import "testing"

// --- Literals ---

func TestStringValueUnquotes(t *testing.T) {
	t.Parallel()
	s := &String{Text: "'abc'"}
	if got := s.Value(); got != "abc" {
		t.Errorf("expected %q, got %q", "abc", got)
	}
}

func TestStringValueUndoublesQuotes(t *testing.T) {
	t.Parallel()
	s := NewString("O'Brien")
	if s.Text != "'O''Brien'" {
		t.Errorf("expected quoted text %q, got %q", "'O''Brien'", s.Text)
	}
	if got := s.Value(); got != "O'Brien" {
		t.Errorf("expected %q, got %q", "O'Brien", got)
	}
}

// --- Column references ---

func TestRefName(t *testing.T) {
	t.Parallel()
	if got := Ref("s", "t", "a").Name(); got != "a" {
		t.Errorf("expected %q, got %q", "a", got)
	}
	if got := Ref("a").Name(); got != "a" {
		t.Errorf("expected %q, got %q", "a", got)
	}
}

// --- Operator spellings ---

func TestBinaryOpString(t *testing.T) {
	t.Parallel()
	cases := map[BinaryOp]string{
		OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
		OpEq: "=", OpNe: "<>", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
		OpAnd: "AND", OpOr: "OR",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("op %d: expected %q, got %q", op, want, got)
		}
	}
}

func TestSetFuncString(t *testing.T) {
	t.Parallel()
	cases := map[SetFunc]string{
		SetCount: "COUNT", SetSum: "SUM", SetAvg: "AVG", SetMin: "MIN", SetMax: "MAX",
	}
	for f, want := range cases {
		if got := f.String(); got != want {
			t.Errorf("func %d: expected %q, got %q", f, want, got)
		}
	}
}

func TestJoinKindString(t *testing.T) {
	t.Parallel()
	cases := map[JoinKind]string{
		InnerJoin: "inner", LeftOuterJoin: "left", RightOuterJoin: "right", FullOuterJoin: "full",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("kind %d: expected %q, got %q", k, want, got)
		}
	}
}

// --- Derived columns ---

func TestSelectedNamePrefersAlias(t *testing.T) {
	t.Parallel()
	col := NewDerivedColumn(Ref("a"), "total")
	if got := col.SelectedName(); got != "total" {
		t.Errorf("expected %q, got %q", "total", got)
	}
}

func TestSelectedNameFallsBackToColumnName(t *testing.T) {
	t.Parallel()
	col := NewDerivedColumn(Ref("t", "a"), "")
	if got := col.SelectedName(); got != "a" {
		t.Errorf("expected %q, got %q", "a", got)
	}
}

func TestSelectedNameEmptyForExpressions(t *testing.T) {
	t.Parallel()
	col := NewDerivedColumn(NewBinaryExpr(OpAdd, Ref("a"), Ref("b")), "")
	if got := col.SelectedName(); got != "" {
		t.Errorf("expected empty name, got %q", got)
	}
}

func TestWithValueKeepsAlias(t *testing.T) {
	t.Parallel()
	col := NewDerivedColumn(Ref("a"), "x")
	out := col.WithValue(Ref("b"))
	if out.Alias != "x" {
		t.Errorf("expected alias %q, got %q", "x", out.Alias)
	}
	if col.Value.(*ColumnReference).Parts[0] != "a" {
		t.Error("expected original column to be unchanged")
	}
}

// --- Case builder ---

func TestCaseBuilder(t *testing.T) {
	t.Parallel()
	c := NewCase().
		When(NewBinaryExpr(OpGt, Ref("a"), &Integer{Text: "0"}), NewString("pos")).
		Else(NewString("neg"))
	if len(c.Whens) != 1 {
		t.Fatalf("expected 1 when, got %d", len(c.Whens))
	}
	if c.ElseVal == nil {
		t.Error("expected else value to be set")
	}
}
