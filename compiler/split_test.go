package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bawdo/quarry/nodes"
)

// countSetFunctions walks an expression counting aggregate nodes.
func countSetFunctions(e nodes.Expr) int {
	switch x := e.(type) {
	case *nodes.SetFunction:
		return 1 + countSetFunctions(x.Arg)
	case *nodes.BinaryExpr:
		return countSetFunctions(x.Left) + countSetFunctions(x.Right)
	case *nodes.UnaryExpr:
		return countSetFunctions(x.Operand)
	case *nodes.FunctionCall:
		n := 0
		for _, arg := range x.Args {
			n += countSetFunctions(arg)
		}
		return n
	case *nodes.CaseExpr:
		n := 0
		for _, w := range x.Whens {
			n += countSetFunctions(w.Condition) + countSetFunctions(w.Result)
		}
		if x.ElseVal != nil {
			n += countSetFunctions(x.ElseVal)
		}
		return n
	case *nodes.Cast:
		return countSetFunctions(x.Value)
	case *nodes.DerivedColumn:
		return countSetFunctions(x.Value)
	default:
		return 0
	}
}

type recordingGenerator struct {
	inner IDGenerator
	calls int
}

func (g *recordingGenerator) Next() string {
	g.calls++
	return g.inner.Next()
}

func TestSplitScalarFixpoint(t *testing.T) {
	t.Parallel()
	gen := &recordingGenerator{inner: NewIDGenerator()}
	expr := nodes.NewBinaryExpr(nodes.OpAdd, nodes.Ref("a"), &nodes.Integer{Text: "1"})

	out, aggs, pre, err := SplitAggregate(expr, gen)
	require.NoError(t, err)
	require.Same(t, nodes.Expr(expr), out, "scalar expression must be returned unchanged")
	require.Empty(t, aggs)
	require.Empty(t, pre)
	require.Zero(t, gen.calls, "scalar split must not consume ids")
}

func TestSplitSingleAggregate(t *testing.T) {
	t.Parallel()
	out, aggs, pre, err := SplitAggregate(nodes.Sum(nodes.Ref("a")), NewIDGenerator())
	require.NoError(t, err)

	require.True(t, nodes.Equal(out, nodes.Ref("$1")))
	require.Len(t, aggs, 1)
	require.True(t, nodes.Equal(aggs[0], nodes.NewDerivedColumn(nodes.Sum(nodes.Ref("$0")), "$1")))
	require.Len(t, pre, 1)
	require.True(t, nodes.Equal(pre[0], nodes.NewDerivedColumn(nodes.Ref("a"), "$0")))
}

func TestSplitMixedExpression(t *testing.T) {
	t.Parallel()
	// SUM(a) - 3 * AVG(b)
	expr := nodes.NewBinaryExpr(nodes.OpSub,
		nodes.Sum(nodes.Ref("a")),
		nodes.NewBinaryExpr(nodes.OpMul, &nodes.Integer{Text: "3"}, nodes.Avg(nodes.Ref("b"))),
	)

	out, aggs, pre, err := SplitAggregate(expr, NewIDGenerator())
	require.NoError(t, err)

	// Fresh names are drawn left to right: $0/$1 for SUM, $2/$3 for AVG.
	want := nodes.NewBinaryExpr(nodes.OpSub,
		nodes.Ref("$1"),
		nodes.NewBinaryExpr(nodes.OpMul, &nodes.Integer{Text: "3"}, nodes.Ref("$3")),
	)
	require.True(t, nodes.Equal(out, want), "rewritten: %#v", out)

	require.Len(t, aggs, 2)
	require.True(t, nodes.Equal(aggs[0], nodes.NewDerivedColumn(nodes.Sum(nodes.Ref("$0")), "$1")))
	require.True(t, nodes.Equal(aggs[1], nodes.NewDerivedColumn(nodes.Avg(nodes.Ref("$2")), "$3")))

	require.Len(t, pre, 2)
	require.True(t, nodes.Equal(pre[0], nodes.NewDerivedColumn(nodes.Ref("a"), "$0")))
	require.True(t, nodes.Equal(pre[1], nodes.NewDerivedColumn(nodes.Ref("b"), "$2")))
}

func TestSplitAggregateOverExpression(t *testing.T) {
	t.Parallel()
	// SUM(a + b): the argument expression lands in the pre-aggregate stage.
	arg := nodes.NewBinaryExpr(nodes.OpAdd, nodes.Ref("a"), nodes.Ref("b"))
	_, aggs, pre, err := SplitAggregate(nodes.Sum(arg), NewIDGenerator())
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	require.Len(t, pre, 1)
	require.True(t, nodes.Equal(pre[0].Value, arg))
	require.Equal(t, "$0", pre[0].Alias)
}

func TestSplitCountInvariance(t *testing.T) {
	t.Parallel()
	exprs := []nodes.Expr{
		nodes.Ref("a"),
		nodes.Sum(nodes.Ref("a")),
		nodes.NewBinaryExpr(nodes.OpAdd, nodes.Sum(nodes.Ref("a")), nodes.Count(nodes.Star())),
		&nodes.FunctionCall{Name: "f", Args: []nodes.Expr{nodes.Min(nodes.Ref("a")), nodes.Max(nodes.Ref("b"))}},
		nodes.NewCase().
			When(nodes.NewBinaryExpr(nodes.OpGt, nodes.Avg(nodes.Ref("a")), &nodes.Integer{Text: "0"}), nodes.Sum(nodes.Ref("b"))).
			Else(nodes.Count(nodes.Star())),
	}
	for _, expr := range exprs {
		out, aggs, _, err := SplitAggregate(expr, NewIDGenerator())
		require.NoError(t, err)
		require.Equal(t, countSetFunctions(expr), len(aggs), "aggregate count for %#v", expr)
		require.Zero(t, countSetFunctions(out), "rewritten expression must be aggregate-free")
	}
}

func TestSplitNestedAggregateRejected(t *testing.T) {
	t.Parallel()
	_, _, _, err := SplitAggregate(nodes.Sum(nodes.Sum(nodes.Ref("a"))), NewIDGenerator())
	require.Error(t, err)
	require.True(t, ErrNestedAggregate.Is(err))

	// Nesting through intermediate scalar operators is also rejected.
	_, _, _, err = SplitAggregate(
		nodes.Sum(nodes.NewBinaryExpr(nodes.OpAdd, nodes.Avg(nodes.Ref("a")), &nodes.Integer{Text: "1"})),
		NewIDGenerator(),
	)
	require.True(t, ErrNestedAggregate.Is(err))
}

func TestSplitCountStarKeepsAsterisk(t *testing.T) {
	t.Parallel()
	out, aggs, pre, err := SplitAggregate(nodes.Count(nodes.Star()), NewIDGenerator())
	require.NoError(t, err)
	require.True(t, nodes.Equal(out, nodes.Ref("$0")))
	require.Len(t, aggs, 1)
	require.True(t, nodes.Equal(aggs[0], nodes.NewDerivedColumn(nodes.Count(nodes.Star()), "$0")))
	require.Empty(t, pre, "COUNT(*) has no scalar argument to pre-compute")
}

func TestSplitSharedGeneratorAllocatesDisjointNames(t *testing.T) {
	t.Parallel()
	gen := NewIDGenerator()
	_, first, _, err := SplitAggregate(nodes.Sum(nodes.Ref("a")), gen)
	require.NoError(t, err)
	_, second, _, err := SplitAggregate(nodes.Sum(nodes.Ref("b")), gen)
	require.NoError(t, err)
	require.Equal(t, "$1", first[0].Alias)
	require.Equal(t, "$3", second[0].Alias)
}

func TestDefaultIDGeneratorSequence(t *testing.T) {
	t.Parallel()
	gen := NewIDGenerator()
	for i, want := range []string{"0", "1", "2", "3"} {
		require.Equal(t, want, gen.Next(), "draw %d", i)
	}
}
