package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/parser"
	"github.com/bawdo/quarry/plan"
)

func compileQuery(t *testing.T, query string) plan.Node {
	t.Helper()
	sel, err := parser.ParseSelect(query)
	require.NoError(t, err)
	root, err := Compile(sel, nil)
	require.NoError(t, err)
	return root
}

func requireColumns(t *testing.T, got, want []*nodes.DerivedColumn) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.True(t, nodes.Equal(got[i], want[i]),
			"column %d:\n  got:  %s\n  want: %s", i, plan.NewTransform(nil, got[i:i+1]), plan.NewTransform(nil, want[i:i+1]))
	}
}

// --- end-to-end plan shapes ---

func TestCompileConstantFromDual(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT 42 FROM DUAL")

	transform := root.(*plan.Transform)
	requireColumns(t, transform.Projections, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(&nodes.Integer{Text: "42"}, ""),
	})
	table := transform.Input.(*plan.GetTable)
	require.Equal(t, "DUAL", table.Name)
}

func TestCompileSingleColumn(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT a FROM t")

	transform := root.(*plan.Transform)
	requireColumns(t, transform.Projections, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(nodes.Ref("a"), ""),
	})
	require.Equal(t, "t", transform.Input.(*plan.GetTable).Name)
}

func TestCompileGlobalAggregate(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT SUM(a) as s FROM t")

	final := root.(*plan.Transform)
	requireColumns(t, final.Projections, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(nodes.Ref("$1"), "s"),
	})

	agg := final.Input.(*plan.Aggregate)
	require.Nil(t, agg.GroupBy)
	requireColumns(t, agg.Aggregates, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(nodes.Sum(nodes.Ref("$0")), "$1"),
	})

	pre := agg.Input.(*plan.Transform)
	requireColumns(t, pre.Projections, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(nodes.Ref("a"), "$0"),
	})
	require.Equal(t, "t", pre.Input.(*plan.GetTable).Name)
}

func TestCompileGroupedAggregate(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT g, SUM(a) as a FROM t GROUP BY g")

	final := root.(*plan.Transform)
	requireColumns(t, final.Projections, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(nodes.Ref("g"), ""),
		nodes.NewDerivedColumn(nodes.Ref("$1"), "a"),
	})

	agg := final.Input.(*plan.Aggregate)
	require.Len(t, agg.GroupBy, 1)
	require.True(t, nodes.Equal(agg.GroupBy[0], nodes.Ref("g")))
	requireColumns(t, agg.Aggregates, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(nodes.Sum(nodes.Ref("$0")), "$1"),
	})

	// The group expression is a bare column reference, so its pre-aggregate
	// alias collapses to "g" without consuming an id.
	pre := agg.Input.(*plan.Transform)
	requireColumns(t, pre.Projections, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(nodes.Ref("a"), "$0"),
		nodes.NewDerivedColumn(nodes.Ref("g"), "g"),
	})
}

func TestCompileDistinct(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT DISTINCT g FROM t")

	distinct := root.(*plan.DropDuplicates)
	transform := distinct.Input.(*plan.Transform)
	requireColumns(t, transform.Projections, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(nodes.Ref("g"), ""),
	})
}

func TestCompileLimitForms(t *testing.T) {
	t.Parallel()
	offsetForm := compileQuery(t, "SELECT a FROM t LIMIT 2 OFFSET 1")
	commaForm := compileQuery(t, "SELECT a FROM t LIMIT 1, 2")

	for _, root := range []plan.Node{offsetForm, commaForm} {
		limit := root.(*plan.Limit)
		require.Equal(t, 1, limit.Offset)
		require.Equal(t, 2, limit.Count)
	}
	require.Equal(t, plan.TreeString(offsetForm), plan.TreeString(commaForm))
}

// --- compiler laws ---

func TestSelectStarStaysTransformFree(t *testing.T) {
	t.Parallel()
	queries := []string{
		"SELECT * FROM t",
		"SELECT * FROM t WHERE a > 1",
		"SELECT DISTINCT * FROM a, b",
		"SELECT * FROM a JOIN b ON a.id = b.id ORDER BY x LIMIT 3",
	}
	for _, q := range queries {
		var walk func(n plan.Node)
		walk = func(n plan.Node) {
			switch n.(type) {
			case *plan.Transform, *plan.Aggregate:
				t.Errorf("query %q: unexpected %T in plan", q, n)
			}
			for _, child := range n.Children() {
				walk(child)
			}
		}
		walk(compileQuery(t, q))
	}
}

func TestAggregateQueriesProduceExactlyOneAggregate(t *testing.T) {
	t.Parallel()
	queries := []string{
		"SELECT SUM(a) FROM t",
		"SELECT COUNT(*), MIN(a), MAX(a) FROM t",
		"SELECT g, SUM(a) - 3 * AVG(a) AS x FROM t GROUP BY g",
	}
	for _, q := range queries {
		count := 0
		var walk func(n plan.Node)
		walk = func(n plan.Node) {
			if _, ok := n.(*plan.Aggregate); ok {
				count++
			}
			for _, child := range n.Children() {
				walk(child)
			}
		}
		walk(compileQuery(t, q))
		require.Equal(t, 1, count, "query %q", q)
	}
}

func TestFinalTransformNearRoot(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT DISTINCT a FROM t HAVING a > 0 LIMIT 5")

	limit := root.(*plan.Limit)
	distinct := limit.Input.(*plan.DropDuplicates)
	having := distinct.Input.(*plan.Filter)
	_, ok := having.Input.(*plan.Transform)
	require.True(t, ok, "expected final Transform below the HAVING filter")
}

// --- clause placement ---

func TestOrderBySeesPostAggregationSchema(t *testing.T) {
	t.Parallel()
	// Sort sits between the Aggregate and the final projection, so order
	// keys resolve against the grouped schema (g and the $N aggregates).
	root := compileQuery(t, "SELECT g, SUM(a) AS s FROM t GROUP BY g ORDER BY g DESC")

	final := root.(*plan.Transform)
	sort := final.Input.(*plan.Sort)
	require.Len(t, sort.Keys, 1)
	require.Equal(t, nodes.Descending, sort.Keys[0].Direction)
	_, ok := sort.Input.(*plan.Aggregate)
	require.True(t, ok, "expected Sort directly above Aggregate")
}

func TestGroupByExpressionGetsFreshAlias(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT SUM(v) AS s FROM t GROUP BY a + b")

	final := root.(*plan.Transform)
	agg := final.Input.(*plan.Aggregate)
	require.Len(t, agg.GroupBy, 1)
	// $0/$1 go to the aggregate split; the group expression takes $2.
	require.True(t, nodes.Equal(agg.GroupBy[0], nodes.Ref("$2")))

	pre := agg.Input.(*plan.Transform)
	requireColumns(t, pre.Projections, []*nodes.DerivedColumn{
		nodes.NewDerivedColumn(nodes.Ref("v"), "$0"),
		nodes.NewDerivedColumn(nodes.NewBinaryExpr(nodes.OpAdd, nodes.Ref("a"), nodes.Ref("b")), "$2"),
	})
}

func TestScalarSelectHasNoAggregate(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT a + 1 AS b FROM t WHERE a > 0")

	transform := root.(*plan.Transform)
	filter := transform.Input.(*plan.Filter)
	_, ok := filter.Input.(*plan.GetTable)
	require.True(t, ok)
}

func TestCompileFromJoins(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT * FROM a JOIN b ON a.id = b.id CROSS JOIN c")

	cross := root.(*plan.CrossJoin)
	join := cross.Left.(*plan.Join)
	require.Equal(t, nodes.InnerJoin, join.How)
	require.Equal(t, "a", join.Left.(*plan.GetTable).Name)
	require.Equal(t, "b", join.Right.(*plan.GetTable).Name)
	require.Equal(t, "c", cross.Right.(*plan.GetTable).Name)
}

func TestCompileCommaFromBecomesCrossJoins(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT * FROM a, b, c")

	outer := root.(*plan.CrossJoin)
	inner := outer.Left.(*plan.CrossJoin)
	require.Equal(t, "a", inner.Left.(*plan.GetTable).Name)
	require.Equal(t, "b", inner.Right.(*plan.GetTable).Name)
	require.Equal(t, "c", outer.Right.(*plan.GetTable).Name)
}

func TestCompileSubquery(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT * FROM (SELECT a FROM t)")

	transform := root.(*plan.Transform)
	require.Equal(t, "t", transform.Input.(*plan.GetTable).Name)
}

func TestCompileTableAlias(t *testing.T) {
	t.Parallel()
	root := compileQuery(t, "SELECT * FROM my_table AS m")
	table := root.(*plan.GetTable)
	require.Equal(t, "my_table", table.Name)
	require.Equal(t, "m", table.Alias)
}

// --- failure modes ---

func TestCompileAsteriskWithGroupBy(t *testing.T) {
	t.Parallel()
	sel, err := parser.ParseSelect("SELECT * FROM t GROUP BY g")
	require.NoError(t, err)
	_, err = Compile(sel, nil)
	require.True(t, ErrAsteriskWithGroupBy.Is(err))
}

func TestCompileEmptyFrom(t *testing.T) {
	t.Parallel()
	_, err := Compile(&nodes.Select{SelectStar: true}, nil)
	require.True(t, ErrEmptyFrom.Is(err))

	sel, err := parser.ParseSelect("SELECT a GROUP BY b")
	require.NoError(t, err)
	_, err = Compile(sel, nil)
	require.True(t, ErrEmptyFrom.Is(err))
}

func TestCompileUnknownSetQuantifier(t *testing.T) {
	t.Parallel()
	sel := &nodes.Select{
		SelectStar: true,
		From:       []nodes.TableExpr{&nodes.TableName{Table: "t"}},
		Quantifier: nodes.SetQuantifier(42),
	}
	_, err := Compile(sel, nil)
	require.True(t, ErrUnknownSetQuantifier.Is(err))
}

func TestCompileUnknownJoinShape(t *testing.T) {
	t.Parallel()
	sel := &nodes.Select{
		SelectStar: true,
		From: []nodes.TableExpr{&nodes.JoinedTable{
			Left:  &nodes.TableName{Table: "a"},
			Joins: []nodes.JoinStep{&nodes.Join{How: nodes.InnerJoin, Table: &nodes.TableName{Table: "b"}}},
		}},
	}
	_, err := Compile(sel, nil)
	require.True(t, ErrUnknownJoinKind.Is(err))
}

func TestCompileNestedAggregatePropagates(t *testing.T) {
	t.Parallel()
	sel, err := parser.ParseSelect("SELECT SUM(SUM(a)) FROM t")
	require.NoError(t, err)
	_, err = Compile(sel, nil)
	require.True(t, ErrNestedAggregate.Is(err))
}

func TestCompileSharedGenerator(t *testing.T) {
	t.Parallel()
	gen := NewIDGenerator()

	first, err := parser.ParseSelect("SELECT SUM(a) AS s FROM t")
	require.NoError(t, err)
	_, err = Compile(first, gen)
	require.NoError(t, err)

	second, err := parser.ParseSelect("SELECT SUM(b) AS s FROM t")
	require.NoError(t, err)
	root, err := Compile(second, gen)
	require.NoError(t, err)

	agg := root.(*plan.Transform).Input.(*plan.Aggregate)
	require.Equal(t, "$3", agg.Aggregates[0].Alias)
}
