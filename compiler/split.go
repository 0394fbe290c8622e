package compiler

import "github.com/bawdo/quarry/nodes"

// SplitAggregate rewrites expr into three purely scalar stages. The returned
// expression is shaped like expr with every aggregate replaced by a column
// reference to a fresh alias; aggregates holds one entry per set function,
// each applying the function to a pre-computed column; preAggregates holds
// the pre-computed argument columns.
//
// For every set function two names are drawn from gen, argument column first.
// COUNT(*) is the exception: it keeps its asterisk argument, adds no
// preAggregates entry, and draws only its result name. An expression without set functions is returned unchanged and consumes no
// names. Aggregates nested inside aggregates fail with ErrNestedAggregate.
func SplitAggregate(expr nodes.Expr, gen IDGenerator) (nodes.Expr, []*nodes.DerivedColumn, []*nodes.DerivedColumn, error) {
	if gen == nil {
		gen = NewIDGenerator()
	}
	s := splitter{gen: gen}
	return s.split(expr)
}

// splitAggregates runs SplitAggregate over a select list, threading one
// generator through all columns and concatenating the stage lists in order.
func splitAggregates(columns []*nodes.DerivedColumn, gen IDGenerator) (
	cols []*nodes.DerivedColumn, aggs, preAggs []*nodes.DerivedColumn, err error,
) {
	s := splitter{gen: gen}
	for _, col := range columns {
		value, colAggs, colPre, err := s.split(col.Value)
		if err != nil {
			return nil, nil, nil, err
		}
		cols = append(cols, col.WithValue(value))
		aggs = append(aggs, colAggs...)
		preAggs = append(preAggs, colPre...)
	}
	return cols, aggs, preAggs, nil
}

type splitter struct {
	gen IDGenerator
}

func (s *splitter) fresh() string {
	return "$" + s.gen.Next()
}

func (s *splitter) split(expr nodes.Expr) (nodes.Expr, []*nodes.DerivedColumn, []*nodes.DerivedColumn, error) {
	switch x := expr.(type) {
	case *nodes.ColumnReference, *nodes.Integer, *nodes.Float, *nodes.String,
		*nodes.Bool, *nodes.Null, *nodes.Asterisk:
		return expr, nil, nil, nil

	case *nodes.BinaryExpr:
		left, leftAggs, leftPre, err := s.split(x.Left)
		if err != nil {
			return nil, nil, nil, err
		}
		right, rightAggs, rightPre, err := s.split(x.Right)
		if err != nil {
			return nil, nil, nil, err
		}
		out := expr
		if left != x.Left || right != x.Right {
			out = nodes.NewBinaryExpr(x.Op, left, right)
		}
		return out, append(leftAggs, rightAggs...), append(leftPre, rightPre...), nil

	case *nodes.UnaryExpr:
		operand, aggs, pre, err := s.split(x.Operand)
		if err != nil {
			return nil, nil, nil, err
		}
		out := expr
		if operand != x.Operand {
			out = &nodes.UnaryExpr{Op: x.Op, Operand: operand}
		}
		return out, aggs, pre, nil

	case *nodes.FunctionCall:
		var aggs, pre []*nodes.DerivedColumn
		args := make([]nodes.Expr, len(x.Args))
		changed := false
		for i, arg := range x.Args {
			value, argAggs, argPre, err := s.split(arg)
			if err != nil {
				return nil, nil, nil, err
			}
			args[i] = value
			changed = changed || value != arg
			aggs = append(aggs, argAggs...)
			pre = append(pre, argPre...)
		}
		out := expr
		if changed {
			out = &nodes.FunctionCall{Name: x.Name, Args: args}
		}
		return out, aggs, pre, nil

	case *nodes.CaseExpr:
		var aggs, pre []*nodes.DerivedColumn
		whens := make([]nodes.CaseWhen, len(x.Whens))
		changed := false
		for i, w := range x.Whens {
			cond, condAggs, condPre, err := s.split(w.Condition)
			if err != nil {
				return nil, nil, nil, err
			}
			result, resAggs, resPre, err := s.split(w.Result)
			if err != nil {
				return nil, nil, nil, err
			}
			whens[i] = nodes.CaseWhen{Condition: cond, Result: result}
			changed = changed || cond != w.Condition || result != w.Result
			aggs = append(aggs, condAggs...)
			aggs = append(aggs, resAggs...)
			pre = append(pre, condPre...)
			pre = append(pre, resPre...)
		}
		elseVal := x.ElseVal
		if x.ElseVal != nil {
			value, elseAggs, elsePre, err := s.split(x.ElseVal)
			if err != nil {
				return nil, nil, nil, err
			}
			elseVal = value
			changed = changed || value != x.ElseVal
			aggs = append(aggs, elseAggs...)
			pre = append(pre, elsePre...)
		}
		out := expr
		if changed {
			out = &nodes.CaseExpr{Whens: whens, ElseVal: elseVal}
		}
		return out, aggs, pre, nil

	case *nodes.Cast:
		value, aggs, pre, err := s.split(x.Value)
		if err != nil {
			return nil, nil, nil, err
		}
		out := expr
		if value != x.Value {
			out = &nodes.Cast{Value: value, TypeName: x.TypeName}
		}
		return out, aggs, pre, nil

	case *nodes.SetFunction:
		// COUNT(*) has no scalar argument to pre-compute: the asterisk
		// survives into the Aggregate and only the result name is minted.
		if _, ok := x.Arg.(*nodes.Asterisk); ok {
			aggAlias := s.fresh()
			agg := nodes.NewDerivedColumn(&nodes.SetFunction{Func: x.Func, Arg: nodes.Star()}, aggAlias)
			return nodes.Ref(aggAlias), []*nodes.DerivedColumn{agg}, nil, nil
		}

		inner, innerAggs, innerPre, err := s.split(x.Arg)
		if err != nil {
			return nil, nil, nil, err
		}
		if len(innerAggs) > 0 || len(innerPre) > 0 {
			return nil, nil, nil, ErrNestedAggregate.New()
		}

		preAlias := s.fresh()
		aggAlias := s.fresh()

		preAgg := nodes.NewDerivedColumn(inner, preAlias)
		agg := nodes.NewDerivedColumn(
			&nodes.SetFunction{Func: x.Func, Arg: nodes.Ref(preAlias)},
			aggAlias,
		)
		result := nodes.Ref(aggAlias)
		return result, []*nodes.DerivedColumn{agg}, append(innerPre, preAgg), nil

	case *nodes.DerivedColumn:
		value, aggs, pre, err := s.split(x.Value)
		if err != nil {
			return nil, nil, nil, err
		}
		out := expr
		if value != x.Value {
			out = x.WithValue(value)
		}
		return out, aggs, pre, nil

	default:
		return expr, nil, nil, nil
	}
}
