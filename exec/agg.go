package exec

import (
	"github.com/mitchellh/hashstructure"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/plan"
)

// ErrBadAggregate is returned when an Aggregate node violates the compiled
// shape: every aggregate must be an aliased set function over a column
// reference (or `*` for COUNT).
var ErrBadAggregate = errors.NewKind("malformed aggregate %s")

func runAggregate(node *plan.Aggregate, cat Catalog) (*Table, error) {
	input, err := Run(node.Input, cat)
	if err != nil {
		return nil, err
	}

	if node.GroupBy == nil {
		return aggregateAll(node, input)
	}
	return aggregateGrouped(node, input)
}

// aggregateAll reduces the whole input to a single row.
func aggregateAll(node *plan.Aggregate, input *Table) (*Table, error) {
	columns := make([]Column, len(node.Aggregates))
	for c, agg := range node.Aggregates {
		value, err := applyAggregate(agg, input, allRows(input.NumRows()))
		if err != nil {
			return nil, err
		}
		columns[c] = NewColumn("", agg.Alias, []any{value})
	}
	return NewTable(columns...)
}

// aggregateGrouped reduces each group to one row, groups ordered by first
// appearance. Group membership is keyed by a hash of the group column
// values.
func aggregateGrouped(node *plan.Aggregate, input *Table) (*Table, error) {
	keyCols := make([]int, len(node.GroupBy))
	for k, ref := range node.GroupBy {
		idx, err := input.Resolve(ref.Parts)
		if err != nil {
			return nil, err
		}
		keyCols[k] = idx
	}

	groupIndex := make(map[uint64]int)
	var groups [][]int
	var firstRows []int
	for i := 0; i < input.NumRows(); i++ {
		key := make([]any, len(keyCols))
		for k, col := range keyCols {
			key[k] = input.columns[col].Values[i]
		}
		hash, err := hashstructure.Hash(key, nil)
		if err != nil {
			return nil, err
		}
		g, ok := groupIndex[hash]
		if !ok {
			g = len(groups)
			groupIndex[hash] = g
			groups = append(groups, nil)
			firstRows = append(firstRows, i)
		}
		groups[g] = append(groups[g], i)
	}

	columns := make([]Column, 0, len(keyCols)+len(node.Aggregates))
	for _, col := range keyCols {
		values := make([]any, len(groups))
		for g, first := range firstRows {
			values[g] = input.columns[col].Values[first]
		}
		columns = append(columns, Column{Key: ColKey{Name: input.columns[col].Key.Name}, Values: values})
	}
	for _, agg := range node.Aggregates {
		values := make([]any, len(groups))
		for g, rows := range groups {
			value, err := applyAggregate(agg, input, rows)
			if err != nil {
				return nil, err
			}
			values[g] = value
		}
		columns = append(columns, NewColumn("", agg.Alias, values))
	}
	return NewTable(columns...)
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// applyAggregate evaluates one aggregate entry over the given rows.
func applyAggregate(agg *nodes.DerivedColumn, input *Table, rows []int) (any, error) {
	fn, ok := agg.Value.(*nodes.SetFunction)
	if !ok || agg.Alias == "" {
		return nil, ErrBadAggregate.New(agg.SelectedName())
	}

	if _, ok := fn.Arg.(*nodes.Asterisk); ok {
		if fn.Func != nodes.SetCount {
			return nil, ErrBadAggregate.New(agg.Alias)
		}
		return int64(len(rows)), nil
	}

	ref, ok := fn.Arg.(*nodes.ColumnReference)
	if !ok {
		return nil, ErrBadAggregate.New(agg.Alias)
	}
	col, err := input.Resolve(ref.Parts)
	if err != nil {
		return nil, err
	}

	// NULLs are ignored by every aggregate function.
	var values []any
	for _, i := range rows {
		if v := input.columns[col].Values[i]; v != nil {
			values = append(values, v)
		}
	}

	switch fn.Func {
	case nodes.SetCount:
		return int64(len(values)), nil

	case nodes.SetSum:
		return sumValues(values)

	case nodes.SetAvg:
		if len(values) == 0 {
			return nil, nil
		}
		total, err := sumValues(values)
		if err != nil {
			return nil, err
		}
		f, err := toFloat(total)
		if err != nil {
			return nil, err
		}
		return f / float64(len(values)), nil

	case nodes.SetMin:
		return extremum(values, -1)

	case nodes.SetMax:
		return extremum(values, 1)

	default:
		return nil, ErrBadAggregate.New(agg.Alias)
	}
}

// sumValues adds numeric values, staying integral while every operand is.
// An empty input sums to NULL.
func sumValues(values []any) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	allInts := true
	for _, v := range values {
		if _, ok := v.(int64); !ok {
			allInts = false
			break
		}
	}
	if allInts {
		var total int64
		for _, v := range values {
			total += v.(int64)
		}
		return total, nil
	}
	var total float64
	for _, v := range values {
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		total += f
	}
	return total, nil
}

// extremum returns the minimum (sign < 0) or maximum (sign > 0) value.
func extremum(values []any, sign int) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	best := values[0]
	for _, v := range values[1:] {
		cmp, err := compareValues(v, best)
		if err != nil {
			return nil, err
		}
		if sign < 0 && cmp < 0 || sign > 0 && cmp > 0 {
			best = v
		}
	}
	return best, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, ErrInvalidValue.New(v, "not a number")
	}
}
