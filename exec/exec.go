package exec

import (
	"sort"

	"gopkg.in/src-d/go-errors.v1"

	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/plan"
	"github.com/bawdo/quarry/render"
)

// ErrUnknownOperator is returned for a plan node outside the documented
// operator vocabulary.
var ErrUnknownOperator = errors.NewKind("unknown plan operator %T")

// Run executes a plan against the catalog and returns the result table.
func Run(node plan.Node, cat Catalog) (*Table, error) {
	switch x := node.(type) {
	case *plan.GetTable:
		return runGetTable(x, cat)

	case *plan.Filter:
		return runFilter(x, cat)

	case *plan.Transform:
		return runTransform(x, cat)

	case *plan.Aggregate:
		return runAggregate(x, cat)

	case *plan.Sort:
		return runSort(x, cat)

	case *plan.Limit:
		return runLimit(x, cat)

	case *plan.DropDuplicates:
		return runDropDuplicates(x, cat)

	case *plan.CrossJoin:
		return runCrossJoin(x, cat)

	case *plan.Join:
		return runJoin(x, cat)

	default:
		return nil, ErrUnknownOperator.New(node)
	}
}

func runGetTable(node *plan.GetTable, cat Catalog) (*Table, error) {
	table, err := cat.Table(node.Name)
	if err != nil {
		return nil, err
	}
	if node.Alias != "" {
		table = table.WithTableName(node.Alias)
	}
	return table, nil
}

func runFilter(node *plan.Filter, cat Catalog) (*Table, error) {
	input, err := Run(node.Input, cat)
	if err != nil {
		return nil, err
	}

	var keep []int
	for i := 0; i < input.NumRows(); i++ {
		value, err := evalExpr(input, i, node.Predicate)
		if err != nil {
			return nil, err
		}
		if value == true {
			keep = append(keep, i)
		}
	}
	return input.selectRows(keep), nil
}

func runTransform(node *plan.Transform, cat Catalog) (*Table, error) {
	input, err := Run(node.Input, cat)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, len(node.Projections))
	for c, col := range node.Projections {
		values := make([]any, input.NumRows())
		for i := 0; i < input.NumRows(); i++ {
			value, err := evalExpr(input, i, col.Value)
			if err != nil {
				return nil, err
			}
			values[i] = value
		}
		columns[c] = NewColumn("", projectionName(col), values)
	}

	out, err := NewTable(columns...)
	if err != nil {
		return nil, err
	}
	// A projection over a table with rows but no columns (DUAL) keeps the
	// row count.
	if len(columns) == 0 {
		return NewRowTable(input.NumRows()), nil
	}
	return out, nil
}

// projectionName picks the output column name for a projection entry: the
// alias when present, the referenced column name for a bare reference, and
// the rendered expression text otherwise.
func projectionName(col *nodes.DerivedColumn) string {
	if name := col.SelectedName(); name != "" {
		return name
	}
	return render.Expr(col.Value)
}

func runSort(node *plan.Sort, cat Catalog) (*Table, error) {
	input, err := Run(node.Input, cat)
	if err != nil {
		return nil, err
	}

	// Evaluate every key for every row up front, then sort row indices.
	keys := make([][]any, len(node.Keys))
	for k, key := range node.Keys {
		keys[k] = make([]any, input.NumRows())
		for i := 0; i < input.NumRows(); i++ {
			value, err := evalExpr(input, i, key.Value)
			if err != nil {
				return nil, err
			}
			keys[k][i] = value
		}
	}

	indices := make([]int, input.NumRows())
	for i := range indices {
		indices[i] = i
	}
	var sortErr error
	sort.SliceStable(indices, func(a, b int) bool {
		for k, key := range node.Keys {
			cmp, err := compareNullable(keys[k][indices[a]], keys[k][indices[b]])
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if key.Direction == nodes.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return input.selectRows(indices), nil
}

// compareNullable orders values treating NULL as greater than everything, so
// NULLs sort last ascending and first descending.
func compareNullable(left, right any) (int, error) {
	switch {
	case left == nil && right == nil:
		return 0, nil
	case left == nil:
		return 1, nil
	case right == nil:
		return -1, nil
	default:
		return compareValues(left, right)
	}
}

func runLimit(node *plan.Limit, cat Catalog) (*Table, error) {
	input, err := Run(node.Input, cat)
	if err != nil {
		return nil, err
	}

	start := node.Offset
	if start > input.NumRows() {
		start = input.NumRows()
	}
	end := start + node.Count
	if end > input.NumRows() {
		end = input.NumRows()
	}

	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, i)
	}
	return input.selectRows(indices), nil
}
