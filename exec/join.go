package exec

import (
	"github.com/bawdo/quarry/nodes"
	"github.com/bawdo/quarry/plan"
)

func runCrossJoin(node *plan.CrossJoin, cat Catalog) (*Table, error) {
	left, err := Run(node.Left, cat)
	if err != nil {
		return nil, err
	}
	right, err := Run(node.Right, cat)
	if err != nil {
		return nil, err
	}

	out := newJoinBuilder(left, right)
	for l := 0; l < left.NumRows(); l++ {
		for r := 0; r < right.NumRows(); r++ {
			out.add(l, r)
		}
	}
	return out.build()
}

func runJoin(node *plan.Join, cat Catalog) (*Table, error) {
	left, err := Run(node.Left, cat)
	if err != nil {
		return nil, err
	}
	right, err := Run(node.Right, cat)
	if err != nil {
		return nil, err
	}

	out := newJoinBuilder(left, right)
	leftMatched := make([]bool, left.NumRows())
	rightMatched := make([]bool, right.NumRows())

	// Nested-loop join: the ON condition is an arbitrary boolean over the
	// combined row, so there is no key to index on in general.
	for l := 0; l < left.NumRows(); l++ {
		for r := 0; r < right.NumRows(); r++ {
			combined := out.combinedRow(l, r)
			match, err := evalExpr(combined, 0, node.On)
			if err != nil {
				return nil, err
			}
			if match == true {
				out.add(l, r)
				leftMatched[l] = true
				rightMatched[r] = true
			}
		}
	}

	switch node.How {
	case nodes.LeftOuterJoin:
		out.padLeft(leftMatched)
	case nodes.RightOuterJoin:
		out.padRight(rightMatched)
	case nodes.FullOuterJoin:
		out.padLeft(leftMatched)
		out.padRight(rightMatched)
	}
	return out.build()
}

// joinBuilder accumulates matched row pairs over the concatenated schema of
// two tables. A side index of -1 pads that side with NULLs.
type joinBuilder struct {
	left, right *Table
	pairs       [][2]int
}

func newJoinBuilder(left, right *Table) *joinBuilder {
	return &joinBuilder{left: left, right: right}
}

func (b *joinBuilder) add(l, r int) {
	b.pairs = append(b.pairs, [2]int{l, r})
}

// padLeft appends unmatched left rows with a NULL right side, in input order.
func (b *joinBuilder) padLeft(matched []bool) {
	for l, ok := range matched {
		if !ok {
			b.pairs = append(b.pairs, [2]int{l, -1})
		}
	}
}

// padRight appends unmatched right rows with a NULL left side, in input order.
func (b *joinBuilder) padRight(matched []bool) {
	for r, ok := range matched {
		if !ok {
			b.pairs = append(b.pairs, [2]int{-1, r})
		}
	}
}

// combinedRow materializes a one-row table over the concatenated schema,
// used to evaluate the ON condition for a candidate pair.
func (b *joinBuilder) combinedRow(l, r int) *Table {
	columns := make([]Column, 0, b.left.NumCols()+b.right.NumCols())
	for _, col := range b.left.columns {
		columns = append(columns, Column{Key: col.Key, Values: []any{col.Values[l]}})
	}
	for _, col := range b.right.columns {
		columns = append(columns, Column{Key: col.Key, Values: []any{col.Values[r]}})
	}
	return &Table{columns: columns, length: 1}
}

func (b *joinBuilder) build() (*Table, error) {
	columns := make([]Column, 0, b.left.NumCols()+b.right.NumCols())
	for _, col := range b.left.columns {
		values := make([]any, len(b.pairs))
		for i, pair := range b.pairs {
			if pair[0] >= 0 {
				values[i] = col.Values[pair[0]]
			}
		}
		columns = append(columns, Column{Key: col.Key, Values: values})
	}
	for _, col := range b.right.columns {
		values := make([]any, len(b.pairs))
		for i, pair := range b.pairs {
			if pair[1] >= 0 {
				values[i] = col.Values[pair[1]]
			}
		}
		columns = append(columns, Column{Key: col.Key, Values: values})
	}

	table, err := NewTable(columns...)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return NewRowTable(len(b.pairs)), nil
	}
	return table, nil
}
