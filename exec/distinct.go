package exec

import (
	"github.com/mitchellh/hashstructure"

	"github.com/bawdo/quarry/plan"
)

// runDropDuplicates keeps the first occurrence of each distinct row. Rows are
// keyed by a structural hash of their values.
func runDropDuplicates(node *plan.DropDuplicates, cat Catalog) (*Table, error) {
	input, err := Run(node.Input, cat)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]bool)
	var keep []int
	for i := 0; i < input.NumRows(); i++ {
		hash, err := hashstructure.Hash(input.Row(i), nil)
		if err != nil {
			return nil, err
		}
		if seen[hash] {
			continue
		}
		seen[hash] = true
		keep = append(keep, i)
	}
	return input.selectRows(keep), nil
}
