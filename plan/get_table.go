package plan

import "fmt"

// GetTable is a leaf operator reading a named table from the catalog.
type GetTable struct {
	Name  string
	Alias string // "" when the table is unaliased
}

// NewGetTable creates a GetTable leaf.
func NewGetTable(name, alias string) *GetTable {
	return &GetTable{Name: name, Alias: alias}
}

func (*GetTable) Children() []Node { return nil }

func (g *GetTable) String() string {
	if g.Alias != "" {
		return fmt.Sprintf("GetTable(%s AS %s)", g.Name, g.Alias)
	}
	return fmt.Sprintf("GetTable(%s)", g.Name)
}
