package engine

import (
	"github.com/sheetcore/engine/internal/formula"
	"github.com/sheetcore/engine/internal/value"
)

// Cell holds one location's user-supplied text, its parsed formula
// tree (nil for non-formula cells), and its last-computed value.
// Contents is stored exactly as the user set it (trimmed), matching
// the persisted-format contract that cell contents are the text the
// user typed, not the evaluated value.
type Cell struct {
	Contents string
	Tree     formula.Node
	Value    value.Value
}

func newEmptyCell() *Cell {
	return &Cell{Value: value.Empty}
}

// IsEmpty reports whether the cell currently holds no contents at
// all, as opposed to contents that merely evaluate to the empty
// value (e.g. a formula returning "").
func (c *Cell) IsEmpty() bool {
	return c.Contents == "" && c.Tree == nil
}

// IsFormula reports whether this cell's contents are a parsed
// formula (as opposed to a literal, or text that failed to parse).
func (c *Cell) IsFormula() bool {
	return c.Tree != nil
}
