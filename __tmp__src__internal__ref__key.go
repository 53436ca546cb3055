package ref

import "strings"

// CellKey is the stable, comparable handle the dependency graph and
// sheet storage use to identify a cell: a lower-cased sheet name plus
// column/row, independent of any in-memory pointer. Per the design
// note on object identity, the graph never stores raw cell pointers.
type CellKey struct {
	Sheet string // always lower-case
	Col   int
	Row   int
}

// NewCellKey builds a CellKey from a sheet name (case-folded here) and
// a bounds-unchecked column/row pair.
func NewCellKey(sheetName string, col, row int) CellKey {
	return CellKey{Sheet: strings.ToLower(sheetName), Col: col, Row: row}
}

// KeyOf derives the CellKey a reference resolves to, using owningSheet
// when the reference carries no explicit sheet name.
func (r Reference) KeyOf(owningSheet string) CellKey {
	sheet := r.SheetName
	if sheet == "" {
		sheet = owningSheet
	}
	return NewCellKey(sheet, r.Col, r.Row)
}


