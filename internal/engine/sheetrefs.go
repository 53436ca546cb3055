package engine

import "github.com/sheetcore/engine/internal/ref"

// sheetRefGraph tracks, for every cell whose formula names a sheet
// (quoted or not, existing or not), which sheet names it names. This
// is separate from the dependency graph because a formula can refer
// to a sheet that does not exist yet (or no longer exists); creating,
// deleting, or renaming a sheet needs to wake every cell that names
// it, even one that currently evaluates to BAD_REFERENCE.
type sheetRefGraph struct {
	forward  map[ref.CellKey]map[string]bool
	backward map[string]map[ref.CellKey]bool
}

func newSheetRefGraph() *sheetRefGraph {
	return &sheetRefGraph{forward: map[ref.CellKey]map[string]bool{}, backward: map[string]map[ref.CellKey]bool{}}
}

func (g *sheetRefGraph) link(from ref.CellKey, sheetNameLower string) {
	if g.forward[from] == nil {
		g.forward[from] = map[string]bool{}
	}
	g.forward[from][sheetNameLower] = true
	if g.backward[sheetNameLower] == nil {
		g.backward[sheetNameLower] = map[ref.CellKey]bool{}
	}
	g.backward[sheetNameLower][from] = true
}

// clearForward removes every sheet-name reference recorded for from.
func (g *sheetRefGraph) clearForward(from ref.CellKey) {
	for sheetName := range g.forward[from] {
		delete(g.backward[sheetName], from)
	}
	delete(g.forward, from)
}

// cellsReferencing returns every cell that names sheetNameLower,
// in no particular order.
func (g *sheetRefGraph) cellsReferencing(sheetNameLower string) []ref.CellKey {
	var out []ref.CellKey
	for k := range g.backward[sheetNameLower] {
		out = append(out, k)
	}
	return out
}

// renameSheetName moves every recorded reference from oldLower to
// newLower, used when a sheet is renamed so future lookups use the
// new key; it does not touch formula text, only this index.
func (g *sheetRefGraph) renameSheetName(oldLower, newLower string) {
	cells := g.backward[oldLower]
	if cells == nil {
		return
	}
	delete(g.backward, oldLower)
	g.backward[newLower] = cells
	for k := range cells {
		if g.forward[k] != nil {
			delete(g.forward[k], oldLower)
			g.forward[k][newLower] = true
		}
	}
}

// moveCellKey re-keys from's own forward entry (and the corresponding
// backward sets) to a new cell key, used when the sheet a cell lives
// in is renamed -- as opposed to renameSheetName, which handles a
// different, renamed sheet being named inside the cell's formula.
func (g *sheetRefGraph) moveCellKey(oldKey, newKey ref.CellKey) {
	names := g.forward[oldKey]
	if names == nil {
		return
	}
	delete(g.forward, oldKey)
	g.forward[newKey] = names
	for name := range names {
		if g.backward[name] != nil {
			delete(g.backward[name], oldKey)
			g.backward[name][newKey] = true
		}
	}
}
