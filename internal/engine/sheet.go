package engine

import (
	"strings"

	"github.com/sheetcore/engine/internal/ref"
)

// cellPos is a sheet-local cell coordinate (1-based, matching
// ref.Reference.Col/Row).
type cellPos struct {
	col, row int
}

// Sheet stores its cells in a sparse mapping keyed by (col, row), per
// the data model: no dense grid, no chunking. Extent is reported by
// scanning the non-empty cells -- simple and correct, as the spec's
// design notes call for; the teacher's 256x256 chunked Worksheet
// layout solves a memory/locality problem this engine does not have
// at the scale it targets.
type Sheet struct {
	Name  string
	cells map[cellPos]*Cell
}

func newSheet(name string) *Sheet {
	return &Sheet{Name: name, cells: map[cellPos]*Cell{}}
}

// cell returns the cell at pos, creating an empty one if absent. The
// caller is responsible for pruning it back out if it ends up empty
// (see prune).
func (s *Sheet) cell(pos cellPos) *Cell {
	c, ok := s.cells[pos]
	if !ok {
		c = newEmptyCell()
		s.cells[pos] = c
	}
	return c
}

func (s *Sheet) get(pos cellPos) (*Cell, bool) {
	c, ok := s.cells[pos]
	return c, ok
}

// prune removes pos from storage if its cell is empty, keeping the
// sparse map from accumulating cleared-out cells forever.
func (s *Sheet) prune(pos cellPos) {
	if c, ok := s.cells[pos]; ok && c.IsEmpty() {
		delete(s.cells, pos)
	}
}

// nonEmptyContents returns every non-empty cell's raw contents, keyed
// by lower-cased location string, for serialization.
func (s *Sheet) nonEmptyContents() map[string]string {
	out := map[string]string{}
	for pos, c := range s.cells {
		if c.IsEmpty() {
			continue
		}
		loc := ref.Reference{Col: pos.col, Row: pos.row}.LocationString()
		out[strings.ToLower(loc)] = c.Contents
	}
	return out
}

// extent scans every stored cell for the furthest non-empty column
// and row, returning (0, 0) for an empty sheet.
func (s *Sheet) extent() (cols, rows int) {
	for pos, c := range s.cells {
		if c.IsEmpty() {
			continue
		}
		if pos.col > cols {
			cols = pos.col
		}
		if pos.row > rows {
			rows = pos.row
		}
	}
	return cols, rows
}
