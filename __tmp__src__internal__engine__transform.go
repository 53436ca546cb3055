package engine

import (
	"golang.org/x/exp/slices"

	"github.com/sheetcore/engine/internal/formula"
	"github.com/sheetcore/engine/internal/ref"
	"github.com/sheetcore/engine/internal/value"
)

// rewriteContentsForMove re-parses formula contents and shifts every
// relative reference by (dCol, dRow) via formula.Move, printing the
// result back to text. Non-formula contents (including a formula that
// fails to re-parse, which should not happen for contents this engine
// itself produced) pass through unchanged, since a literal value holds
// no references to adjust.
func rewriteContentsForMove(contents string, dCol, dRow int) string {
	if contents == "" || contents[0] != '=' {
		return contents
	}
	tree, err := formula.ParseFormula(contents[1:])
	if err != nil {
		return contents
	}
	formula.Move(tree, dCol, dRow)
	return "=" + formula.Print(tree)
}

func normalizeCorners(aCol, aRow, bCol, bRow int) (startCol, startRow, endCol, endRow int) {
	startCol, endCol = aCol, bCol
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}
	startRow, endRow = aRow, bRow
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	return
}

// moveOrCopy implements the shared body of MoveCells/CopyCells: it
// relocates (or duplicates) a rectangular region, row/column-shifting
// every moved formula's relative references, and works correctly even
// when source and destination overlap by choosing an iteration order
// that never overwrites a cell before it has been read.
func (wb *Workbook) moveOrCopy(sheetName, start, end, to, toSheetName string, isMove bool) error {
	srcLower := lowerName(sheetName)
	if _, ok := wb.sheets[srcLower]; !ok {
		return newInputError(NotFound, "no such sheet: "+sheetName)
	}
	if toSheetName == "" {
		toSheetName = sheetName
	}
	dstLower := lowerName(toSheetName)
	if _, ok := wb.sheets[dstLower]; !ok {
		return newInputError(NotFound, "no such sheet: "+toSheetName)
	}

	aCol, aRow, err := parseLocation(start)
	if err != nil {
		return err
	}
	bCol, bRow, err := parseLocation(end)
	if err != nil {
		return err
	}
	toCol, toRow, err := parseLocation(to)
	if err != nil {
		return err
	}
	startCol, startRow, endCol, endRow := normalizeCorners(aCol, aRow, bCol, bRow)

	dCol, dRow := toCol-startCol, toRow-startRow
	sizeCol, sizeRow := endCol-startCol, endRow-startRow
	toEndCol, toEndRow := toCol+sizeCol, toRow+sizeRow
	toStartRef := ref.Reference{Col: toCol, Row: toRow}
	toEndRef := ref.Reference{Col: toEndCol, Row: toEndRow}
	if !toStartRef.CheckBounds() || !toEndRef.CheckBounds() {
		return newInputError(OutOfRange, "move/copy target exceeds the grid")
	}

	var colIter, rowIter []int
	if dCol < 0 {
		for c := 0; c <= sizeCol; c++ {
			colIter = append(colIter, c)
		}
	} else {
		for c := sizeCol; c >= 0; c-- {
			colIter = append(colIter, c)
		}
	}
	if dRow < 0 {
		for r := 0; r <= sizeRow; r++ {
			rowIter = append(rowIter, r)
		}
	} else {
		for r := sizeRow; r >= 0; r-- {
			rowIter = append(rowIter, r)
		}
	}

	seen := map[ref.CellKey]bool{}
	var seed []ref.CellKey
	for _, c := range colIter {
		for _, r := range rowIter {
			fromKey := ref.NewCellKey(srcLower, startCol+c, startRow+r)
			toKey := ref.NewCellKey(dstLower, toCol+c, toRow+r)

			var contents string
			if fc := wb.cellAt(fromKey); fc != nil {
				contents = fc.Contents
			}
			shifted := rewriteContentsForMove(contents, dCol, dRow)
			wb.applyContents(toKey, shifted)
			if !seen[toKey] {
				seen[toKey] = true
				seed = append(seed, toKey)
			}

			if isMove && toKey != fromKey {
				wb.applyContents(fromKey, "")
			}
			if !seen[fromKey] {
				seen[fromKey] = true
				seed = append(seed, fromKey)
			}
		}
	}
	wb.runRecomputation(seed)
	op := "copy_cells"
	if isMove {
		op = "move_cells"
	}
	wb.log.SheetOp(op, sheetName+"!"+start+":"+end+" -> "+toSheetName+"!"+to, nil)
	return nil
}

// MoveCells relocates a rectangular region, clearing the source cells
// that are not also part of the destination.
func (wb *Workbook) MoveCells(sheetName, start, end, to, toSheetName string) error {
	return wb.moveOrCopy(sheetName, start, end, to, toSheetName, true)
}

// CopyCells duplicates a rectangular region, leaving the source
// untouched.
func (wb *Workbook) CopyCells(sheetName, start, end, to, toSheetName string) error {
	return wb.moveOrCopy(sheetName, start, end, to, toSheetName, false)
}

// sortKey is one sort column: its absolute column index within the
// region and whether it sorts descending.
type sortKey struct {
	col        int
	descending bool
}

// SortRegion stably sorts the rows of a rectangular region by the
// values in one or more of its columns. colIndexes is one-based
// relative to the region's left edge; a negative index sorts that
// column descending. No index may be zero, out of the region's
// width, or repeated (by absolute value).
func (wb *Workbook) SortRegion(sheetName, start, end string, colIndexes []int) error {
	lower := lowerName(sheetName)
	if _, ok := wb.sheets[lower]; !ok {
		return newInputError(NotFound, "no such sheet: "+sheetName)
	}
	aCol, aRow, err := parseLocation(start)
	if err != nil {
		return err
	}
	bCol, bRow, err := parseLocation(end)
	if err != nil {
		return err
	}
	startCol, startRow, endCol, endRow := normalizeCorners(aCol, aRow, bCol, bRow)
	width := endCol - startCol + 1

	if len(colIndexes) == 0 {
		return newInputError(InvalidArgument, "sort_region requires at least one column index")
	}
	seenAbs := map[int]bool{}
	keys := make([]sortKey, 0, len(colIndexes))
	for _, idx := range colIndexes {
		if idx == 0 {
			return newInputError(InvalidArgument, "sort column index cannot be 0")
		}
		abs := idx
		if abs < 0 {
			abs = -abs
		}
		if abs > width {
			return newInputError(InvalidArgument, "sort column index out of range")
		}
		if seenAbs[abs] {
			return newInputError(InvalidArgument, "duplicate sort column index")
		}
		seenAbs[abs] = true
		keys = append(keys, sortKey{col: startCol + abs - 1, descending: idx < 0})
	}

	numRows := endRow - startRow + 1
	rowValues := make([][]value.Value, numRows)
	for i := 0; i < numRows; i++ {
		row := startRow + i
		vals := make([]value.Value, len(keys))
		for j, k := range keys {
			c := wb.cellAt(ref.NewCellKey(lower, k.col, row))
			if c != nil {
				vals[j] = c.Value
			} else {
				vals[j] = value.Empty
			}
		}
		rowValues[i] = vals
	}

	rowOrder := make([]int, numRows)
	for i := range rowOrder {
		rowOrder[i] = i
	}
	slices.SortStableFunc(rowOrder, func(a, b int) bool {
		for colIdx, k := range keys {
			c, _ := value.Compare(rowValues[a][colIdx], rowValues[b][colIdx])
			if c == 0 {
				continue
			}
			if k.descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	snapshot := make([][]string, numRows)
	for i := 0; i < numRows; i++ {
		row := startRow + i
		cols := make([]string, endCol-startCol+1)
		for j := startCol; j <= endCol; j++ {
			c := wb.cellAt(ref.NewCellKey(lower, j, row))
			if c != nil {
				cols[j-startCol] = c.Contents
			}
		}
		snapshot[i] = cols
	}

	var seed []ref.CellKey
	for toIdx, fromIdx := range rowOrder {
		toRow := startRow + toIdx
		fromRow := startRow + fromIdx
		for j := startCol; j <= endCol; j++ {
			contents := snapshot[fromIdx][j-startCol]
			shifted := rewriteContentsForMove(contents, 0, toRow-fromRow)
			key := ref.NewCellKey(lower, j, toRow)
			wb.applyContents(key, shifted)
			seed = append(seed, key)
		}
	}
	wb.runRecomputation(seed)
	wb.log.SheetOp("sort_region", sheetName+"!"+start+":"+end, nil)
	return nil
}


