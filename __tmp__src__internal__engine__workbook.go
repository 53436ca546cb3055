// Package engine implements the reactive workbook: sheets, cells, the
// dependency graph wiring, structural transforms, and the recompute
// protocol that ties them together. It is the consumer that
// implements eval.Host, keeping internal/eval ignorant of workbook
// structure.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sheetcore/engine/internal/eval"
	"github.com/sheetcore/engine/internal/formula"
	"github.com/sheetcore/engine/internal/graph"
	"github.com/sheetcore/engine/internal/ref"
	"github.com/sheetcore/engine/internal/telemetry"
	"github.com/sheetcore/engine/internal/value"
)

// EngineVersion is the string VERSION() reports and the persisted
// format may record for diagnostics.
const EngineVersion = "1.0"

type notifierEntry struct {
	id uuid.UUID
	fn func(sheetName, location string)
}

// Workbook owns every sheet, the dependency graph, the sheet-name
// reference index, and the registered change notifiers -- the only
// code paths that mutate any of them are the edit entry points below,
// per the single-threaded ownership model.
type Workbook struct {
	sheets    map[string]*Sheet // keyed by lower-cased name
	order     []string          // lower-cased names, in display order
	depGraph  *graph.Graph
	sheetRefs *sheetRefGraph
	notifiers []notifierEntry
	log       telemetry.Logger
}

// NewWorkbook returns an empty workbook that discards its log output.
// Use NewWorkbookWithLogger to capture it.
func NewWorkbook() *Workbook {
	return NewWorkbookWithLogger(telemetry.Discard())
}

// NewWorkbookWithLogger returns an empty workbook logging edit events
// through log.
func NewWorkbookWithLogger(log telemetry.Logger) *Workbook {
	return &Workbook{
		sheets:    map[string]*Sheet{},
		depGraph:  graph.New(),
		sheetRefs: newSheetRefGraph(),
		log:       log,
	}
}

func lowerName(name string) string { return strings.ToLower(name) }

// --- eval.Host ---

var _ eval.Host = (*Workbook)(nil)

func (wb *Workbook) CellValue(key ref.CellKey) (value.Value, bool) {
	sheet, ok := wb.sheets[key.Sheet]
	if !ok {
		return value.Value{}, false
	}
	c, ok := sheet.get(cellPos{key.Col, key.Row})
	if !ok {
		return value.Empty, true
	}
	return c.Value, true
}

func (wb *Workbook) SheetExists(sheetName string) bool {
	_, ok := wb.sheets[lowerName(sheetName)]
	return ok
}

func (wb *Workbook) LinkEvaluated(from, target ref.CellKey) {
	wb.depGraph.Link(from, target, graph.Evaluated)
}

func (wb *Workbook) Version() string { return EngineVersion }

// --- sheet registry ---

// NewSheet creates a sheet, returning its position in display order
// and its final name. An empty name auto-generates "SheetN" for the
// smallest N not already in use (case-insensitively).
func (wb *Workbook) NewSheet(name string) (int, string, error) {
	if name == "" {
		name = wb.nextAutoSheetName()
	} else if strings.TrimSpace(name) == "" {
		return 0, "", newInputError(InvalidArgument, "sheet name cannot be blank")
	}
	lower := lowerName(name)
	if _, exists := wb.sheets[lower]; exists {
		return 0, "", newInputError(AlreadyExists, "sheet already exists: "+name)
	}
	wb.sheets[lower] = newSheet(name)
	wb.order = append(wb.order, lower)

	var seed []ref.CellKey
	for _, k := range wb.sheetRefs.cellsReferencing(lower) {
		seed = append(seed, k)
	}
	wb.runRecomputation(seed)

	wb.log.SheetOp("new_sheet", name, nil)
	return len(wb.order) - 1, name, nil
}

func (wb *Workbook) nextAutoSheetName() string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("Sheet%d", n)
		if _, exists := wb.sheets[lowerName(candidate)]; !exists {
			return candidate
		}
	}
}

// DelSheet removes a sheet and wakes every cell that referenced it
// (they now resolve to BAD_REFERENCE, or regain a non-error value if
// another edit later redefines the name).
func (wb *Workbook) DelSheet(name string) error {
	lower := lowerName(name)
	sheet, ok := wb.sheets[lower]
	if !ok {
		return newInputError(NotFound, "no such sheet: "+name)
	}
	for pos := range sheet.cells {
		key := ref.NewCellKey(lower, pos.col, pos.row)
		wb.depGraph.RemoveNode(key)
		wb.sheetRefs.clearForward(key)
	}
	delete(wb.sheets, lower)
	for i, n := range wb.order {
		if n == lower {
			wb.order = append(wb.order[:i], wb.order[i+1:]...)
			break
		}
	}

	seed := wb.sheetRefs.cellsReferencing(lower)
	wb.runRecomputation(seed)
	wb.log.SheetOp("del_sheet", name, nil)
	return nil
}

// ListSheets returns every sheet name in display order, quoted per
// the usual formula-text quoting rule.
func (wb *Workbook) ListSheets() []string {
	out := make([]string, 0, len(wb.order))
	for _, lower := range wb.order {
		name := wb.sheets[lower].Name
		if ref.NeedsQuotes(name) {
			name = "'" + name + "'"
		}
		out = append(out, name)
	}
	return out
}

// GetSheetExtent reports the furthest non-empty (column, row) in a
// sheet, (0, 0) if it has no contents.
func (wb *Workbook) GetSheetExtent(name string) (cols, rows int, err error) {
	sheet, ok := wb.sheets[lowerName(name)]
	if !ok {
		return 0, 0, newInputError(NotFound, "no such sheet: "+name)
	}
	c, r := sheet.extent()
	return c, r, nil
}

// SheetNames returns every sheet's name in display order, exactly as
// last set (unquoted), for callers -- such as internal/persist -- that
// need the raw name rather than ListSheets' formula-quoted form.
func (wb *Workbook) SheetNames() []string {
	out := make([]string, 0, len(wb.order))
	for _, lower := range wb.order {
		out = append(out, wb.sheets[lower].Name)
	}
	return out
}

// SheetCellContents returns every non-empty cell's contents in a
// sheet, keyed by lower-cased location string (e.g. "a1"), for
// serialization. The returned map is a fresh copy safe to retain.
func (wb *Workbook) SheetCellContents(name string) (map[string]string, error) {
	sheet, ok := wb.sheets[lowerName(name)]
	if !ok {
		return nil, newInputError(NotFound, "no such sheet: "+name)
	}
	return sheet.nonEmptyContents(), nil
}

// RenameSheet renames a sheet and rewrites every formula that named
// it, ripple-waking their dependents via the recomputation protocol.
func (wb *Workbook) RenameSheet(oldName, newName string) error {
	oldLower := lowerName(oldName)
	sheet, ok := wb.sheets[oldLower]
	if !ok {
		return newInputError(NotFound, "no such sheet: "+oldName)
	}
	if strings.TrimSpace(newName) == "" {
		return newInputError(InvalidArgument, "sheet name cannot be blank")
	}
	newLower := lowerName(newName)
	if newLower != oldLower {
		if _, exists := wb.sheets[newLower]; exists {
			return newInputError(AlreadyExists, "sheet already exists: "+newName)
		}
	}

	referencing := wb.sheetRefs.cellsReferencing(oldLower)

	sheet.Name = newName
	delete(wb.sheets, oldLower)
	wb.sheets[newLower] = sheet
	for i, n := range wb.order {
		if n == oldLower {
			wb.order[i] = newLower
			break
		}
	}
	wb.sheetRefs.renameSheetName(oldLower, newLower)
	wb.renumberSheetCells(sheet, oldLower, newLower)

	var seed []ref.CellKey
	for _, key := range referencing {
		key = wb.remapKeyAfterSheetRename(key, oldLower, newLower)
		cell := wb.cellAt(key)
		if cell == nil || cell.Tree == nil {
			continue
		}
		formula.RenameSheet(cell.Tree, oldName, newName)
		text := "=" + formula.Print(cell.Tree)
		wb.applyContents(wb.remapKeyAfterSheetRename(key, oldLower, newLower), text)
		seed = append(seed, wb.remapKeyAfterSheetRename(key, oldLower, newLower))
	}
	wb.runRecomputation(seed)
	wb.log.SheetOp("rename_sheet", oldName+" -> "+newName, nil)
	return nil
}

// renumberSheetCells updates the dependency graph's node keys after a
// sheet's case-folded name changes, since ref.CellKey embeds it.
func (wb *Workbook) renumberSheetCells(sheet *Sheet, oldLower, newLower string) {
	if oldLower == newLower {
		return
	}
	for pos := range sheet.cells {
		oldKey := ref.NewCellKey(oldLower, pos.col, pos.row)
		newKey := ref.NewCellKey(newLower, pos.col, pos.row)
		wb.depGraph.RenameNode(oldKey, newKey)
	}
}

func (wb *Workbook) remapKeyAfterSheetRename(key ref.CellKey, oldLower, newLower string) ref.CellKey {
	if key.Sheet == oldLower {
		return ref.NewCellKey(newLower, key.Col, key.Row)
	}
	return key
}

// MoveSheet relocates a sheet to a new position in display order.
func (wb *Workbook) MoveSheet(name string, index int) error {
	lower := lowerName(name)
	if _, ok := wb.sheets[lower]; !ok {
		return newInputError(NotFound, "no such sheet: "+name)
	}
	if index < 0 || index >= len(wb.order) {
		return newInputError(OutOfRange, "sheet index out of range")
	}
	cur := -1
	for i, n := range wb.order {
		if n == lower {
			cur = i
			break
		}
	}
	wb.order = append(wb.order[:cur], wb.order[cur+1:]...)
	out := make([]string, 0, len(wb.order)+1)
	out = append(out, wb.order[:index]...)
	out = append(out, lower)
	out = append(out, wb.order[index:]...)
	wb.order = out
	wb.log.SheetOp("move_sheet", name, nil)
	return nil
}

// CopySheet duplicates a sheet's contents (not its formulas'
// semantics -- formula text is copied verbatim, so any reference to
// the original sheet's own name now points back at it, exactly like
// pasting the same formulas into a new tab) under an auto-generated
// "<name>_copy"/"<name>_copyN" name.
func (wb *Workbook) CopySheet(name string) (int, string, error) {
	lower := lowerName(name)
	src, ok := wb.sheets[lower]
	if !ok {
		return 0, "", newInputError(NotFound, "no such sheet: "+name)
	}
	newName := wb.nextCopyName(src.Name)
	idx, _, err := wb.NewSheet(newName)
	if err != nil {
		return 0, "", err
	}
	newLower := lowerName(newName)
	var seed []ref.CellKey
	for pos, c := range src.cells {
		if c.IsEmpty() {
			continue
		}
		key := ref.NewCellKey(newLower, pos.col, pos.row)
		wb.applyContents(key, c.Contents)
		seed = append(seed, key)
	}
	wb.runRecomputation(seed)
	wb.log.SheetOp("copy_sheet", name+" -> "+newName, nil)
	return idx, newName, nil
}

func (wb *Workbook) nextCopyName(base string) string {
	candidate := base + "_copy"
	if _, exists := wb.sheets[lowerName(candidate)]; !exists {
		return candidate
	}
	for n := 2; ; n++ {
		candidate = fmt.Sprintf("%s_copy%d", base, n)
		if _, exists := wb.sheets[lowerName(candidate)]; !exists {
			return candidate
		}
	}
}

// --- cell access ---

func (wb *Workbook) cellAt(key ref.CellKey) *Cell {
	sheet, ok := wb.sheets[key.Sheet]
	if !ok {
		return nil
	}
	c, ok := sheet.get(cellPos{key.Col, key.Row})
	if !ok {
		return nil
	}
	return c
}

func parseLocation(loc string) (col, row int, err error) {
	r, perr := ref.ParseReference(loc, ref.ParseOptions{AllowAbsolute: false})
	if perr != nil {
		return 0, 0, newInputError(InvalidArgument, "invalid location: "+loc)
	}
	if r.SheetName != "" {
		return 0, 0, newInputError(InvalidArgument, "location must not carry a sheet qualifier: "+loc)
	}
	if !r.CheckBounds() {
		return 0, 0, newInputError(InvalidArgument, "location out of range: "+loc)
	}
	return r.Col, r.Row, nil
}

// SetCellContents parses and stores text at sheet!loc, then runs the
// recomputation protocol. An empty or all-whitespace text clears the
// cell.
func (wb *Workbook) SetCellContents(sheetName, loc, text string) error {
	lower := lowerName(sheetName)
	if _, ok := wb.sheets[lower]; !ok {
		return newInputError(NotFound, "no such sheet: "+sheetName)
	}
	col, row, err := parseLocation(loc)
	if err != nil {
		return err
	}
	key := ref.NewCellKey(lower, col, row)
	wb.applyContents(key, text)
	wb.runRecomputation([]ref.CellKey{key})
	wb.log.CellEdited(sheetName, strings.ToLower(loc), text)
	return nil
}

// GetCellContents returns the raw text last set at sheet!loc, "" if
// the cell is empty.
func (wb *Workbook) GetCellContents(sheetName, loc string) (string, error) {
	lower := lowerName(sheetName)
	if _, ok := wb.sheets[lower]; !ok {
		return "", newInputError(NotFound, "no such sheet: "+sheetName)
	}
	col, row, err := parseLocation(loc)
	if err != nil {
		return "", err
	}
	c := wb.cellAt(ref.NewCellKey(lower, col, row))
	if c == nil {
		return "", nil
	}
	return c.Contents, nil
}

// GetCellValue returns the last-computed value at sheet!loc, the
// empty value if the cell has never been set.
func (wb *Workbook) GetCellValue(sheetName, loc string) (value.Value, error) {
	lower := lowerName(sheetName)
	if _, ok := wb.sheets[lower]; !ok {
		return value.Value{}, newInputError(NotFound, "no such sheet: "+sheetName)
	}
	col, row, err := parseLocation(loc)
	if err != nil {
		return value.Value{}, err
	}
	c := wb.cellAt(ref.NewCellKey(lower, col, row))
	if c == nil {
		return value.Empty, nil
	}
	return c.Value, nil
}

// --- notifiers ---

// Subscribe registers fn to be called once per cell whose stored
// value actually changed as a direct or indirect result of an edit.
// It returns a handle for Unsubscribe.
func (wb *Workbook) Subscribe(fn func(sheetName, location string)) uuid.UUID {
	id := uuid.New()
	wb.notifiers = append(wb.notifiers, notifierEntry{id: id, fn: fn})
	return id
}

// Unsubscribe removes a previously registered notifier; a no-op if id
// is unknown (already removed, or never valid).
func (wb *Workbook) Unsubscribe(id uuid.UUID) {
	for i, n := range wb.notifiers {
		if n.id == id {
			wb.notifiers = append(wb.notifiers[:i], wb.notifiers[i+1:]...)
			return
		}
	}
}

// notify delivers (sheet, location) to every registered notifier,
// swallowing a panic from any one of them so the rest still run.
func (wb *Workbook) notify(sheetName, location string) {
	for _, n := range wb.notifiers {
		wb.safeCall(n.fn, sheetName, location)
	}
}

func (wb *Workbook) safeCall(fn func(sheetName, location string), sheetName, location string) {
	defer func() { _ = recover() }()
	fn(sheetName, location)
}

// --- cell lifecycle ---

// applyContents implements the parse/link half of set_contents (§4.6
// steps 1-3): clear this cell's outgoing edges, dispatch on the
// trimmed text's leading character, and for a formula link fresh
// STATIC edges. It deliberately does not evaluate -- recomputeValue,
// invoked uniformly for every affected cell by runRecomputation,
// handles that, so a freshly-edited cell and its woken dependents
// share one evaluation code path.
func (wb *Workbook) applyContents(key ref.CellKey, text string) {
	wb.depGraph.ClearForward(key, graph.Static|graph.Evaluated)
	wb.sheetRefs.clearForward(key)

	sheet := wb.sheets[key.Sheet]
	pos := cellPos{key.Col, key.Row}
	cell := sheet.cell(pos)
	cell.Tree = nil

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		cell.Contents = ""
		cell.Value = value.Empty
		sheet.prune(pos)
		return
	}
	cell.Contents = trimmed

	switch {
	case trimmed[0] == '=':
		tree, perr := formula.ParseFormula(trimmed[1:])
		if perr != nil {
			cell.Value = value.FromError(value.NewError(value.ParseError, perr.Error()))
			return
		}
		cell.Tree = tree
		for _, rr := range formula.CollectStaticRefs(tree, key.Sheet) {
			if rr.Malformed {
				continue
			}
			sheetLower := lowerName(rr.SheetName)
			wb.sheetRefs.link(key, sheetLower)
			if !wb.SheetExists(sheetLower) || !rr.Reference.CheckBounds() {
				continue
			}
			target := ref.NewCellKey(sheetLower, rr.Reference.Col, rr.Reference.Row)
			wb.depGraph.Link(key, target, graph.Static)
		}
	case trimmed[0] == '\'':
		cell.Value = value.String(trimmed[1:])
	case strings.EqualFold(trimmed, "true"):
		cell.Value = value.Boolean(true)
	case strings.EqualFold(trimmed, "false"):
		cell.Value = value.Boolean(false)
	default:
		if kind, ok := value.ParseErrorKind(trimmed); ok {
			cell.Value = value.FromError(value.NewError(kind, ""))
		} else if d, ok := value.ParseNumberLiteral(trimmed); ok {
			cell.Value = value.Number(d)
		} else {
			cell.Value = value.String(trimmed)
		}
	}
}

// recomputeValue implements §4.6's recompute_value: clears only
// runtime edges (preserving static ones), re-evaluates a formula
// cell, and returns the new value. Non-formula cells are unaffected
// (their stored value only changes via applyContents).
func (wb *Workbook) recomputeValue(key ref.CellKey) value.Value {
	cell := wb.cellAt(key)
	if cell == nil || cell.Tree == nil {
		if cell == nil {
			return value.Empty
		}
		return cell.Value
	}
	wb.depGraph.ClearForward(key, graph.Evaluated)
	e := eval.New(wb, key.Sheet, key)
	cell.Value = e.EvalTopLevel(cell.Tree)
	return cell.Value
}

// runRecomputation is the recomputation protocol of §4.8: given the
// seed set of cells whose stored value may have changed, recompute
// every ancestor in topological order, override every cell now in a
// cycle with CIRCULAR_REFERENCE, and notify on every actual change.
func (wb *Workbook) runRecomputation(seed []ref.CellKey) {
	if len(seed) == 0 {
		return
	}
	const kinds = graph.Static | graph.Evaluated

	ancestors := wb.depGraph.AncestorsOfSet(seed, kinds)
	affected := map[ref.CellKey]bool{}
	for _, k := range seed {
		affected[k] = true
	}
	for _, k := range ancestors {
		affected[k] = true
	}

	before := map[ref.CellKey]value.Value{}
	for k := range affected {
		if c := wb.cellAt(k); c != nil {
			before[k] = c.Value
		} else {
			before[k] = value.Empty
		}
	}

	order := wb.depGraph.TopologicalOrder(kinds)
	for _, k := range order {
		if affected[k] {
			wb.recomputeValue(k)
		}
	}
	// A node with no recorded edge at all (an isolated seed, e.g. a
	// brand-new literal cell) never appears in the topological order.
	for k := range affected {
		if wb.depGraph.HasNode(k) {
			continue
		}
		wb.recomputeValue(k)
	}

	cyclic := wb.depGraph.CyclicNodes(kinds)
	for k := range cyclic {
		if c := wb.cellAt(k); c != nil {
			c.Value = value.FromError(value.NewError(value.CircularReference, ""))
		}
	}
	// Cells newly pulled into a cycle by this pass must wake their own
	// ancestors too, since their value just changed.
	var newlyCyclic []ref.CellKey
	for k := range cyclic {
		if !affected[k] {
			newlyCyclic = append(newlyCyclic, k)
		}
	}
	if len(newlyCyclic) > 0 {
		for _, k := range wb.depGraph.AncestorsOfSet(newlyCyclic, kinds) {
			if !affected[k] {
				affected[k] = true
				if c := wb.cellAt(k); c != nil {
					before[k] = c.Value
				}
				wb.recomputeValue(k)
			}
		}
		for k := range wb.depGraph.CyclicNodes(kinds) {
			if c := wb.cellAt(k); c != nil {
				c.Value = value.FromError(value.NewError(value.CircularReference, ""))
			}
		}
	}

	var changed []ref.CellKey
	for k := range affected {
		c := wb.cellAt(k)
		var after value.Value
		if c != nil {
			after = c.Value
		} else {
			after = value.Empty
		}
		if !after.Equal(before[k]) {
			changed = append(changed, k)
		}
	}
	sort.Slice(changed, func(i, j int) bool {
		a, b := changed[i], changed[j]
		if a.Sheet != b.Sheet {
			return a.Sheet < b.Sheet
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	for _, k := range changed {
		sheetName := wb.sheets[k.Sheet].Name
		loc := ref.Reference{Col: k.Col, Row: k.Row}.LocationString()
		wb.notify(sheetName, strings.ToLower(loc))
	}
	wb.log.Recompute(len(seed), len(changed))
}


