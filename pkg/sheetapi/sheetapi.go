// Package sheetapi is the thin public facade spec §1 calls "the
// public workbook API surface beyond what the core consumes" --
// deliberately out of the core's scope, but still needed by anything
// that wants to drive the engine (cmd/sheetctl, tests, embedders)
// without reaching past internal/engine's package boundary. It
// exposes exactly the operations spec §6 lists, plus a chainable
// Script builder for scripting a batch of edits tersely.
package sheetapi

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/sheetcore/engine/internal/engine"
	"github.com/sheetcore/engine/internal/persist"
	"github.com/sheetcore/engine/internal/telemetry"
	"github.com/sheetcore/engine/internal/value"
)

// Spreadsheet wraps a single engine.Workbook, forwarding spec §6's
// public operations. It adds no behavior of its own -- every method
// is a direct pass-through -- its only job is to be the stable,
// exported type external callers hold instead of importing
// internal/engine directly.
type Spreadsheet struct {
	wb  *engine.Workbook
	log telemetry.Logger
}

// New returns an empty spreadsheet that discards its edit log.
func New() *Spreadsheet {
	return NewWithLogger(telemetry.Discard())
}

// NewWithLogger returns an empty spreadsheet logging every edit
// through log.
func NewWithLogger(log telemetry.Logger) *Spreadsheet {
	return &Spreadsheet{wb: engine.NewWorkbookWithLogger(log), log: log}
}

// Workbook exposes the underlying engine.Workbook for callers in this
// module that need the full internal surface (e.g. tests); external
// callers should prefer the methods below.
func (s *Spreadsheet) Workbook() *engine.Workbook { return s.wb }

func (s *Spreadsheet) NewSheet(name string) (int, string, error) { return s.wb.NewSheet(name) }
func (s *Spreadsheet) DelSheet(name string) error                { return s.wb.DelSheet(name) }
func (s *Spreadsheet) ListSheets() []string                      { return s.wb.ListSheets() }

func (s *Spreadsheet) GetSheetExtent(name string) (cols, rows int, err error) {
	return s.wb.GetSheetExtent(name)
}

func (s *Spreadsheet) SetCellContents(sheet, loc, text string) error {
	return s.wb.SetCellContents(sheet, loc, text)
}

func (s *Spreadsheet) GetCellContents(sheet, loc string) (string, error) {
	return s.wb.GetCellContents(sheet, loc)
}

func (s *Spreadsheet) GetCellValue(sheet, loc string) (value.Value, error) {
	return s.wb.GetCellValue(sheet, loc)
}

func (s *Spreadsheet) RenameSheet(oldName, newName string) error {
	return s.wb.RenameSheet(oldName, newName)
}

func (s *Spreadsheet) MoveSheet(name string, index int) error { return s.wb.MoveSheet(name, index) }

func (s *Spreadsheet) CopySheet(name string) (int, string, error) { return s.wb.CopySheet(name) }

func (s *Spreadsheet) MoveCells(sheet, start, end, to, toSheet string) error {
	return s.wb.MoveCells(sheet, start, end, to, toSheet)
}

func (s *Spreadsheet) CopyCells(sheet, start, end, to, toSheet string) error {
	return s.wb.CopyCells(sheet, start, end, to, toSheet)
}

func (s *Spreadsheet) SortRegion(sheet, start, end string, colIndexes []int) error {
	return s.wb.SortRegion(sheet, start, end, colIndexes)
}

func (s *Spreadsheet) NotifyCellsChanged(callback func(sheetName, location string)) uuid.UUID {
	return s.wb.Subscribe(callback)
}

func (s *Spreadsheet) StopNotifying(id uuid.UUID) { s.wb.Unsubscribe(id) }

// LoadWorkbook replaces s's contents with the document read from r,
// preserving s's logger.
func (s *Spreadsheet) LoadWorkbook(r io.Reader) error {
	wb, err := persist.LoadWithLogger(r, s.log)
	if err != nil {
		return err
	}
	s.wb = wb
	return nil
}

// SaveWorkbook writes s's current contents to w.
func (s *Spreadsheet) SaveWorkbook(w io.Writer) error {
	return persist.Save(s.wb, w)
}

// Script is a chainable edit-batch builder over a Spreadsheet,
// grounded on the teacher's RunnableSpreadsheet: the first error
// encountered short-circuits every subsequent call (each becomes a
// no-op), so a caller can chain a whole script and check the error
// once at the end instead of after every step.
type Script struct {
	sheet *Spreadsheet
	err   error
}

// NewScript starts a script against a fresh, empty spreadsheet.
func NewScript() *Script {
	return &Script{sheet: New()}
}

// NewScriptOn starts a script against an already-populated
// spreadsheet (e.g. one just loaded from disk).
func NewScriptOn(s *Spreadsheet) *Script {
	return &Script{sheet: s}
}

func (s *Script) NewSheet(name string) *Script {
	if s.err != nil {
		return s
	}
	_, _, s.err = s.sheet.NewSheet(name)
	return s
}

func (s *Script) DelSheet(name string) *Script {
	if s.err != nil {
		return s
	}
	s.err = s.sheet.DelSheet(name)
	return s
}

func (s *Script) Set(sheet, loc, text string) *Script {
	if s.err != nil {
		return s
	}
	s.err = s.sheet.SetCellContents(sheet, loc, text)
	return s
}

func (s *Script) RenameSheet(oldName, newName string) *Script {
	if s.err != nil {
		return s
	}
	s.err = s.sheet.RenameSheet(oldName, newName)
	return s
}

func (s *Script) MoveSheet(name string, index int) *Script {
	if s.err != nil {
		return s
	}
	s.err = s.sheet.MoveSheet(name, index)
	return s
}

func (s *Script) CopySheet(name string) *Script {
	if s.err != nil {
		return s
	}
	_, _, s.err = s.sheet.CopySheet(name)
	return s
}

func (s *Script) MoveCells(sheet, start, end, to, toSheet string) *Script {
	if s.err != nil {
		return s
	}
	s.err = s.sheet.MoveCells(sheet, start, end, to, toSheet)
	return s
}

func (s *Script) CopyCells(sheet, start, end, to, toSheet string) *Script {
	if s.err != nil {
		return s
	}
	s.err = s.sheet.CopyCells(sheet, start, end, to, toSheet)
	return s
}

func (s *Script) SortRegion(sheet, start, end string, colIndexes []int) *Script {
	if s.err != nil {
		return s
	}
	s.err = s.sheet.SortRegion(sheet, start, end, colIndexes)
	return s
}

// Load replaces the script's spreadsheet with the document read from
// r, short-circuiting the rest of the chain on failure like every
// other step.
func (s *Script) Load(r io.Reader) *Script {
	if s.err != nil {
		return s
	}
	s.err = s.sheet.LoadWorkbook(r)
	return s
}

// Error returns the first error encountered by the chain, if any.
func (s *Script) Error() error { return s.err }

// Run returns the resulting spreadsheet and the first error
// encountered, if any -- the conventional last call in a chain.
func (s *Script) Run() (*Spreadsheet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sheet, nil
}

// RunOrPanic is Run but panics on error; useful in tests and examples
// that want to fail fast rather than thread an error return through
// fixture setup.
func (s *Script) RunOrPanic() *Spreadsheet {
	sheet, err := s.Run()
	if err != nil {
		panic(fmt.Sprintf("sheetapi: script failed: %v", err))
	}
	return sheet
}

// Value reads a cell's value from the in-progress spreadsheet,
// ignoring (but not clearing) any prior error -- handy for asserting
// on intermediate state mid-chain in tests.
func (s *Script) Value(sheet, loc string) value.Value {
	v, _ := s.sheet.GetCellValue(sheet, loc)
	return v
}
