// Package eval implements the tree-walking formula evaluator: operator
// semantics, coercion-driven arithmetic, and the built-in function
// registry with eager/lazy dispatch. It never imports internal/engine
// -- the Host interface, implemented by engine.Workbook, is the only
// channel through which evaluation touches workbook state, which keeps
// the natural evaluator<->workbook dependency from becoming an import
// cycle.
package eval

import (
	"github.com/sheetcore/engine/internal/ref"
	"github.com/sheetcore/engine/internal/value"
)

// Host is the workbook-shaped surface the evaluator needs: reading a
// cell's current value and recording a runtime-only dependency edge
// for every cell the evaluator reads. It never lets the evaluator mutate
// structure -- only read values and record edges.
type Host interface {
	// CellValue returns the current stored value of the cell at key,
	// or ok=false if the sheet does not exist.
	CellValue(key ref.CellKey) (value.Value, bool)

	// SheetExists reports whether a sheet is currently registered
	// (case-insensitive).
	SheetExists(sheetName string) bool

	// LinkEvaluated records a runtime-only (EVALUATED_REFERENCE) edge
	// from the cell currently being evaluated to target, for every cell
	// reference, range member and INDIRECT target actually read.
	LinkEvaluated(from, target ref.CellKey)

	// Version returns the engine version string VERSION() reports.
	Version() string
}


