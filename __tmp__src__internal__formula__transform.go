package formula

import (
	"strings"

	"github.com/sheetcore/engine/internal/ref"
)

// IsLazyFunction reports whether name (any case) names a lazy-argument
// built-in. Exported so internal/eval's registry can assert its Mode
// assignments stay in sync with what the static walker assumes.
func IsLazyFunction(name string) bool {
	return LazyFunctionNames[strings.ToUpper(name)]
}

// LazyFunctionNames holds the upper-cased names of functions whose
// arguments are not all unconditionally evaluated. CollectStaticRefs
// must not descend into their arguments -- a cell referenced only from
// an untaken branch must not gain a static dependency edge, since that
// would force recomputation (and could manufacture a cycle) through a
// branch that never runs. The evaluator records EVALUATED_REFERENCE
// edges at runtime instead, for whichever branch actually ran.
var LazyFunctionNames = map[string]bool{
	"IF":       true,
	"IFERROR":  true,
	"CHOOSE":   true,
	"INDIRECT": true,
	"VLOOKUP":  true,
	"HLOOKUP":  true,
}

// ResolvedRef is one statically-reachable reference discovered by
// CollectStaticRefs: the sheet name it resolves against (already
// defaulted to the owning sheet when the formula text gave none) and
// the cell reference itself. Malformed references (failed to parse,
// e.g. because a move substituted "#REF!") are reported with
// Malformed set and a zero Reference.
type ResolvedRef struct {
	SheetName string
	Reference ref.Reference
	Malformed bool
}

// CollectStaticRefs walks the tree and returns every cell reference
// reachable without evaluating a lazy function's unevaluated branch.
// It never descends into a lazy call's arguments at all (see
// LazyFunctionNames): those dependencies exist only at runtime, as
// EVALUATED_REFERENCE edges recorded by the evaluator. Range
// references expand to every cell in the rectangle, since an
// aggregate over the range must be recomputed when any member cell
// changes.
func CollectStaticRefs(n Node, owningSheet string) []ResolvedRef {
	var out []ResolvedRef
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *CellRefNode:
			out = append(out, resolveCellRef(v, owningSheet))
		case *RangeNode:
			out = append(out, resolveRange(v, owningSheet)...)
		case *BinaryOpNode:
			walk(v.Left)
			walk(v.Right)
		case *UnaryOpNode:
			walk(v.Operand)
		case *ParenNode:
			walk(v.Inner)
		case *FunctionCallNode:
			if LazyFunctionNames[strings.ToUpper(v.Name)] {
				return
			}
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(n)
	return out
}

func resolveCellRef(v *CellRefNode, owningSheet string) ResolvedRef {
	if v.Malformed {
		return ResolvedRef{Malformed: true}
	}
	sheet := v.Reference.SheetName
	if sheet == "" {
		sheet = owningSheet
	}
	return ResolvedRef{SheetName: sheet, Reference: v.Reference}
}

func resolveRange(v *RangeNode, owningSheet string) []ResolvedRef {
	if v.Start.Malformed || v.End.Malformed {
		return []ResolvedRef{{Malformed: true}}
	}
	sheet := v.Start.Reference.SheetName
	if sheet == "" {
		sheet = v.End.Reference.SheetName
	}
	if sheet == "" {
		sheet = owningSheet
	}
	rng, err := ref.NewRange(sheet, v.Start.Reference, v.End.Reference)
	if err != nil {
		return []ResolvedRef{{Malformed: true}}
	}
	cells := rng.Cells()
	out := make([]ResolvedRef, 0, len(cells))
	for _, c := range cells {
		out = append(out, ResolvedRef{SheetName: sheet, Reference: c})
	}
	return out
}

// RenameSheet rewrites every reference in n that names oldName
// (case-insensitively) to name newName instead, re-quoting per the
// usual quoting rule, and leaves every other reference untouched. It
// mutates n in place and returns it for convenience.
func RenameSheet(n Node, oldName, newName string) Node {
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *CellRefNode:
			renameCellRef(v, oldName, newName)
		case *RangeNode:
			renameCellRef(&v.Start, oldName, newName)
			renameCellRef(&v.End, oldName, newName)
		case *BinaryOpNode:
			walk(v.Left)
			walk(v.Right)
		case *UnaryOpNode:
			walk(v.Operand)
		case *ParenNode:
			walk(v.Inner)
		case *FunctionCallNode:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(n)
	return n
}

func renameCellRef(v *CellRefNode, oldName, newName string) {
	if v.Malformed || !v.SheetGiven {
		return
	}
	if strings.EqualFold(v.Reference.SheetName, oldName) {
		v.Reference.SheetName = newName
	}
}

// Move rewrites every reference in n by (dCol, dRow), leaving absolute
// axes untouched per Reference.Moved. A reference that moves out of
// range becomes malformed with literal text "#REF!" -- the rest of
// the formula is otherwise unaffected. It mutates n in place and
// returns it.
func Move(n Node, dCol, dRow int) Node {
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *CellRefNode:
			moveCellRef(v, dCol, dRow)
		case *RangeNode:
			moveCellRef(&v.Start, dCol, dRow)
			moveCellRef(&v.End, dCol, dRow)
		case *BinaryOpNode:
			walk(v.Left)
			walk(v.Right)
		case *UnaryOpNode:
			walk(v.Operand)
		case *ParenNode:
			walk(v.Inner)
		case *FunctionCallNode:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(n)
	return n
}

func moveCellRef(v *CellRefNode, dCol, dRow int) {
	if v.Malformed {
		return
	}
	moved := v.Reference.Moved(dCol, dRow)
	if !moved.CheckBounds() {
		v.Malformed = true
		v.RefText = "#REF!"
		return
	}
	v.Reference = moved
}


