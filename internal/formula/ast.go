package formula

import "github.com/sheetcore/engine/internal/ref"

// Node is the common interface every AST node implements. Nodes are
// immutable after parsing except when rewritten in place by the
// sheet-rename and cell-move transforms (see RenameSheet and Move in
// transform.go).
type Node interface {
	node()
}

// NumberNode is a decimal literal, keeping the original source text
// so the printer can round-trip it without reformatting.
type NumberNode struct {
	Text string
}

// StringNode is a double-quoted string literal (already unescaped).
type StringNode struct {
	Value string
}

// BooleanNode is a TRUE/FALSE literal.
type BooleanNode struct {
	Value bool
}

// ErrorLiteralNode is a literal error token such as "#REF!" appearing
// directly in formula text.
type ErrorLiteralNode struct {
	Text string
}

// CellRefNode is a single-cell reference. SheetGiven records whether
// the formula text explicitly named a sheet (needed so the printer
// only emits a sheet qualifier when the source had one, except after
// a move substitutes the literal text "#REF!").
type CellRefNode struct {
	Reference  ref.Reference
	SheetGiven bool
	RefText    string // raw reference text when parsing failed to resolve to a well-formed Reference (e.g. post-move "#REF!")
	Malformed  bool
}

// RangeNode is a two-corner range reference "A1:B2".
type RangeNode struct {
	Start CellRefNode
	End   CellRefNode
}

// BinaryOpNode is any binary operator: comparison, concatenation,
// additive, or multiplicative.
type BinaryOpNode struct {
	Op    string
	Left  Node
	Right Node
}

// UnaryOpNode is a prefix +/- applied to an expression.
type UnaryOpNode struct {
	Op      string
	Operand Node
}

// ParenNode wraps a parenthesized subexpression, kept distinct so the
// printer can reproduce the original parenthesization.
type ParenNode struct {
	Inner Node
}

// FunctionCallNode is a call "NAME(arg, arg, ...)".
type FunctionCallNode struct {
	Name string
	Args []Node
}

func (NumberNode) node()       {}
func (StringNode) node()       {}
func (BooleanNode) node()      {}
func (ErrorLiteralNode) node() {}
func (*CellRefNode) node()     {}
func (*RangeNode) node()       {}
func (*BinaryOpNode) node()    {}
func (*UnaryOpNode) node()     {}
func (*ParenNode) node()       {}
func (*FunctionCallNode) node() {}
