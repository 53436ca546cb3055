package eval

import (
	"strings"

	"github.com/sheetcore/engine/internal/formula"
	"github.com/sheetcore/engine/internal/ref"
	"github.com/sheetcore/engine/internal/value"
)

// Evaluator walks one formula tree carrying the (workbook, owning
// sheet, owning cell) triple the data model's evaluator description
// calls for.
type Evaluator struct {
	Host        Host
	OwningSheet string
	OwningCell  ref.CellKey
}

// New returns an evaluator bound to the given host and owning cell.
func New(host Host, owningSheet string, owningCell ref.CellKey) *Evaluator {
	return &Evaluator{Host: host, OwningSheet: owningSheet, OwningCell: owningCell}
}

// EvalTopLevel evaluates the root of a formula tree and reduces it to
// a scalar cell value.
func (e *Evaluator) EvalTopLevel(n formula.Node) value.Value {
	return e.Eval(n).ToScalar()
}

// Eval evaluates a node to a Result, which may be a range.
func (e *Evaluator) Eval(n formula.Node) Result {
	switch v := n.(type) {
	case formula.NumberNode:
		d, ok := value.ParseNumberLiteral(v.Text)
		if !ok {
			return ScalarResult(value.FromError(value.NewError(value.ParseError, "bad number literal")))
		}
		return ScalarResult(value.Number(d))
	case formula.StringNode:
		return ScalarResult(value.String(v.Value))
	case formula.BooleanNode:
		return ScalarResult(value.Boolean(v.Value))
	case formula.ErrorLiteralNode:
		kind, ok := value.ParseErrorKind(v.Text)
		if !ok {
			kind = value.ParseError
		}
		return ScalarResult(value.FromError(value.NewError(kind, "")))
	case *formula.ParenNode:
		return e.Eval(v.Inner)
	case *formula.UnaryOpNode:
		return ScalarResult(e.evalUnary(v))
	case *formula.BinaryOpNode:
		return ScalarResult(e.evalBinary(v))
	case *formula.CellRefNode:
		return e.evalCellRef(v)
	case *formula.RangeNode:
		return e.evalRange(v)
	case *formula.FunctionCallNode:
		return e.evalCall(v)
	}
	return ScalarResult(value.FromError(value.NewError(value.ParseError, "unknown node")))
}

func (e *Evaluator) evalUnary(v *formula.UnaryOpNode) value.Value {
	operand := e.Eval(v.Operand)
	if operand.IsRange {
		return value.FromError(value.NewError(value.TypeError, "unary operator applied to range"))
	}
	if err, ok := value.FirstErrorIn(operand.Scalar); ok {
		return value.FromError(err)
	}
	n, cerr := value.ToNumber(operand.Scalar)
	if cerr != nil {
		return value.FromError(*cerr)
	}
	if v.Op == "-" {
		return value.Number(n.Neg())
	}
	return value.Number(n)
}

func (e *Evaluator) evalBinary(v *formula.BinaryOpNode) value.Value {
	left := e.Eval(v.Left)
	right := e.Eval(v.Right)
	if left.IsRange || right.IsRange {
		return value.FromError(value.NewError(value.TypeError, "operator applied to range"))
	}

	switch v.Op {
	case "=", "==", "<>", "!=", "<", ">", "<=", ">=":
		return evalComparison(v.Op, left.Scalar, right.Scalar)
	case "&":
		return evalConcat(left.Scalar, right.Scalar)
	case "+", "-", "*", "/":
		return evalArithmetic(v.Op, left.Scalar, right.Scalar)
	}
	return value.FromError(value.NewError(value.ParseError, "unknown operator "+v.Op))
}

func evalComparison(op string, a, b value.Value) value.Value {
	c, err := value.Compare(a, b)
	if err != nil {
		return value.FromError(*err)
	}
	var result bool
	switch op {
	case "=", "==":
		result = c == 0
	case "<>", "!=":
		result = c != 0
	case "<":
		result = c < 0
	case ">":
		result = c > 0
	case "<=":
		result = c <= 0
	case ">=":
		result = c >= 0
	}
	return value.Boolean(result)
}

func evalConcat(a, b value.Value) value.Value {
	if err, ok := value.FirstErrorIn(a, b); ok {
		return value.FromError(err)
	}
	return value.String(value.ToStringValue(a) + value.ToStringValue(b))
}

func evalArithmetic(op string, a, b value.Value) value.Value {
	if err, ok := value.FirstErrorIn(a, b); ok {
		return value.FromError(err)
	}
	na, errA := value.ToNumber(a)
	if errA != nil {
		return value.FromError(*errA)
	}
	nb, errB := value.ToNumber(b)
	if errB != nil {
		return value.FromError(*errB)
	}
	switch op {
	case "+":
		return value.Number(na.Add(nb))
	case "-":
		return value.Number(na.Sub(nb))
	case "*":
		return value.Number(na.Mul(nb))
	case "/":
		if nb.IsZero() {
			return value.FromError(value.NewError(value.DivideByZero, "division by zero"))
		}
		return value.Number(na.DivRound(nb, 28))
	}
	return value.FromError(value.NewError(value.ParseError, "unknown operator "+op))
}

func (e *Evaluator) resolveKey(r formula.CellRefNode) (ref.CellKey, value.Value, bool) {
	if r.Malformed {
		return ref.CellKey{}, value.FromError(value.NewError(value.BadReference, "malformed reference")), false
	}
	sheetName := r.Reference.SheetName
	if sheetName == "" {
		sheetName = e.OwningSheet
	}
	if !e.Host.SheetExists(sheetName) {
		return ref.CellKey{}, value.FromError(value.NewError(value.BadReference, "no such sheet: "+sheetName)), false
	}
	if !r.Reference.CheckBounds() {
		return ref.CellKey{}, value.FromError(value.NewError(value.BadReference, "reference out of range")), false
	}
	return ref.NewCellKey(sheetName, r.Reference.Col, r.Reference.Row), value.Empty, true
}

func (e *Evaluator) evalCellRef(v *formula.CellRefNode) Result {
	key, errVal, ok := e.resolveKey(*v)
	if !ok {
		return ScalarResult(errVal)
	}
	val, found := e.Host.CellValue(key)
	if !found {
		return ScalarResult(value.FromError(value.NewError(value.BadReference, "no such sheet")))
	}
	e.Host.LinkEvaluated(e.OwningCell, key)
	return ScalarResult(val)
}

func (e *Evaluator) evalRange(v *formula.RangeNode) Result {
	if v.Start.Malformed || v.End.Malformed {
		return ScalarResult(value.FromError(value.NewError(value.BadReference, "malformed range")))
	}
	sheetName := v.Start.Reference.SheetName
	if sheetName == "" {
		sheetName = v.End.Reference.SheetName
	}
	if sheetName == "" {
		sheetName = e.OwningSheet
	}
	if !e.Host.SheetExists(sheetName) {
		return ScalarResult(value.FromError(value.NewError(value.BadReference, "no such sheet: "+sheetName)))
	}
	rng, err := ref.NewRange(sheetName, v.Start.Reference, v.End.Reference)
	if err != nil || !rng.CheckBounds() {
		return ScalarResult(value.FromError(value.NewError(value.BadReference, "invalid range")))
	}

	cells := rng.Cells()
	members := make([]value.Value, 0, len(cells))
	keys := make([]ref.CellKey, 0, len(cells))
	for _, c := range cells {
		key := ref.NewCellKey(sheetName, c.Col, c.Row)
		val, _ := e.Host.CellValue(key)
		e.Host.LinkEvaluated(e.OwningCell, key)
		members = append(members, val)
		keys = append(keys, key)
	}
	return Result{IsRange: true, Members: members, Keys: keys}
}

func (e *Evaluator) evalCall(v *formula.FunctionCallNode) Result {
	fn, ok := Lookup(v.Name)
	if !ok {
		return ScalarResult(value.FromError(value.NewError(value.BadName, "unknown function "+strings.ToUpper(v.Name))))
	}
	if fn.Mode == Eager {
		args := make([]Result, len(v.Args))
		for i, a := range v.Args {
			args[i] = e.Eval(a)
		}
		return fn.Eager(e, args)
	}
	return fn.Lazy(e, v.Args)
}
