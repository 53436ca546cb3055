package eval

import (
	"github.com/shopspring/decimal"

	"github.com/sheetcore/engine/internal/formula"
	"github.com/sheetcore/engine/internal/ref"
	"github.com/sheetcore/engine/internal/value"
)

func init() {
	register(FuncDef{Name: "VERSION", Mode: Eager, Eager: funcVersion})
	register(FuncDef{Name: "AND", Mode: Eager, Eager: funcAnd})
	register(FuncDef{Name: "OR", Mode: Eager, Eager: funcOr})
	register(FuncDef{Name: "XOR", Mode: Eager, Eager: funcXor})
	register(FuncDef{Name: "NOT", Mode: Eager, Eager: funcNot})
	register(FuncDef{Name: "EXACT", Mode: Eager, Eager: funcExact})
	register(FuncDef{Name: "IF", Mode: Lazy, Lazy: funcIf})
	register(FuncDef{Name: "IFERROR", Mode: Lazy, Lazy: funcIfError})
	register(FuncDef{Name: "CHOOSE", Mode: Lazy, Lazy: funcChoose})
	register(FuncDef{Name: "ISBLANK", Mode: Eager, Eager: funcIsBlank})
	register(FuncDef{Name: "ISERROR", Mode: Eager, Eager: funcIsError})
	register(FuncDef{Name: "INDIRECT", Mode: Lazy, Lazy: funcIndirect})
	register(FuncDef{Name: "MIN", Mode: Eager, Eager: funcMin})
	register(FuncDef{Name: "MAX", Mode: Eager, Eager: funcMax})
	register(FuncDef{Name: "SUM", Mode: Eager, Eager: funcSum})
	register(FuncDef{Name: "AVERAGE", Mode: Eager, Eager: funcAverage})
	register(FuncDef{Name: "VLOOKUP", Mode: Lazy, Lazy: funcVLookup})
	register(FuncDef{Name: "HLOOKUP", Mode: Lazy, Lazy: funcHLookup})
}

func funcVersion(e *Evaluator, args []Result) Result {
	if len(args) != 0 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "VERSION takes no arguments")))
	}
	return ScalarResult(value.String(e.Host.Version()))
}

// collectBools coerces every argument to bool. Error arguments and
// coercion failures are all collected and the highest-priority one is
// returned (errors are never silently dropped, per the propagation
// rule); a range argument is rejected immediately.
func collectBools(args []Result) ([]bool, *value.Error) {
	if len(args) == 0 {
		e := value.NewError(value.TypeError, "expected at least one argument")
		return nil, &e
	}
	out := make([]bool, 0, len(args))
	var errs []value.Error
	for _, a := range args {
		if a.IsRange {
			e := value.NewError(value.TypeError, "boolean argument cannot be a range")
			return nil, &e
		}
		if err, ok := value.FirstErrorIn(a.Scalar); ok {
			errs = append(errs, err)
			continue
		}
		b, cerr := value.ToBool(a.Scalar)
		if cerr != nil {
			errs = append(errs, *cerr)
			continue
		}
		out = append(out, b)
	}
	if len(errs) > 0 {
		h := value.Highest(errs...)
		return nil, &h
	}
	return out, nil
}

func funcAnd(e *Evaluator, args []Result) Result {
	bools, err := collectBools(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	for _, b := range bools {
		if !b {
			return ScalarResult(value.Boolean(false))
		}
	}
	return ScalarResult(value.Boolean(true))
}

func funcOr(e *Evaluator, args []Result) Result {
	bools, err := collectBools(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	for _, b := range bools {
		if b {
			return ScalarResult(value.Boolean(true))
		}
	}
	return ScalarResult(value.Boolean(false))
}

func funcXor(e *Evaluator, args []Result) Result {
	bools, err := collectBools(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	count := 0
	for _, b := range bools {
		if b {
			count++
		}
	}
	return ScalarResult(value.Boolean(count%2 == 1))
}

func funcNot(e *Evaluator, args []Result) Result {
	if len(args) != 1 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "NOT takes exactly one argument")))
	}
	bools, err := collectBools(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.Boolean(!bools[0]))
}

func funcExact(e *Evaluator, args []Result) Result {
	if len(args) != 2 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "EXACT takes exactly two arguments")))
	}
	if err, ok := value.FirstErrorIn(args[0].Scalar, args[1].Scalar); ok {
		return ScalarResult(value.FromError(err))
	}
	a := value.ToStringValue(args[0].Scalar)
	b := value.ToStringValue(args[1].Scalar)
	return ScalarResult(value.Boolean(a == b))
}

func funcIf(e *Evaluator, args []formula.Node) Result {
	if len(args) < 2 || len(args) > 3 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "IF takes 2 or 3 arguments")))
	}
	cond := e.Eval(args[0])
	if cond.IsRange {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "IF condition cannot be a range")))
	}
	if err, ok := value.FirstErrorIn(cond.Scalar); ok {
		return ScalarResult(value.FromError(err))
	}
	b, cerr := value.ToBool(cond.Scalar)
	if cerr != nil {
		return ScalarResult(value.FromError(*cerr))
	}
	if b {
		return e.Eval(args[1])
	}
	if len(args) == 3 {
		return e.Eval(args[2])
	}
	return ScalarResult(value.Empty)
}

func funcIfError(e *Evaluator, args []formula.Node) Result {
	if len(args) < 1 || len(args) > 2 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "IFERROR takes 1 or 2 arguments")))
	}
	first := e.Eval(args[0])
	if !first.IsRange && first.Scalar.IsError() {
		if len(args) == 2 {
			return e.Eval(args[1])
		}
		return ScalarResult(value.String(""))
	}
	return first
}

func funcChoose(e *Evaluator, args []formula.Node) Result {
	if len(args) < 2 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "CHOOSE takes at least 2 arguments")))
	}
	idxResult := e.Eval(args[0])
	if idxResult.IsRange {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "CHOOSE index cannot be a range")))
	}
	if err, ok := value.FirstErrorIn(idxResult.Scalar); ok {
		return ScalarResult(value.FromError(err))
	}
	n, cerr := value.ToNumber(idxResult.Scalar)
	if cerr != nil {
		return ScalarResult(value.FromError(*cerr))
	}
	idx := int(n.IntPart())
	choices := args[1:]
	if idx < 1 || idx > len(choices) {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "CHOOSE index out of range")))
	}
	return e.Eval(choices[idx-1])
}

func funcIsBlank(e *Evaluator, args []Result) Result {
	if len(args) != 1 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "ISBLANK takes exactly one argument")))
	}
	a := args[0]
	if !a.IsRange && a.Scalar.IsError() {
		kind := a.Scalar.Err.Kind
		if kind == value.ParseError || kind == value.CircularReference || kind == value.BadReference {
			return ScalarResult(value.FromError(a.Scalar.Err))
		}
		return ScalarResult(value.Boolean(false))
	}
	return ScalarResult(value.Boolean(!a.IsRange && a.Scalar.IsEmpty()))
}

func funcIsError(e *Evaluator, args []Result) Result {
	if len(args) != 1 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "ISERROR takes exactly one argument")))
	}
	return ScalarResult(value.Boolean(!args[0].IsRange && args[0].Scalar.IsError()))
}

func funcIndirect(e *Evaluator, args []formula.Node) Result {
	if len(args) != 1 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "INDIRECT takes exactly one argument")))
	}
	target := e.Eval(args[0])
	if target.IsRange || target.Scalar.IsError() {
		if target.IsRange {
			return ScalarResult(value.FromError(value.NewError(value.BadReference, "INDIRECT argument cannot be a range")))
		}
		return ScalarResult(value.FromError(target.Scalar.Err))
	}
	text := value.ToStringValue(target.Scalar)
	r, perr := ref.ParseReference(text, ref.ParseOptions{AllowAbsolute: true})
	if perr != nil {
		return ScalarResult(value.FromError(value.NewError(value.BadReference, "INDIRECT: "+perr.Error())))
	}
	sheetName := r.SheetName
	if sheetName == "" {
		sheetName = e.OwningSheet
	}
	if !e.Host.SheetExists(sheetName) || !r.CheckBounds() {
		return ScalarResult(value.FromError(value.NewError(value.BadReference, "INDIRECT: no such cell")))
	}
	key := ref.NewCellKey(sheetName, r.Col, r.Row)
	e.Host.LinkEvaluated(e.OwningCell, key)
	val, ok := e.Host.CellValue(key)
	if !ok {
		return ScalarResult(value.FromError(value.NewError(value.BadReference, "INDIRECT: no such cell")))
	}
	return ScalarResult(val)
}

// flattenNumeric gathers numeric operands from scalars and ranges,
// skipping empty cells, for MIN/MAX/SUM/AVERAGE. The first error
// encountered anywhere is returned immediately, matching the
// propagation rule.
func flattenNumeric(args []Result) ([]decimal.Decimal, *value.Error) {
	var nums []decimal.Decimal
	for _, a := range args {
		vals := a.Members
		if !a.IsRange {
			vals = []value.Value{a.Scalar}
		}
		for _, v := range vals {
			if v.IsEmpty() {
				continue
			}
			if err, ok := value.FirstErrorIn(v); ok {
				return nil, &err
			}
			n, cerr := value.ToNumber(v)
			if cerr != nil {
				return nil, cerr
			}
			nums = append(nums, n)
		}
	}
	return nums, nil
}

func funcMin(e *Evaluator, args []Result) Result {
	nums, err := flattenNumeric(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	if len(nums) == 0 {
		return ScalarResult(value.Number(decimal.Zero))
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if n.LessThan(best) {
			best = n
		}
	}
	return ScalarResult(value.Number(best))
}

func funcMax(e *Evaluator, args []Result) Result {
	nums, err := flattenNumeric(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	if len(nums) == 0 {
		return ScalarResult(value.Number(decimal.Zero))
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if n.GreaterThan(best) {
			best = n
		}
	}
	return ScalarResult(value.Number(best))
}

func funcSum(e *Evaluator, args []Result) Result {
	nums, err := flattenNumeric(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	sum := decimal.Zero
	for _, n := range nums {
		sum = sum.Add(n)
	}
	return ScalarResult(value.Number(sum))
}

func funcAverage(e *Evaluator, args []Result) Result {
	nums, err := flattenNumeric(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	if len(nums) == 0 {
		return ScalarResult(value.FromError(value.NewError(value.DivideByZero, "AVERAGE of no values")))
	}
	sum := decimal.Zero
	for _, n := range nums {
		sum = sum.Add(n)
	}
	return ScalarResult(value.Number(sum.DivRound(decimal.NewFromInt(int64(len(nums))), 28)))
}

// lookupScan performs the shared VLOOKUP/HLOOKUP scan: a linear search for
// the first member whose key-column/row value equals key, returning
// the corresponding value from the index-th column/row. Every examined
// cell gets a runtime-only dependency edge, since a later change to
// any scanned cell (not just the match) could change the result.
func lookupScan(e *Evaluator, keyResult Result, table *formula.RangeNode, indexResult Result, rowWise bool) Result {
	if keyResult.IsRange {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "lookup key cannot be a range")))
	}
	if err, ok := value.FirstErrorIn(keyResult.Scalar); ok {
		return ScalarResult(value.FromError(err))
	}
	if indexResult.IsRange {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "lookup index cannot be a range")))
	}
	if err, ok := value.FirstErrorIn(indexResult.Scalar); ok {
		return ScalarResult(value.FromError(err))
	}
	idxNum, cerr := value.ToNumber(indexResult.Scalar)
	if cerr != nil {
		return ScalarResult(value.FromError(*cerr))
	}
	index := int(idxNum.IntPart())

	// e.Eval(table) below walks the range and records an
	// EVALUATED_REFERENCE edge to every cell in it, so any later
	// change to a scanned cell (not just the match) triggers
	// recomputation.
	rangeResult := e.Eval(table)
	if !rangeResult.IsRange {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "lookup table must be a range")))
	}

	startRef := table.Start.Reference
	endRef := table.End.Reference
	cols := endRef.Col - startRef.Col + 1
	rows := endRef.Row - startRef.Row + 1

	found := -1
	if rowWise {
		for col := 0; col < cols; col++ {
			v := rangeResult.Members[col]
			c, _ := value.Compare(v, keyResult.Scalar)
			if c == 0 {
				found = col
				break
			}
		}
		if found < 0 {
			return ScalarResult(value.FromError(value.NewError(value.TypeError, "lookup key not found")))
		}
		if index < 1 || index > rows {
			return ScalarResult(value.FromError(value.NewError(value.TypeError, "lookup index out of range")))
		}
		return ScalarResult(rangeResult.Members[(index-1)*cols+found])
	}

	for row := 0; row < rows; row++ {
		v := rangeResult.Members[row*cols]
		c, _ := value.Compare(v, keyResult.Scalar)
		if c == 0 {
			found = row
			break
		}
	}
	if found < 0 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "lookup key not found")))
	}
	if index < 1 || index > cols {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "lookup index out of range")))
	}
	return ScalarResult(rangeResult.Members[found*cols+(index-1)])
}

func funcVLookup(e *Evaluator, args []formula.Node) Result {
	if len(args) != 3 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "VLOOKUP takes exactly 3 arguments")))
	}
	rangeNode, ok := args[1].(*formula.RangeNode)
	if !ok {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "VLOOKUP second argument must be a range")))
	}
	return lookupScan(e, e.Eval(args[0]), rangeNode, e.Eval(args[2]), false)
}

func funcHLookup(e *Evaluator, args []formula.Node) Result {
	if len(args) != 3 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "HLOOKUP takes exactly 3 arguments")))
	}
	rangeNode, ok := args[1].(*formula.RangeNode)
	if !ok {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "HLOOKUP second argument must be a range")))
	}
	return lookupScan(e, e.Eval(args[0]), rangeNode, e.Eval(args[2]), true)
}
