package eval

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sheetcore/engine/internal/value"
)

// Supplemental functions beyond the required set (see SPEC_FULL.md
// §4), grounded on the teacher's broader built-in library.
func init() {
	register(FuncDef{Name: "COUNT", Mode: Eager, Eager: funcCount})
	register(FuncDef{Name: "COUNTA", Mode: Eager, Eager: funcCountA})
	register(FuncDef{Name: "CONCATENATE", Mode: Eager, Eager: funcConcatenate})
	register(FuncDef{Name: "LEN", Mode: Eager, Eager: funcLen})
	register(FuncDef{Name: "UPPER", Mode: Eager, Eager: funcUpper})
	register(FuncDef{Name: "LOWER", Mode: Eager, Eager: funcLower})
	register(FuncDef{Name: "TRIM", Mode: Eager, Eager: funcTrim})
	register(FuncDef{Name: "ABS", Mode: Eager, Eager: funcAbs})
	register(FuncDef{Name: "ROUND", Mode: Eager, Eager: funcRound})
	register(FuncDef{Name: "FLOOR", Mode: Eager, Eager: funcFloor})
	register(FuncDef{Name: "CEILING", Mode: Eager, Eager: funcCeiling})
	register(FuncDef{Name: "SQRT", Mode: Eager, Eager: funcSqrt})
	register(FuncDef{Name: "POWER", Mode: Eager, Eager: funcPower})
	register(FuncDef{Name: "MOD", Mode: Eager, Eager: funcMod})
	register(FuncDef{Name: "PI", Mode: Eager, Eager: funcPi})
}

func allValues(args []Result) []value.Value {
	var out []value.Value
	for _, a := range args {
		if a.IsRange {
			out = append(out, a.Members...)
		} else {
			out = append(out, a.Scalar)
		}
	}
	return out
}

func funcCount(e *Evaluator, args []Result) Result {
	n := 0
	for _, v := range allValues(args) {
		if v.Tag == value.TagNumber {
			n++
		}
	}
	return ScalarResult(value.Number(decimal.NewFromInt(int64(n))))
}

func funcCountA(e *Evaluator, args []Result) Result {
	n := 0
	for _, v := range allValues(args) {
		if !v.IsEmpty() {
			n++
		}
	}
	return ScalarResult(value.Number(decimal.NewFromInt(int64(n))))
}

func funcConcatenate(e *Evaluator, args []Result) Result {
	vals := allValues(args)
	if err, ok := value.FirstErrorIn(vals...); ok {
		return ScalarResult(value.FromError(err))
	}
	var b strings.Builder
	for _, v := range vals {
		b.WriteString(value.ToStringValue(v))
	}
	return ScalarResult(value.String(b.String()))
}

func oneArgString(args []Result) (string, *value.Error) {
	if len(args) != 1 || args[0].IsRange {
		e := value.NewError(value.TypeError, "expected exactly one scalar argument")
		return "", &e
	}
	if err, ok := value.FirstErrorIn(args[0].Scalar); ok {
		return "", &err
	}
	return value.ToStringValue(args[0].Scalar), nil
}

func funcLen(e *Evaluator, args []Result) Result {
	s, err := oneArgString(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.Number(decimal.NewFromInt(int64(len([]rune(s))))))
}

func funcUpper(e *Evaluator, args []Result) Result {
	s, err := oneArgString(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.String(strings.ToUpper(s)))
}

func funcLower(e *Evaluator, args []Result) Result {
	s, err := oneArgString(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.String(strings.ToLower(s)))
}

func funcTrim(e *Evaluator, args []Result) Result {
	s, err := oneArgString(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.String(strings.TrimSpace(s)))
}

func oneArgNumber(args []Result) (decimal.Decimal, *value.Error) {
	if len(args) != 1 || args[0].IsRange {
		e := value.NewError(value.TypeError, "expected exactly one scalar argument")
		return decimal.Zero, &e
	}
	if err, ok := value.FirstErrorIn(args[0].Scalar); ok {
		return decimal.Zero, &err
	}
	return value.ToNumber(args[0].Scalar)
}

func funcAbs(e *Evaluator, args []Result) Result {
	n, err := oneArgNumber(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.Number(n.Abs()))
}

func funcSqrt(e *Evaluator, args []Result) Result {
	n, err := oneArgNumber(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	if n.IsNegative() {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "SQRT of a negative number")))
	}
	f, _ := n.Float64()
	return ScalarResult(value.Number(decimal.NewFromFloat(sqrt(f))))
}

func sqrt(f float64) float64 {
	if f == 0 {
		return 0
	}
	x := f
	for i := 0; i < 40; i++ {
		x = 0.5 * (x + f/x)
	}
	return x
}

func funcRound(e *Evaluator, args []Result) Result {
	if len(args) != 2 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "ROUND takes exactly two arguments")))
	}
	n, err := oneArgNumber(args[:1])
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	places, err := oneArgNumber(args[1:])
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.Number(n.Round(int32(places.IntPart()))))
}

func funcFloor(e *Evaluator, args []Result) Result {
	n, err := oneArgNumber(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.Number(n.Floor()))
}

func funcCeiling(e *Evaluator, args []Result) Result {
	n, err := oneArgNumber(args)
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.Number(n.Ceil()))
}

func funcPower(e *Evaluator, args []Result) Result {
	if len(args) != 2 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "POWER takes exactly two arguments")))
	}
	base, err := oneArgNumber(args[:1])
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	exp, err := oneArgNumber(args[1:])
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	return ScalarResult(value.Number(base.Pow(exp)))
}

func funcMod(e *Evaluator, args []Result) Result {
	if len(args) != 2 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "MOD takes exactly two arguments")))
	}
	a, err := oneArgNumber(args[:1])
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	b, err := oneArgNumber(args[1:])
	if err != nil {
		return ScalarResult(value.FromError(*err))
	}
	if b.IsZero() {
		return ScalarResult(value.FromError(value.NewError(value.DivideByZero, "MOD by zero")))
	}
	return ScalarResult(value.Number(a.Mod(b)))
}

func funcPi(e *Evaluator, args []Result) Result {
	if len(args) != 0 {
		return ScalarResult(value.FromError(value.NewError(value.TypeError, "PI takes no arguments")))
	}
	pi, _ := decimal.NewFromString("3.14159265358979323846264338327950288419716939937510582097494459")
	return ScalarResult(value.Number(pi))
}


