package eval

import (
	"github.com/sheetcore/engine/internal/ref"
	"github.com/sheetcore/engine/internal/value"
)

// Result is what evaluating one AST node produces: either a scalar
// Value or a Range value (a list of member cells plus their keys, so
// aggregate/lookup functions can both read values and record runtime
// dependency edges to every cell they actually examined). Ranges never
// escape into cell storage; ToScalar reduces one down per §4.6.
type Result struct {
	IsRange bool
	Scalar  value.Value
	Members []value.Value
	Keys    []ref.CellKey
}

// ScalarResult wraps a plain value.Value as a non-range Result.
func ScalarResult(v value.Value) Result {
	return Result{Scalar: v}
}

// ToScalar reduces a Result to a plain Value: a range becomes the
// value of its first cell (empty range becomes the empty value).
func (r Result) ToScalar() value.Value {
	if !r.IsRange {
		return r.Scalar
	}
	if len(r.Members) == 0 {
		return value.Empty
	}
	return r.Members[0]
}
