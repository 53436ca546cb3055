package eval

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetcore/engine/internal/formula"
	"github.com/sheetcore/engine/internal/ref"
	"github.com/sheetcore/engine/internal/value"
)

// fakeHost is a minimal in-memory Host for evaluator tests, grounded
// on the spec's data model rather than a real workbook.
type fakeHost struct {
	sheets map[string]bool
	cells  map[ref.CellKey]value.Value
	linked []struct{ from, to ref.CellKey }
}

func newFakeHost() *fakeHost {
	return &fakeHost{sheets: map[string]bool{}, cells: map[ref.CellKey]value.Value{}}
}

func (h *fakeHost) CellValue(key ref.CellKey) (value.Value, bool) {
	if !h.sheets[key.Sheet] {
		return value.Value{}, false
	}
	v, ok := h.cells[key]
	if !ok {
		return value.Empty, true
	}
	return v, true
}

func (h *fakeHost) SheetExists(name string) bool {
	return h.sheets[toLower(name)]
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func (h *fakeHost) LinkEvaluated(from, to ref.CellKey) {
	h.linked = append(h.linked, struct{ from, to ref.CellKey }{from, to})
}

func (h *fakeHost) Version() string { return "test-1" }

func evalFormula(t *testing.T, host *fakeHost, sheet string, cell ref.CellKey, src string) value.Value {
	t.Helper()
	tree, err := formula.ParseFormula(src)
	require.NoError(t, err)
	e := New(host, sheet, cell)
	return e.EvalTopLevel(tree)
}

func TestEvalArithmeticS1(t *testing.T) {
	h := newFakeHost()
	h.sheets["s"] = true
	h.cells[ref.NewCellKey("s", 1, 1)] = value.Number(decimal.NewFromInt(1))
	h.cells[ref.NewCellKey("s", 1, 2)] = value.Number(decimal.NewFromInt(1))

	v := evalFormula(t, h, "s", ref.NewCellKey("s", 1, 3), "A1+A2")
	assert.True(t, v.Tag == value.TagNumber)
	assert.Equal(t, "2", v.Num.String())
}

func TestEvalDivideByZeroS4(t *testing.T) {
	h := newFakeHost()
	h.sheets["s"] = true
	v := evalFormula(t, h, "s", ref.NewCellKey("s", 2, 2), "100/0")
	require.True(t, v.IsError())
	assert.Equal(t, value.DivideByZero, v.Err.Kind)
}

func TestEvalBadReferenceForMissingSheet(t *testing.T) {
	h := newFakeHost()
	h.sheets["s"] = true
	v := evalFormula(t, h, "s", ref.NewCellKey("s", 1, 1), "Missing!A1")
	require.True(t, v.IsError())
	assert.Equal(t, value.BadReference, v.Err.Kind)
}

func TestFuncIfLazyDoesNotEvaluateUntakenBranch(t *testing.T) {
	h := newFakeHost()
	h.sheets["s"] = true
	v := evalFormula(t, h, "s", ref.NewCellKey("s", 1, 1), `IF(TRUE, 1, Missing!A1)`)
	assert.Equal(t, value.TagNumber, v.Tag)
	assert.Equal(t, "1", v.Num.String())
}

func TestFuncSumAndAverage(t *testing.T) {
	h := newFakeHost()
	h.sheets["s"] = true
	h.cells[ref.NewCellKey("s", 1, 1)] = value.Number(decimal.NewFromInt(1))
	h.cells[ref.NewCellKey("s", 1, 2)] = value.Number(decimal.NewFromInt(2))
	h.cells[ref.NewCellKey("s", 1, 3)] = value.Number(decimal.NewFromInt(3))

	v := evalFormula(t, h, "s", ref.NewCellKey("s", 2, 1), "SUM(A1:A3)")
	assert.Equal(t, "6", v.Num.String())

	v = evalFormula(t, h, "s", ref.NewCellKey("s", 2, 1), "AVERAGE(A1:A3)")
	assert.Equal(t, "2", v.Num.String())
}

func TestFuncAverageOfBlanksIsDivideByZero(t *testing.T) {
	h := newFakeHost()
	h.sheets["s"] = true
	v := evalFormula(t, h, "s", ref.NewCellKey("s", 2, 1), "AVERAGE(A1:A3)")
	require.True(t, v.IsError())
	assert.Equal(t, value.DivideByZero, v.Err.Kind)
}

func TestFuncIsBlankIndirectMissingSheetIsBadReference(t *testing.T) {
	h := newFakeHost()
	h.sheets["s"] = true
	v := evalFormula(t, h, "s", ref.NewCellKey("s", 1, 1), `ISBLANK(INDIRECT("Missing!A1"))`)
	require.True(t, v.IsError())
	assert.Equal(t, value.BadReference, v.Err.Kind)
}


