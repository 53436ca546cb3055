package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleArithmetic(t *testing.T) {
	n, err := ParseFormula("A1+A2")
	require.NoError(t, err)
	bin, ok := n.(*BinaryOpNode)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestParsePrecedence(t *testing.T) {
	n, err := ParseFormula("1+2*3")
	require.NoError(t, err)
	bin := n.(*BinaryOpNode)
	assert.Equal(t, "+", bin.Op)
	rhs := bin.Right.(*BinaryOpNode)
	assert.Equal(t, "*", rhs.Op)
}

func TestParseFunctionCall(t *testing.T) {
	n, err := ParseFormula(`SUM(A1:A3, 5)`)
	require.NoError(t, err)
	fn, ok := n.(*FunctionCallNode)
	require.True(t, ok)
	assert.Equal(t, "SUM", fn.Name)
	require.Len(t, fn.Args, 2)
	_, isRange := fn.Args[0].(*RangeNode)
	assert.True(t, isRange)
}

func TestParseSheetQualifiedRef(t *testing.T) {
	n, err := ParseFormula("Sheet2!A1")
	require.NoError(t, err)
	ref, ok := n.(*CellRefNode)
	require.True(t, ok)
	assert.Equal(t, "Sheet2", ref.Reference.SheetName)
}

func TestParseAbsoluteColumnRef(t *testing.T) {
	n, err := ParseFormula("$A$1+1")
	require.NoError(t, err)
	bin, ok := n.(*BinaryOpNode)
	require.True(t, ok)
	cell, ok := bin.Left.(*CellRefNode)
	require.True(t, ok)
	assert.Equal(t, 1, cell.Reference.Col)
	assert.Equal(t, 1, cell.Reference.Row)
	assert.True(t, cell.Reference.AbsCol)
	assert.True(t, cell.Reference.AbsRow)
}

func TestParseAbsoluteColumnOnlyRef(t *testing.T) {
	n, err := ParseFormula("$B2")
	require.NoError(t, err)
	cell, ok := n.(*CellRefNode)
	require.True(t, ok)
	assert.Equal(t, 2, cell.Reference.Col)
	assert.Equal(t, 2, cell.Reference.Row)
	assert.True(t, cell.Reference.AbsCol)
	assert.False(t, cell.Reference.AbsRow)
}

func TestParseQuotedSheetRef(t *testing.T) {
	n, err := ParseFormula("'My Sheet'!A1")
	require.NoError(t, err)
	ref, ok := n.(*CellRefNode)
	require.True(t, ok)
	assert.Equal(t, "My Sheet", ref.Reference.SheetName)
}

func TestParseStringLiteralWithEscapedQuote(t *testing.T) {
	n, err := ParseFormula(`"say ""hi"""`)
	require.NoError(t, err)
	s := n.(StringNode)
	assert.Equal(t, `say "hi"`, s.Value)
}

func TestParseTrailingGarbageFails(t *testing.T) {
	_, err := ParseFormula("1 + )")
	assert.Error(t, err)
}

func TestPrintRoundTripsConcat(t *testing.T) {
	n, err := ParseFormula(`"Hello " & A1 & "!"`)
	require.NoError(t, err)
	assert.Equal(t, `"Hello " & A1 & "!"`, Print(n))
}

func TestRenameSheetRewritesQualifiedRefsOnly(t *testing.T) {
	n, err := ParseFormula("S1!A1+A2")
	require.NoError(t, err)
	RenameSheet(n, "S1", "new name")
	assert.Equal(t, "'new name'!A1 + A2", Print(n))
}

func TestMoveProducesRefErrorOutOfRange(t *testing.T) {
	n, err := ParseFormula("A1")
	require.NoError(t, err)
	Move(n, -1, 0)
	assert.Equal(t, "#REF!", Print(n))
}

func TestMoveZeroOffsetIsIdempotent(t *testing.T) {
	n, err := ParseFormula("A1+B2")
	require.NoError(t, err)
	before := Print(n)
	Move(n, 0, 0)
	assert.Equal(t, before, Print(n))
}

func TestCollectStaticRefsExpandsRange(t *testing.T) {
	n, err := ParseFormula("SUM(A1:A3)")
	require.NoError(t, err)
	refs := CollectStaticRefs(n, "Sheet1")
	assert.Len(t, refs, 3)
}
