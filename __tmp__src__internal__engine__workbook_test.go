package engine_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetcore/engine/internal/engine"
	"github.com/sheetcore/engine/internal/value"
)

func newSheetWB(t *testing.T, name string) *engine.Workbook {
	t.Helper()
	wb := engine.NewWorkbook()
	_, _, err := wb.NewSheet(name)
	require.NoError(t, err)
	return wb
}

func cellValue(t *testing.T, wb *engine.Workbook, sheet, loc string) value.Value {
	t.Helper()
	v, err := wb.GetCellValue(sheet, loc)
	require.NoError(t, err)
	return v
}

// S1: basic arithmetic.
func TestScenarioBasicArithmetic(t *testing.T) {
	wb := newSheetWB(t, "S")
	require.NoError(t, wb.SetCellContents("S", "A1", "1"))
	require.NoError(t, wb.SetCellContents("S", "A2", "=1"))
	require.NoError(t, wb.SetCellContents("S", "A3", "=A1+A2"))

	assert.Equal(t, "2", cellValue(t, wb, "S", "A3").ToDisplayString())
}

// S2: circular references with a tail, and breaking the cycle.
func TestScenarioCircularReferenceWithTail(t *testing.T) {
	wb := newSheetWB(t, "S")
	require.NoError(t, wb.SetCellContents("S", "A1", "=A2"))
	require.NoError(t, wb.SetCellContents("S", "A2", "=A1+A4"))
	require.NoError(t, wb.SetCellContents("S", "A3", `="Hello " & A1 & "!"`))

	a1 := cellValue(t, wb, "S", "A1")
	a2 := cellValue(t, wb, "S", "A2")
	require.True(t, a1.IsError())
	require.True(t, a2.IsError())
	assert.Equal(t, value.CircularReference, a1.Err.Kind)
	assert.Equal(t, value.CircularReference, a2.Err.Kind)
	assert.Equal(t, "Hello #CIRCREF!!", cellValue(t, wb, "S", "A3").ToDisplayString())

	require.NoError(t, wb.SetCellContents("S", "A1", "0"))
	assert.Equal(t, "0", cellValue(t, wb, "S", "A2").ToDisplayString())
	a4 := cellValue(t, wb, "S", "A4")
	assert.True(t, a4.IsEmpty())
	assert.Equal(t, "Hello 0!", cellValue(t, wb, "S", "A3").ToDisplayString())
}

// S3: error priority -- a parse error propagates through dependents
// as a parse error, not demoted by anything downstream.
func TestScenarioErrorPriority(t *testing.T) {
	wb := newSheetWB(t, "S")
	require.NoError(t, wb.SetCellContents("S", "A1", "=#REF!+"))
	require.NoError(t, wb.SetCellContents("S", "B1", "=A1+1"))

	a1 := cellValue(t, wb, "S", "A1")
	b1 := cellValue(t, wb, "S", "B1")
	require.True(t, a1.IsError())
	require.True(t, b1.IsError())
	assert.Equal(t, value.ParseError, a1.Err.Kind)
	assert.Equal(t, value.ParseError, b1.Err.Kind)
}

// S4: division by zero.
func TestScenarioDivideByZero(t *testing.T) {
	wb := newSheetWB(t, "S")
	require.NoError(t, wb.SetCellContents("S", "A1", "100"))
	require.NoError(t, wb.SetCellContents("S", "B2", "=A1/0"))

	b2 := cellValue(t, wb, "S", "B2")
	require.True(t, b2.IsError())
	assert.Equal(t, value.DivideByZero, b2.Err.Kind)
}

// S5: sheet rename ripples formula text and value.
func TestScenarioSheetRename(t *testing.T) {
	wb := engine.NewWorkbook()
	_, _, err := wb.NewSheet("S1")
	require.NoError(t, err)
	_, _, err = wb.NewSheet("S2")
	require.NoError(t, err)

	require.NoError(t, wb.SetCellContents("S2", "A1", "=S1!A1+5"))
	require.NoError(t, wb.SetCellContents("S1", "A1", "10"))
	assert.Equal(t, "15", cellValue(t, wb, "S2", "A1").ToDisplayString())

	require.NoError(t, wb.RenameSheet("S1", "new name"))
	contents, err := wb.GetCellContents("S2", "A1")
	require.NoError(t, err)
	assert.Contains(t, contents, "'new name'!")
	assert.Equal(t, "15", cellValue(t, wb, "S2", "A1").ToDisplayString())
}

// S6: copying cells adjusts relative references, and copied literal
// formulas remain independent of later edits to the source.
func TestScenarioCopyCellsRelative(t *testing.T) {
	wb := newSheetWB(t, "S")
	require.NoError(t, wb.SetCellContents("S", "A1", "=10"))
	require.NoError(t, wb.SetCellContents("S", "A2", "=A1"))

	require.NoError(t, wb.CopyCells("S", "A1", "A2", "B1", ""))

	b1Contents, err := wb.GetCellContents("S", "B1")
	require.NoError(t, err)
	assert.Equal(t, "=10", b1Contents)

	b2Contents, err := wb.GetCellContents("S", "B2")
	require.NoError(t, err)
	assert.Equal(t, "=B1", b2Contents)

	require.NoError(t, wb.SetCellContents("S", "A1", "a string"))
	assert.Equal(t, "10", cellValue(t, wb, "S", "B2").ToDisplayString())
}

// S7: sort stability keeps equal-keyed rows in their original order.
// Column B holds the literal formula "=<original row number>" (not a
// cell reference), so its value after the sort identifies which
// original row each sorted row came from.
func TestScenarioSortStability(t *testing.T) {
	wb := newSheetWB(t, "S")
	colA := []string{"1", "2", "3", "4", "5", "5", "5", "5", "5", "10", "11", "12", "13", "14", "15"}
	for i, v := range colA {
		row := i + 1
		loc := "A" + strconv.Itoa(row)
		require.NoError(t, wb.SetCellContents("S", loc, v))
		require.NoError(t, wb.SetCellContents("S", "B"+strconv.Itoa(row), "="+strconv.Itoa(row)))
	}

	require.NoError(t, wb.SortRegion("S", "A1", "B15", []int{1}))

	for i, expectedOriginalRow := range []string{"5", "6", "7", "8", "9"} {
		row := 5 + i
		got := cellValue(t, wb, "S", "B"+strconv.Itoa(row))
		assert.Equal(t, expectedOriginalRow, got.ToDisplayString(), "row %d", row)
	}
}

// Notification completeness and topological correctness, property 2/3
// of spec §8: a chain of dependents notifies exactly once each, and
// never out of order.
func TestNotificationCompletenessAndOrder(t *testing.T) {
	wb := newSheetWB(t, "S")
	require.NoError(t, wb.SetCellContents("S", "A1", "1"))
	require.NoError(t, wb.SetCellContents("S", "A2", "=A1+1"))
	require.NoError(t, wb.SetCellContents("S", "A3", "=A2+1"))

	var notified []string
	wb.Subscribe(func(sheet, loc string) {
		notified = append(notified, sheet+"!"+loc)
	})

	require.NoError(t, wb.SetCellContents("S", "A1", "10"))

	assert.ElementsMatch(t, []string{"S!a1", "S!a2", "S!a3"}, notified)
	assert.Equal(t, "11", cellValue(t, wb, "S", "A2").ToDisplayString())
	assert.Equal(t, "12", cellValue(t, wb, "S", "A3").ToDisplayString())
}

// Cycle totality, property 4 of spec §8: every member of a cyclic SCC
// holds CIRCULAR_REFERENCE and nothing else, and breaking the cycle
// clears it from every former member.
func TestCycleTotality(t *testing.T) {
	wb := newSheetWB(t, "S")
	require.NoError(t, wb.SetCellContents("S", "A1", "=B1"))
	require.NoError(t, wb.SetCellContents("S", "B1", "=C1"))
	require.NoError(t, wb.SetCellContents("S", "C1", "=A1"))

	for _, loc := range []string{"A1", "B1", "C1"} {
		v := cellValue(t, wb, "S", loc)
		require.True(t, v.IsError(), loc)
		assert.Equal(t, value.CircularReference, v.Err.Kind, loc)
	}

	require.NoError(t, wb.SetCellContents("S", "A1", "1"))
	assert.Equal(t, "1", cellValue(t, wb, "S", "A1").ToDisplayString())
	assert.Equal(t, "1", cellValue(t, wb, "S", "B1").ToDisplayString())
	assert.Equal(t, "1", cellValue(t, wb, "S", "C1").ToDisplayString())
}

// Move idempotence on zero offset, property 7 of spec §8.
func TestMoveIdempotentOnZeroOffset(t *testing.T) {
	wb := newSheetWB(t, "S")
	require.NoError(t, wb.SetCellContents("S", "A1", "1"))
	require.NoError(t, wb.SetCellContents("S", "A2", "=A1+1"))

	before := cellValue(t, wb, "S", "A2")
	require.NoError(t, wb.MoveCells("S", "A1", "A2", "A1", ""))
	after := cellValue(t, wb, "S", "A2")
	assert.True(t, before.Equal(after))
}

// Dangling sheet reference survives sheet deletion and recreation.
func TestDanglingSheetReferenceSurvivesRecreate(t *testing.T) {
	wb := engine.NewWorkbook()
	_, _, err := wb.NewSheet("S1")
	require.NoError(t, err)
	_, _, err = wb.NewSheet("S2")
	require.NoError(t, err)
	require.NoError(t, wb.SetCellContents("S2", "A1", "=S1!A1+1"))
	require.NoError(t, wb.SetCellContents("S1", "A1", "5"))
	assert.Equal(t, "6", cellValue(t, wb, "S2", "A1").ToDisplayString())

	require.NoError(t, wb.DelSheet("S1"))
	v := cellValue(t, wb, "S2", "A1")
	require.True(t, v.IsError())
	assert.Equal(t, value.BadReference, v.Err.Kind)

	_, _, err = wb.NewSheet("S1")
	require.NoError(t, err)
	require.NoError(t, wb.SetCellContents("S1", "A1", "5"))
	assert.Equal(t, "6", cellValue(t, wb, "S2", "A1").ToDisplayString())
}


