package persist_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetcore/engine/internal/engine"
	"github.com/sheetcore/engine/internal/persist"
)

func TestLoadBasic(t *testing.T) {
	doc := `{"sheets": [{"name": "S1", "cell-contents": {"a1": "1", "a2": "=A1+1"}}]}`
	wb, err := persist.Load(strings.NewReader(doc))
	require.NoError(t, err)

	v, err := wb.GetCellValue("S1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2", v.ToDisplayString())
}

func TestLoadMissingSheetsKey(t *testing.T) {
	_, err := persist.Load(strings.NewReader(`{}`))
	require.Error(t, err)
	var lerr *persist.LoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, persist.MissingKey, lerr.Kind)
}

func TestLoadWrongSheetsType(t *testing.T) {
	_, err := persist.Load(strings.NewReader(`{"sheets": "not an array"}`))
	require.Error(t, err)
	var lerr *persist.LoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, persist.TypeMismatch, lerr.Kind)
}

func TestLoadWrongCellContentsType(t *testing.T) {
	doc := `{"sheets": [{"name": "S1", "cell-contents": {"a1": 5}}]}`
	_, err := persist.Load(strings.NewReader(doc))
	require.Error(t, err)
	var lerr *persist.LoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, persist.TypeMismatch, lerr.Kind)
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := persist.Load(strings.NewReader(`{not json`))
	require.Error(t, err)
	var lerr *persist.LoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, persist.Malformed, lerr.Kind)
}

func TestSaveRoundTrip(t *testing.T) {
	wb := engine.NewWorkbook()
	_, _, err := wb.NewSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, wb.SetCellContents("Sheet1", "A1", "1"))
	require.NoError(t, wb.SetCellContents("Sheet1", "A2", "=A1+1"))

	var buf bytes.Buffer
	require.NoError(t, persist.Save(wb, &buf))

	reloaded, err := persist.Load(&buf)
	require.NoError(t, err)

	orig, err := wb.GetCellValue("Sheet1", "A2")
	require.NoError(t, err)
	again, err := reloaded.GetCellValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.True(t, orig.Equal(again))
}

func TestSaveStoresContentsNotValue(t *testing.T) {
	wb := engine.NewWorkbook()
	_, _, err := wb.NewSheet("S")
	require.NoError(t, err)
	require.NoError(t, wb.SetCellContents("S", "A1", "=1+1"))

	var buf bytes.Buffer
	require.NoError(t, persist.Save(wb, &buf))
	assert.Contains(t, buf.String(), "=1+1")
	assert.NotContains(t, buf.String(), `"2"`)
}
