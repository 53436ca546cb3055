package sheetapi_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetcore/engine/pkg/sheetapi"
)

func TestScriptBasicArithmetic(t *testing.T) {
	s := sheetapi.NewScript().
		NewSheet("S").
		Set("S", "A1", "1").
		Set("S", "A2", "=1").
		Set("S", "A3", "=A1+A2").
		RunOrPanic()

	v, err := s.GetCellValue("S", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2", v.ToDisplayString())
}

func TestScriptShortCircuitsOnError(t *testing.T) {
	script := sheetapi.NewScript().
		NewSheet("S").
		Set("NoSuchSheet", "A1", "1").
		Set("S", "A2", "2")
	_, err := script.Run()
	assert.Error(t, err)
}

func TestScriptSaveLoadRoundTrip(t *testing.T) {
	s := sheetapi.NewScript().
		NewSheet("S").
		Set("S", "A1", "10").
		Set("S", "A2", "=A1*2").
		RunOrPanic()

	var buf bytes.Buffer
	require.NoError(t, s.SaveWorkbook(&buf))

	reloaded := sheetapi.New()
	require.NoError(t, reloaded.LoadWorkbook(&buf))
	v, err := reloaded.GetCellValue("S", "A2")
	require.NoError(t, err)
	assert.Equal(t, "20", v.ToDisplayString())
}

func TestNotifyCellsChanged(t *testing.T) {
	s := sheetapi.New()
	_, _, err := s.NewSheet("S")
	require.NoError(t, err)

	var changed []string
	id := s.NotifyCellsChanged(func(sheet, loc string) {
		changed = append(changed, sheet+"!"+loc)
	})
	require.NoError(t, s.SetCellContents("S", "A1", "1"))
	assert.Contains(t, changed, "S!a1")

	s.StopNotifying(id)
	changed = nil
	require.NoError(t, s.SetCellContents("S", "A1", "2"))
	assert.Empty(t, changed)
}

