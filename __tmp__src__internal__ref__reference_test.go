package ref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReferenceBasic(t *testing.T) {
	r, err := ParseReference("B12", ParseOptions{AllowAbsolute: true})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Col)
	assert.Equal(t, 12, r.Row)
	assert.False(t, r.AbsCol)
	assert.False(t, r.AbsRow)
}

func TestParseReferenceAbsoluteDisallowed(t *testing.T) {
	_, err := ParseReference("$A$1", ParseOptions{AllowAbsolute: false})
	assert.Error(t, err)
}

func TestParseReferenceQuotedSheet(t *testing.T) {
	r, err := ParseReference("'My Sheet'!A1", ParseOptions{AllowAbsolute: true})
	require.NoError(t, err)
	assert.Equal(t, "My Sheet", r.SheetName)
}

func TestBase26RoundTrip(t *testing.T) {
	cases := map[string]int{"A": 1, "Z": 26, "AA": 27, "AZ": 52, "ZZZZ": MaxColumn}
	for s, n := range cases {
		assert.Equal(t, n, fromBase26(toLowerStr(s)))
		assert.Equal(t, s, toBase26(n))
	}
}

func toLowerStr(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}

func TestMovedDoesNotBoundsCheck(t *testing.T) {
	r := Reference{Col: MaxColumn, Row: 1}
	moved := r.Moved(1, 0)
	assert.False(t, moved.CheckBounds())
}

func TestMovedSkipsAbsoluteAxes(t *testing.T) {
	r := Reference{Col: 5, Row: 5, AbsCol: true}
	moved := r.Moved(10, 10)
	assert.Equal(t, 5, moved.Col)
	assert.Equal(t, 15, moved.Row)
}

func TestNeedsQuotes(t *testing.T) {
	assert.False(t, NeedsQuotes("Sheet1"))
	assert.False(t, NeedsQuotes("_abc"))
	assert.True(t, NeedsQuotes("1Sheet"))
	assert.True(t, NeedsQuotes("my sheet"))
}

func TestRangeNormalizesCorners(t *testing.T) {
	a := Reference{Col: 5, Row: 1}
	b := Reference{Col: 1, Row: 5}
	rng, err := NewRange("S", a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, rng.Start.Col)
	assert.Equal(t, 1, rng.Start.Row)
	assert.Equal(t, 5, rng.End.Col)
	assert.Equal(t, 5, rng.End.Row)
}

func TestRangeMismatchedSheetsError(t *testing.T) {
	a := Reference{SheetName: "S1", Col: 1, Row: 1}
	b := Reference{SheetName: "S2", Col: 2, Row: 2}
	_, err := NewRange("S1", a, b)
	assert.Error(t, err)
}

func TestRangeCellsRowMajor(t *testing.T) {
	rng := Range{Start: Reference{Col: 1, Row: 1}, End: Reference{Col: 2, Row: 2}}
	cells := rng.Cells()
	require.Len(t, cells, 4)
	assert.Equal(t, Reference{Col: 1, Row: 1}, cells[0])
	assert.Equal(t, Reference{Col: 2, Row: 1}, cells[1])
	assert.Equal(t, Reference{Col: 1, Row: 2}, cells[2])
	assert.Equal(t, Reference{Col: 2, Row: 2}, cells[3])
}


