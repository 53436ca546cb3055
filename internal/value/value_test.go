package value

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeStripsTrailingZerosAndDanglingPoint(t *testing.T) {
	d, err := decimal.NewFromString("1.2300")
	require.NoError(t, err)
	assert.Equal(t, "1.23", Canonicalize(d).String())

	d2, err := decimal.NewFromString("5.000")
	require.NoError(t, err)
	assert.Equal(t, "5", Canonicalize(d2).String())
}

func TestErrorPriorityOrdering(t *testing.T) {
	assert.Greater(t, ParseError.Priority(), CircularReference.Priority())
	assert.Greater(t, CircularReference.Priority(), BadReference.Priority())
	assert.Equal(t, BadReference.Priority(), BadName.Priority())
	assert.Equal(t, BadName.Priority(), TypeError.Priority())
	assert.Equal(t, TypeError.Priority(), DivideByZero.Priority())
}

func TestHighestPicksParseOverCircref(t *testing.T) {
	h := Highest(NewError(CircularReference, ""), NewError(ParseError, ""))
	assert.Equal(t, ParseError, h.Kind)
}

func TestCompareCrossTagOrder(t *testing.T) {
	n := Number(decimal.NewFromInt(1))
	s := String("x")
	b := Boolean(true)
	e := FromError(NewError(BadReference, ""))

	// An error operand propagates instead of taking part in the order.
	c, err := Compare(e, n)
	require.NotNil(t, err)
	assert.Equal(t, BadReference, err.Kind)

	c, err = Compare(n, s)
	require.Nil(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(s, b)
	require.Nil(t, err)
	assert.Equal(t, -1, c)
}

func TestCompareEmptyAgainstNonEmptyUsesZeroValue(t *testing.T) {
	c, err := Compare(Empty, Number(decimal.NewFromInt(0)))
	require.Nil(t, err)
	assert.Equal(t, 0, c)

	c, err = Compare(Empty, Number(decimal.NewFromInt(1)))
	require.Nil(t, err)
	assert.Equal(t, -1, c)
}

func TestCompareErrorsAlwaysPropagate(t *testing.T) {
	_, err := Compare(FromError(NewError(TypeError, "")), Number(decimal.NewFromInt(1)))
	require.NotNil(t, err)
}

func TestToNumberCoercions(t *testing.T) {
	d, err := ToNumber(Empty)
	require.Nil(t, err)
	assert.True(t, d.IsZero())

	d, err = ToNumber(Boolean(true))
	require.Nil(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(1)))

	_, err = ToNumber(String("not a number"))
	require.NotNil(t, err)
	assert.Equal(t, TypeError, err.Kind)
}
