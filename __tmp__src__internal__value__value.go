// Package value implements the spreadsheet's typed value lattice:
// empty, number, string, boolean, and error, plus the coercion and
// ordering rules shared by the evaluator and the built-in functions.
package value

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tag identifies which variant of Value is populated.
type Tag uint8

const (
	TagEmpty Tag = iota
	TagError
	TagNumber
	TagString
	TagBoolean
)

// Value is a tagged union over the five kinds of cell value. Only the
// field matching Tag is meaningful.
type Value struct {
	Tag  Tag
	Num  decimal.Decimal
	Str  string
	Bool bool
	Err  Error
}

// Empty is the value of a cell with no contents.
var Empty = Value{Tag: TagEmpty}

// Number constructs a canonicalized numeric value.
func Number(d decimal.Decimal) Value {
	return Value{Tag: TagNumber, Num: Canonicalize(d)}
}

// String constructs a string value.
func String(s string) Value {
	return Value{Tag: TagString, Str: s}
}

// Boolean constructs a boolean value.
func Boolean(b bool) Value {
	return Value{Tag: TagBoolean, Bool: b}
}

// FromError lifts an Error into the value lattice.
func FromError(e Error) Value {
	return Value{Tag: TagError, Err: e}
}

// IsEmpty reports whether v is the empty value.
func (v Value) IsEmpty() bool { return v.Tag == TagEmpty }

// IsError reports whether v carries an error.
func (v Value) IsError() bool { return v.Tag == TagError }

// Equal reports value equality within the same tag; across tags values
// are never equal except both-empty.
func (v Value) Equal(o Value) bool {
	if v.Tag != o.Tag {
		return false
	}
	switch v.Tag {
	case TagEmpty:
		return true
	case TagError:
		return v.Err.Kind == o.Err.Kind
	case TagNumber:
		return v.Num.Equal(o.Num)
	case TagString:
		return strings.EqualFold(v.Str, o.Str)
	case TagBoolean:
		return v.Bool == o.Bool
	}
	return false
}

// ToDisplayString renders v the way a cell's evaluated value would be
// shown to a user: canonical decimal text, TRUE/FALSE, the error's
// literal token, or the empty string.
func (v Value) ToDisplayString() string {
	switch v.Tag {
	case TagEmpty:
		return ""
	case TagError:
		return v.Err.Kind.Literal()
	case TagNumber:
		return v.Num.String()
	case TagString:
		return v.Str
	case TagBoolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}


