package value

import (
	"strings"

	"github.com/shopspring/decimal"
)

func tagRank(t Tag) int {
	switch t {
	case TagEmpty:
		return 0
	case TagError:
		return 1
	case TagNumber:
		return 2
	case TagString:
		return 3
	case TagBoolean:
		return 4
	}
	return -1
}

// Compare implements §4.2's comparison rule: errors always propagate
// before comparison; empty compared against a non-empty value of tag
// T is treated as T's zero value; otherwise same-tag values compare
// natively and cross-tag values compare by the fixed tag order
// empty < error < number < string < boolean.
//
// Returns -1, 0, or 1 per the usual comparator convention.
func Compare(a, b Value) (int, *Error) {
	if errs, ok := FirstErrorIn(a, b); ok {
		return 0, &errs
	}

	if a.Tag == TagEmpty && b.Tag != TagEmpty {
		a = zeroOf(b.Tag)
	} else if b.Tag == TagEmpty && a.Tag != TagEmpty {
		b = zeroOf(a.Tag)
	}

	if a.Tag != b.Tag {
		ra, rb := tagRank(a.Tag), tagRank(b.Tag)
		switch {
		case ra < rb:
			return -1, nil
		case ra > rb:
			return 1, nil
		default:
			return 0, nil
		}
	}

	switch a.Tag {
	case TagEmpty:
		return 0, nil
	case TagNumber:
		return a.Num.Cmp(b.Num), nil
	case TagString:
		return strings.Compare(strings.ToLower(a.Str), strings.ToLower(b.Str)), nil
	case TagBoolean:
		switch {
		case a.Bool == b.Bool:
			return 0, nil
		case !a.Bool && b.Bool:
			return -1, nil
		default:
			return 1, nil
		}
	case TagError:
		pa, pb := a.Err.Kind.Priority(), b.Err.Kind.Priority()
		switch {
		case pa < pb:
			return -1, nil
		case pa > pb:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, nil
}

func zeroOf(t Tag) Value {
	switch t {
	case TagNumber:
		return Number(decimal.Zero)
	case TagString:
		return String("")
	case TagBoolean:
		return Boolean(false)
	}
	return Empty
}
