package value

import "github.com/shopspring/decimal"

// ToNumber implements §4.2's to_number coercion: empty→0, number→
// itself, string parses as decimal or TYPE_ERROR, boolean→1/0, error
// propagates unchanged.
func ToNumber(v Value) (decimal.Decimal, *Error) {
	switch v.Tag {
	case TagEmpty:
		return decimal.Zero, nil
	case TagNumber:
		return v.Num, nil
	case TagString:
		d, ok := ParseNumberLiteral(v.Str)
		if !ok {
			e := NewError(TypeError, "cannot coerce string to number: "+v.Str)
			return decimal.Zero, &e
		}
		return d, nil
	case TagBoolean:
		if v.Bool {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case TagError:
		e := v.Err
		return decimal.Zero, &e
	}
	e := NewError(TypeError, "unreachable tag")
	return decimal.Zero, &e
}

// ToBool implements §4.2's to_bool coercion.
func ToBool(v Value) (bool, *Error) {
	switch v.Tag {
	case TagEmpty:
		return false, nil
	case TagNumber:
		return !v.Num.IsZero(), nil
	case TagString:
		switch upper(v.Str) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
		e := NewError(TypeError, "cannot coerce string to boolean: "+v.Str)
		return false, &e
	case TagBoolean:
		return v.Bool, nil
	case TagError:
		e := v.Err
		return false, &e
	}
	e := NewError(TypeError, "unreachable tag")
	return false, &e
}

// ToStringValue implements §4.2's to_string coercion. Errors never
// fail this coercion: they render as their literal token.
func ToStringValue(v Value) string {
	return v.ToDisplayString()
}
