package value

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Canonicalize strips trailing fractional zeros, a dangling decimal
// point, and trims the mantissa of scientific notation, matching the
// canonical decimal text rule in the data model.
func Canonicalize(d decimal.Decimal) decimal.Decimal {
	s := d.String()
	exp := strings.IndexAny(s, "eE")
	mantissa, rest := s, ""
	if exp >= 0 {
		mantissa, rest = s[:exp], s[exp:]
	}
	if strings.Contains(mantissa, ".") {
		mantissa = strings.TrimRight(mantissa, "0")
		mantissa = strings.TrimSuffix(mantissa, ".")
	}
	canon, err := decimal.NewFromString(mantissa + rest)
	if err != nil {
		return d
	}
	return canon
}

// ParseNumberLiteral parses a decimal literal the way cell-content
// parsing does: failure or a non-finite result (shopspring/decimal has
// no Inf/NaN, so only parse failure applies here) means "not a
// number" to the caller.
func ParseNumberLiteral(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return Canonicalize(d), true
}
