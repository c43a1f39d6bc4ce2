package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount as R$ 1.234,56
func FormatBRL(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(intPart[i])
	}
	return sign + "R$ " + b.String() + "," + frac
}

// ParseBRL reads amounts written as "R$ 1.234,56", "-R$ 10,00" or "12,5".
// Empty or unreadable cells are zero.
func ParseBRL(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.NewReplacer("R$", "", " ", "", "\u00a0", "", ".", "").Replace(s)
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
