package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a monetary cell as displayed by the export tool.
// It accepts Brazilian ("1.234,56") and US ("1,234.56") grouping, an optional
// "R$" prefix, a leading minus sign or accounting parentheses.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	s = strings.ReplaceAll(s, " ", "")

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount: %q", raw)
	}

	s = normalizeSeparators(s)

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// normalizeSeparators rewrites grouping and decimal marks into a plain
// dot-decimal number
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && !singleGroup(s, lastComma) {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastDot >= 0:
		if strings.Count(s, ".") == 1 && !singleGroup(s, lastDot) {
			return s
		}
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}

// singleGroup reports whether the only separator in s, at idx, groups
// thousands: exactly three digits follow it and the integer part is not zero.
// "1.500" and "1,500" are 1500, "0,500" and "12,50" are fractions.
func singleGroup(s string, idx int) bool {
	return len(s)-idx-1 == 3 && strings.TrimLeft(s[:idx], "0") != ""
}
