// Package money provides amount parsing and ISO-4217 currency validation for
// values pulled out of statement tables and free text. Parsing is tolerant:
// thousands separators, currency symbols, percent signs and accounting
// parentheses are stripped before the number is read, and both US (1,234.56)
// and European (1.234,56) conventions are detected per value.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// symbolCurrencies maps common currency symbols to ISO codes for hint
// detection. Ambiguous symbols resolve to their most common code.
var symbolCurrencies = []struct {
	symbol string
	code   string
}{
	{"R$", "BRL"}, // before "$"
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"CHF", "CHF"},
	{"USD", "USD"},
	{"EUR", "EUR"},
	{"GBP", "GBP"},
	{"JPY", "JPY"},
}

// IsCurrencyCode reports whether s is a known ISO-4217 alphabetic code.
func IsCurrencyCode(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return false
	}
	return gomoney.GetCurrency(s) != nil
}

// ParseAmount parses a cell or snippet into a float, returning the detected
// currency hint (ISO code, possibly empty). It strips symbols, percent signs
// and separators; "(1.234,56)" parses as -1234.56.
func ParseAmount(s string) (float64, string, error) {
	d, hint, err := ParseDecimal(s)
	if err != nil {
		return 0, hint, err
	}
	return d.InexactFloat64(), hint, nil
}

// ParseDecimal is ParseAmount with full precision preserved.
func ParseDecimal(s string) (decimal.Decimal, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, "", fmt.Errorf("empty amount")
	}

	currency := ""
	for _, sc := range symbolCurrencies {
		if strings.Contains(s, sc.symbol) {
			currency = sc.code
			s = strings.ReplaceAll(s, sc.symbol, "")
			break
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimPrefix(s, "-")
	}
	s = strings.TrimSpace(s)
	// Space-based thousands grouping, including the no-break and thin
	// spaces statement generators emit.
	for _, sep := range []string{" ", "\u00a0", "\u2009", "\u202f"} {
		s = strings.ReplaceAll(s, sep, "")
	}
	s = strings.ReplaceAll(s, "'", "") // Swiss grouping: 1'234.56

	if european(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, currency, fmt.Errorf("invalid number %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, currency, nil
}

// IsNumeric reports whether s parses as an amount after cleaning.
func IsNumeric(s string) bool {
	_, _, err := ParseDecimal(s)
	return err == nil
}

// european decides the separator convention for a single cleaned value.
// When both separators are present the last one wins as the decimal mark;
// a lone comma followed by at most two digits reads as a decimal mark.
func european(s string) bool {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		return lastComma > lastDot
	case lastComma >= 0:
		return len(s)-lastComma-1 <= 2
	default:
		return false
	}
}
