package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Run("accepts known valid codes", func(t *testing.T) {
		valid := []string{
			"US0378331005", // Apple Inc
			"US5949181045", // Microsoft
			"DE0007164600", // SAP
			"FR0000120271", // TotalEnergies
			"GB0002374006", // Diageo
			"CH0012032048", // Roche
			"NL0000235190", // Airbus
			"XS0104440986", // Eurobond
		}
		for _, code := range valid {
			assert.True(t, Validate(code), code)
		}
	})

	t.Run("rejects wrong check digit", func(t *testing.T) {
		assert.False(t, Validate("US0378331009"))
		assert.False(t, Validate("US0378331000"))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		cases := []string{
			"",
			"US037833100",     // too short
			"US03783310055",   // too long
			"0S0378331005",    // digit in prefix
			"ZZ0378331006",    // unknown country
			"US03783310ab",    // lowercase handled, but 'b' is not a digit in check position
			"US03783-1005",    // illegal character
			"not an isin at all",
		}
		for _, code := range cases {
			assert.False(t, Validate(code), code)
		}
	})

	t.Run("accepts lowercase and padded input", func(t *testing.T) {
		assert.True(t, Validate(" us0378331005 "))
	})

	t.Run("check digit position always detects a change", func(t *testing.T) {
		code := "US0378331005"
		for d := byte('0'); d <= '9'; d++ {
			mutated := code[:11] + string(d)
			if mutated == code {
				continue
			}
			assert.False(t, Validate(mutated), mutated)
		}
	})
}

func TestCheckDigit(t *testing.T) {
	assert.Equal(t, 5, CheckDigit("US037833100"))
	assert.Equal(t, 0, CheckDigit("DE000716460"))
	assert.Equal(t, -1, CheckDigit("US!37833100"))
}

func TestFindAll(t *testing.T) {
	t.Run("finds identifiers in free text", func(t *testing.T) {
		text := "Holdings: APPLE INC ISIN: US0378331005 value 17,635 USD and SAP SE (DE0007164600)."
		got := FindAll(text)
		assert.Equal(t, []string{"US0378331005", "DE0007164600"}, got)
	})

	t.Run("drops shaped but invalid codes", func(t *testing.T) {
		got := FindAll("bogus US0378331009 here")
		assert.Empty(t, got)
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, FindAll(""))
	})
}
