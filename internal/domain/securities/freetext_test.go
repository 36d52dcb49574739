package securities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeTextExtractsAroundIdentifier(t *testing.T) {
	text := "Apple Inc ISIN: US0378331005 quantity 100 price 176.35 value 17,635.00 USD\n"

	records := NewFreeTextExtractor(discardLogger()).Extract(text)
	require.Len(t, records, 1)

	rec := records[0]
	require.NotNil(t, rec.Identifier)
	assert.Equal(t, "US0378331005", *rec.Identifier)
	require.NotNil(t, rec.Name)
	assert.Equal(t, "Apple Inc", *rec.Name)
	require.NotNil(t, rec.Quantity)
	assert.InDelta(t, 100, *rec.Quantity, 0.001)
	require.NotNil(t, rec.Price)
	assert.InDelta(t, 176.35, *rec.Price, 0.001)
	require.NotNil(t, rec.Value)
	assert.InDelta(t, 17635.00, *rec.Value, 0.001)
	require.NotNil(t, rec.Currency)
	assert.Equal(t, "USD", *rec.Currency)
	assert.Equal(t, FreeTextSource, rec.Source.Strategy)
}

func TestFreeTextSkipsChecksumFailures(t *testing.T) {
	// Same prefix as a real ISIN but with a corrupted check digit.
	records := NewFreeTextExtractor(discardLogger()).Extract("Position US0378331009 value 100")
	assert.Empty(t, records)
}

func TestFreeTextMultipleIdentifiers(t *testing.T) {
	text := "Holding DE0007164600 nominal 50 EUR\n" +
		"Holding FR0000120271 nominal 25 EUR\n"

	records := NewFreeTextExtractor(discardLogger()).Extract(text)
	require.Len(t, records, 2)
	assert.Equal(t, "DE0007164600", *records[0].Identifier)
	assert.Equal(t, "FR0000120271", *records[1].Identifier)
	require.NotNil(t, records[0].Quantity)
	assert.InDelta(t, 50, *records[0].Quantity, 0.001)
}

func TestFreeTextWeightPercent(t *testing.T) {
	records := NewFreeTextExtractor(discardLogger()).Extract("CH0012032048 allocation 12.5% of portfolio")
	require.Len(t, records, 1)
	require.NotNil(t, records[0].WeightPercent)
	assert.InDelta(t, 12.5, *records[0].WeightPercent, 0.001)
}

func TestFreeTextIgnoresIdentifierDigits(t *testing.T) {
	// A field keyword right before the identifier must not read the
	// identifier's own digit run as the field value.
	records := NewFreeTextExtractor(discardLogger()).Extract("Amount invested in CH0038863350")
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "CH0038863350", *rec.Identifier)
	assert.Nil(t, rec.Quantity)
	assert.Nil(t, rec.Price)
	assert.Nil(t, rec.Value)

	// With a real number present the keyword still binds it.
	records = NewFreeTextExtractor(discardLogger()).Extract("Amount 120 invested in CH0038863350")
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Quantity)
	assert.InDelta(t, 120, *records[0].Quantity, 0.001)
}

func TestFreeTextWeightNotTakenFromCoupon(t *testing.T) {
	text := "XS0104440986 coupon 3.25% allocation 12.5%"
	records := NewFreeTextExtractor(discardLogger()).Extract(text)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].WeightPercent)
	assert.InDelta(t, 12.5, *records[0].WeightPercent, 0.001)

	// An unanchored percent never binds as weight.
	records = NewFreeTextExtractor(discardLogger()).Extract("XS0104440986 coupon 3.25% only")
	require.Len(t, records, 1)
	assert.Nil(t, records[0].WeightPercent)
}

func TestFreeTextEmptyInput(t *testing.T) {
	e := NewFreeTextExtractor(discardLogger())
	assert.Empty(t, e.Extract(""))
	assert.Empty(t, e.Extract("   \n  "))
	assert.Empty(t, e.Extract("No identifiers anywhere in this prose."))
}

func TestNameBeforeStripsLabels(t *testing.T) {
	tests := []struct {
		window string
		offset int
		want   string
	}{
		{"Apple Inc ISIN: ", 16, "Apple Inc"},
		{"prose on a previous line\nSAP SE - ", 34, "SAP SE"},
		{"", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nameBefore(tt.window, tt.offset))
	}
}
