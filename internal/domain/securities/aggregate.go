package securities

import (
	"github.com/shopspring/decimal"
)

// PortfolioAggregate is a derived, read-only view over a canonical security
// list. It is recomputed from scratch whenever the list changes and never
// persisted on its own.
type PortfolioAggregate struct {
	TotalValue                float64            `json:"total_value"`
	CurrencyBreakdown         map[string]float64 `json:"currency_breakdown"` // currency -> percent of total value
	IdentifierCoveragePercent float64            `json:"identifier_coverage_percent"`
	CompleteSecurityCount     int                `json:"complete_security_count"`
}

// Aggregate computes portfolio totals with decimal arithmetic so large
// statements do not accumulate float drift.
func Aggregate(securities []CanonicalSecurity) PortfolioAggregate {
	agg := PortfolioAggregate{CurrencyBreakdown: make(map[string]float64)}
	if len(securities) == 0 {
		return agg
	}

	total := decimal.Zero
	perCurrency := make(map[string]decimal.Decimal)
	validIdentifiers := 0

	for _, sec := range securities {
		if sec.IdentifierValid {
			validIdentifiers++
		}
		if sec.Completeness >= 1 {
			agg.CompleteSecurityCount++
		}
		if sec.Value == nil {
			continue
		}
		v := decimal.NewFromFloat(*sec.Value)
		total = total.Add(v)
		if sec.Currency != nil {
			perCurrency[*sec.Currency] = perCurrency[*sec.Currency].Add(v)
		}
	}

	agg.TotalValue = total.InexactFloat64()
	agg.IdentifierCoveragePercent = 100 * float64(validIdentifiers) / float64(len(securities))

	if !total.IsZero() {
		hundred := decimal.NewFromInt(100)
		for ccy, v := range perCurrency {
			agg.CurrencyBreakdown[ccy] = v.Mul(hundred).Div(total).Round(2).InexactFloat64()
		}
	}
	return agg
}
