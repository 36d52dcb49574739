// Package securities extracts security records from classified tables and
// free text, and reconciles all recovered records into one canonical
// security per identifier.
package securities

import (
	"fmt"
	"strings"
)

// Provenance records where a value was recovered from, for conflict
// diagnostics downstream.
type Provenance struct {
	Strategy string `json:"strategy"`
	Page     int    `json:"page"`
	Row      int    `json:"row_index"`
}

func (p Provenance) String() string {
	if p.Page <= 0 {
		return p.Strategy
	}
	return fmt.Sprintf("%s:p%d:r%d", p.Strategy, p.Page, p.Row)
}

// RawSecurityRecord is one imperfect observation of a security. Many raw
// records may describe the same real-world security; none is mutated after
// creation, merging produces new values.
type RawSecurityRecord struct {
	Identifier       *string    `json:"identifier,omitempty"`
	Name             *string    `json:"name,omitempty"`
	Quantity         *float64   `json:"quantity,omitempty"`
	Price            *float64   `json:"price,omitempty"`
	AcquisitionPrice *float64   `json:"acquisition_price,omitempty"`
	Value            *float64   `json:"value,omitempty"`
	Currency         *string    `json:"currency,omitempty"`
	WeightPercent    *float64   `json:"weight_percent,omitempty"`
	MaturityDate     *string    `json:"maturity_date,omitempty"`
	CouponPercent    *float64   `json:"coupon_percent,omitempty"`
	Source           Provenance `json:"source"`
}

// CanonicalSecurity is the single reconciled record for one security. The
// JSON field names are the stable wire contract consumed by report
// generators and indexers; do not rename them.
type CanonicalSecurity struct {
	Identifier       *string  `json:"identifier"`
	Name             *string  `json:"name"`
	Quantity         *float64 `json:"quantity"`
	Price            *float64 `json:"price"`
	AcquisitionPrice *float64 `json:"acquisition_price"`
	Value            *float64 `json:"value"`
	Currency         *string  `json:"currency"`
	WeightPercent    *float64 `json:"weight_percent"`
	MaturityDate     *string  `json:"maturity_date"`
	CouponPercent    *float64 `json:"coupon_percent"`

	IdentifierValid bool              `json:"identifier_valid"`
	Completeness    float64           `json:"completeness"`
	FieldProvenance map[string]string `json:"field_provenance,omitempty"`
}

// mandatoryFieldCount is the size of the mandatory set {identifier, name,
// quantity, value} that completeness is measured against.
const mandatoryFieldCount = 4

// computeCompleteness returns the fraction of mandatory fields present.
func (s *CanonicalSecurity) computeCompleteness() float64 {
	present := 0
	if s.Identifier != nil {
		present++
	}
	if s.Name != nil {
		present++
	}
	if s.Quantity != nil {
		present++
	}
	if s.Value != nil {
		present++
	}
	return float64(present) / mandatoryFieldCount
}

// normalizeName lowercases and collapses whitespace for name-keyed grouping.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
