package securities

import (
	"log/slog"
	"strings"
	"time"

	"github.com/FACorreiaa/holdings-engine/internal/domain/classification"
	"github.com/FACorreiaa/holdings-engine/pkg/money"
)

// RowExtractor converts the security rows of a classified table into raw
// records, running every cell through a role-specific cleaner.
type RowExtractor struct {
	logger *slog.Logger
}

// NewRowExtractor creates a row extractor.
func NewRowExtractor(logger *slog.Logger) *RowExtractor {
	return &RowExtractor{logger: logger}
}

// Extract emits one record per security row. A record must carry an
// identifier or a non-empty name; pure noise rows are dropped. Records are
// tagged with provenance for later conflict resolution.
func (e *RowExtractor) Extract(ct classification.ClassifiedTable) []RawSecurityRecord {
	records := make([]RawSecurityRecord, 0, len(ct.SecurityRows))
	for _, row := range ct.SecurityRows {
		rec := RawSecurityRecord{
			Source: Provenance{Strategy: ct.Source, Page: ct.Page, Row: row},
		}
		currencyHint := ""

		// Ascending column order keeps the outcome deterministic when two
		// columns share a role.
		for col := 0; col < ct.Cols(); col++ {
			role, ok := ct.ColumnRoles[col]
			if !ok {
				continue
			}
			cell := ct.Cell(row, col)
			if cell == "" {
				continue
			}
			// First column wins for every role, same as setAmount.
			switch role {
			case classification.RoleIdentifier:
				if rec.Identifier == nil {
					rec.Identifier = strPtr(strings.ToUpper(cell))
				}
			case classification.RoleName:
				if rec.Name == nil {
					rec.Name = strPtr(cleanName(cell))
				}
			case classification.RoleQuantity:
				setAmount(&rec.Quantity, cell, &currencyHint)
			case classification.RolePrice:
				setAmount(&rec.Price, cell, &currencyHint)
			case classification.RoleAcquisitionPrice:
				setAmount(&rec.AcquisitionPrice, cell, &currencyHint)
			case classification.RoleValue:
				setAmount(&rec.Value, cell, &currencyHint)
			case classification.RoleWeight:
				setAmount(&rec.WeightPercent, cell, &currencyHint)
			case classification.RoleCoupon:
				setAmount(&rec.CouponPercent, cell, &currencyHint)
			case classification.RoleCurrency:
				if rec.Currency == nil && money.IsCurrencyCode(cell) {
					rec.Currency = strPtr(strings.ToUpper(cell))
				}
			case classification.RoleDate:
				if rec.MaturityDate == nil {
					if iso, ok := cleanDate(cell); ok {
						rec.MaturityDate = strPtr(iso)
					}
				}
			}
		}

		// A currency symbol inside an amount cell is better than nothing.
		if rec.Currency == nil && currencyHint != "" {
			rec.Currency = strPtr(currencyHint)
		}

		if rec.Identifier == nil && (rec.Name == nil || *rec.Name == "") {
			e.logger.Debug("dropping noise row",
				slog.String("strategy", ct.Source),
				slog.Int("page", ct.Page),
				slog.Int("row", row),
			)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// setAmount parses a numeric cell, keeping the first parsed value and the
// first currency hint seen.
func setAmount(dst **float64, cell string, currencyHint *string) {
	v, hint, err := money.ParseAmount(cell)
	if err != nil {
		return
	}
	if *dst == nil {
		*dst = floatPtr(v)
	}
	if *currencyHint == "" && hint != "" {
		*currencyHint = hint
	}
}

// cleanName collapses runs of whitespace left behind by layout extraction.
func cleanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dateFormats is the small set of delimiter conventions the date cleaner
// recognizes.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02.01.2006",
	"02-01-2006",
	"2006/01/02",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// cleanDate normalizes a date cell to ISO-8601, reporting failure instead
// of guessing.
func cleanDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
