package securities

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/holdings-engine/internal/domain/identifier"
	"github.com/FACorreiaa/holdings-engine/pkg/money"
)

// FreeTextSource labels records recovered from unstructured text.
const FreeTextSource = "freetext"

// windowRadius is how many characters around an identifier are searched for
// field values.
const windowRadius = 100

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d[\d.,']*\d|\d`)
	percentPattern  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s?%`)
	currencyPattern = regexp.MustCompile(`\b[A-Z]{3}\b`)
	labelWords      = regexp.MustCompile(`(?i)\b(isin|code|security|id)\b|[:\-–]`)
)

// fieldKeywords drive proximity search inside the context window. Each group
// is compiled into one Aho-Corasick matcher so a window is scanned once per
// field regardless of how many keyword variants exist.
var (
	quantityKeywords = []string{"quantity", "qty", "nominal", "units", "shares", "amount"}
	priceKeywords    = []string{"price", "kurs", "cours", "quote"}
	valueKeywords    = []string{"value", "valuation", "market", "montant"}
	weightKeywords   = []string{"weight", "weighting", "allocation"}
)

// FreeTextExtractor recovers security records from unstructured text when
// table extraction yields nothing. Every field is independent best-effort;
// a missing field is not an error.
type FreeTextExtractor struct {
	logger   *slog.Logger
	quantity *keywordMatcher
	price    *keywordMatcher
	value    *keywordMatcher
	weight   *keywordMatcher
}

// keywordMatcher pairs an Aho-Corasick matcher with its pattern list, since
// matches come back as pattern indices.
type keywordMatcher struct {
	matcher  *ahocorasick.Matcher
	patterns []string
}

func newKeywordMatcher(patterns []string) *keywordMatcher {
	return &keywordMatcher{
		matcher:  ahocorasick.NewStringMatcher(patterns),
		patterns: patterns,
	}
}

// firstOffset returns the earliest position of any matched keyword in the
// lowercased text, or -1 when none hit.
func (k *keywordMatcher) firstOffset(lower string) int {
	hits := k.matcher.Match([]byte(lower))
	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(k.patterns) {
			continue
		}
		if pos := strings.Index(lower, k.patterns[idx]); pos >= 0 {
			if best == -1 || pos < best {
				best = pos
			}
		}
	}
	return best
}

// NewFreeTextExtractor builds the keyword matchers once; the extractor is
// safe for concurrent use afterwards.
func NewFreeTextExtractor(logger *slog.Logger) *FreeTextExtractor {
	return &FreeTextExtractor{
		logger:   logger,
		quantity: newKeywordMatcher(quantityKeywords),
		price:    newKeywordMatcher(priceKeywords),
		value:    newKeywordMatcher(valueKeywords),
		weight:   newKeywordMatcher(weightKeywords),
	}
}

// Extract scans text for checksum-valid identifiers and recovers whatever
// fields the surrounding context offers. One record per distinct identifier
// occurrence; duplicates merge downstream.
func (e *FreeTextExtractor) Extract(text string) []RawSecurityRecord {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// Identifiers appear uppercase in statements, so the text is scanned
	// as-is; uppercasing a copy would shift byte offsets for non-ASCII text.
	var records []RawSecurityRecord
	for _, loc := range identifier.Pattern.FindAllStringIndex(text, -1) {
		code := text[loc[0]:loc[1]]
		if !identifier.Validate(code) {
			continue
		}

		start := loc[0] - windowRadius
		if start < 0 {
			start = 0
		}
		end := loc[1] + windowRadius
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]
		idOffset := loc[0] - start

		rec := RawSecurityRecord{
			Identifier: strPtr(code),
			Source:     Provenance{Strategy: FreeTextSource, Row: -1},
		}
		if name := nameBefore(window, idOffset); name != "" {
			rec.Name = strPtr(name)
		}
		// The identifier's own digit run must never bind as a field value,
		// so its span is blanked out before the numeric searches.
		lower := strings.ToLower(maskSpan(window, idOffset, idOffset+len(code)))
		rec.Quantity = numberNear(lower, e.quantity)
		rec.Price = numberNear(lower, e.price)
		rec.Value = numberNear(lower, e.value)
		rec.WeightPercent = percentNear(lower, e.weight)
		if code := currencyIn(window); code != "" {
			rec.Currency = strPtr(code)
		}

		records = append(records, rec)
	}

	if len(records) > 0 {
		e.logger.Debug("free-text fallback recovered records", slog.Int("count", len(records)))
	}
	return records
}

// maskSpan replaces window[from:to] with spaces, preserving byte offsets.
func maskSpan(window string, from, to int) string {
	if from < 0 || to > len(window) || from >= to {
		return window
	}
	return window[:from] + strings.Repeat(" ", to-from) + window[to:]
}

// nameBefore takes the text preceding the identifier on the same line and
// strips label words; what survives is the best available security name.
func nameBefore(window string, idOffset int) string {
	before := window[:idOffset]
	if nl := strings.LastIndexByte(before, '\n'); nl >= 0 {
		before = before[nl+1:]
	}
	before = labelWords.ReplaceAllString(before, " ")
	return strings.Join(strings.Fields(before), " ")
}

// numberNear finds the first parseable number after the earliest keyword
// hit, falling back to the closest one before it.
func numberNear(lower string, kw *keywordMatcher) *float64 {
	offset := kw.firstOffset(lower)
	if offset < 0 {
		return nil
	}
	if m := numberPattern.FindString(lower[offset:]); m != "" {
		if v, _, err := money.ParseAmount(m); err == nil {
			return floatPtr(v)
		}
	}
	if matches := numberPattern.FindAllString(lower[:offset], -1); len(matches) > 0 {
		if v, _, err := money.ParseAmount(matches[len(matches)-1]); err == nil {
			return floatPtr(v)
		}
	}
	return nil
}

// percentSpan bounds how far past a weight keyword the percent search looks,
// so an unrelated percent elsewhere in the window (a coupon rate) cannot
// bind.
const percentSpan = 40

// percentNear finds a decimal-percent pattern just after a weight keyword.
func percentNear(lower string, kw *keywordMatcher) *float64 {
	offset := kw.firstOffset(lower)
	if offset < 0 {
		return nil
	}
	end := offset + percentSpan
	if end > len(lower) {
		end = len(lower)
	}
	if m := percentPattern.FindStringSubmatch(lower[offset:end]); m != nil {
		if v, _, err := money.ParseAmount(m[1]); err == nil {
			return floatPtr(v)
		}
	}
	return nil
}

// currencyIn returns the first token in the window that is a real ISO-4217
// code. The identifier's own country prefix cannot match: ISIN prefixes are
// two letters, currency codes three.
func currencyIn(window string) string {
	for _, candidate := range currencyPattern.FindAllString(window, -1) {
		if money.IsCurrencyCode(candidate) {
			return candidate
		}
	}
	return ""
}
