// Package strategy contains the built-in table-extraction strategies run by
// the orchestrator. Each is independent, treats the document as read-only,
// and reports its own accuracy hint for quality ranking.
package strategy

import (
	"context"
	"encoding/csv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/holdings-engine/internal/domain/document"
	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction"
)

// Accuracy hints per strategy. Native cell sources rank above parsed text,
// parsed text above inferred layout.
const (
	delimitedAccuracy   = 70.0
	delimitedKnownBoost = 15.0
)

// holdingRow is the gocsv probe shape: when a delimited page binds to these
// well-known holdings headers, the table almost certainly is one, and the
// candidate's accuracy hint is boosted accordingly.
type holdingRow struct {
	ISIN        string `csv:"isin"`
	SecurityID  string `csv:"security id"`
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Quantity    string `csv:"quantity"`
	Nominal     string `csv:"nominal"`
	Price       string `csv:"price"`
	Value       string `csv:"value"`
	MarketValue string `csv:"market value"`
	Currency    string `csv:"currency"`
	Weight      string `csv:"weight"`
}

// Delimited extracts tables from pages that are delimiter-separated exports
// (CSV/TSV statements, or PDFs whose text layer preserved separators).
type Delimited struct{}

// NewDelimited creates the delimited-text strategy.
func NewDelimited() *Delimited { return &Delimited{} }

func (s *Delimited) Name() string { return "delimited" }

// ExtractCandidates parses each page independently; a page without a
// detectable delimiter contributes nothing.
func (s *Delimited) ExtractCandidates(ctx context.Context, doc *document.Document) ([]extraction.CandidateTable, error) {
	var tables []extraction.CandidateTable
	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return tables, err
		}
		delim, count := detectDelimiter(page.Text)
		if count < 2 {
			continue
		}

		reader := csv.NewReader(strings.NewReader(page.Text))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.TrimLeadingSpace = true
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil || len(rows) < 2 {
			continue
		}

		hint := delimitedAccuracy
		if bindsKnownHeaders(page.Text, delim) {
			hint += delimitedKnownBoost
		}
		tables = append(tables, extraction.NewCandidateTable(s.Name(), page.Number, rows, hint))
	}
	return tables, nil
}

// bindsKnownHeaders probes the page with the gocsv holdings shape. The
// header line is lowercased first since struct tags match literally.
func bindsKnownHeaders(text string, delim rune) bool {
	lines := strings.SplitN(text, "\n", 2)
	if len(lines) < 2 {
		return false
	}
	normalized := strings.ToLower(lines[0]) + "\n" + lines[1]

	reader := csv.NewReader(strings.NewReader(normalized))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []*holdingRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return false
	}
	for _, r := range rows {
		if r.ISIN != "" || r.SecurityID != "" || r.Name != "" || r.Description != "" {
			return true
		}
	}
	return false
}

// detectDelimiter picks the separator that splits the first non-empty line
// most often. Candidates are checked in fixed order so ties are stable.
func detectDelimiter(text string) (rune, int) {
	line := ""
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}
	best, bestCount := rune(0), 0
	for _, d := range []rune{';', '\t', ',', '|'} {
		if c := strings.Count(line, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best, bestCount
}
