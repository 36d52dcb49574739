package strategy

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/holdings-engine/internal/domain/document"
	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction"
)

const (
	spreadsheetAccuracy   = 85.0
	spreadsheetSheetBoost = 5.0
)

// preferredSheets marks sheet names that almost always hold the positions
// table in bank exports. Matching is substring, case-insensitive.
var preferredSheets = []string{"holding", "position", "portfolio", "securit", "valuation"}

// Spreadsheet extracts tables from native XLSX workbooks. Cells arrive
// already typed by the workbook, so this is the highest-confidence source.
type Spreadsheet struct{}

// NewSpreadsheet creates the XLSX strategy.
func NewSpreadsheet() *Spreadsheet { return &Spreadsheet{} }

func (s *Spreadsheet) Name() string { return "spreadsheet" }

// ExtractCandidates opens the raw workbook bytes and emits one candidate per
// non-empty sheet. Sheets map to pages by their workbook position.
func (s *Spreadsheet) ExtractCandidates(ctx context.Context, doc *document.Document) ([]extraction.CandidateTable, error) {
	if len(doc.Raw) == 0 || doc.Kind != document.KindSpreadsheet {
		return nil, nil
	}
	book, err := excelize.OpenReader(bytes.NewReader(doc.Raw))
	if err != nil {
		return nil, err
	}
	defer book.Close()

	var tables []extraction.CandidateTable
	for i, sheet := range book.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return tables, err
		}
		rows, err := book.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}
		hint := spreadsheetAccuracy
		if isPreferredSheet(sheet) {
			hint += spreadsheetSheetBoost
		}
		tables = append(tables, extraction.NewCandidateTable(s.Name(), i+1, rows, hint))
	}
	return tables, nil
}

func isPreferredSheet(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range preferredSheets {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
