package classification

import (
	"sort"
	"strings"

	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction"
	"github.com/FACorreiaa/holdings-engine/internal/domain/identifier"
	"github.com/FACorreiaa/holdings-engine/pkg/money"
)

// footerKeywords mark summary rows at the bottom of holdings tables.
// A cell starting with any of these turns its row into a footer.
var footerKeywords = []string{
	"total", "subtotal", "sub-total", "grand total", "sum", "totale",
	"totaal", "gesamt", "somme", "net asset", "portfolio value",
}

// ClassifiedTable is a ranked table annotated with column roles and row
// classification, ready for record extraction. Discarded once consumed.
type ClassifiedTable struct {
	extraction.RankedTable
	ColumnRoles  map[int]Role
	HeaderRows   map[int]bool
	FooterRows   map[int]bool
	SecurityRows []int // ascending row indices
}

// IdentifierColumn returns the identifier column index, or -1.
func (t ClassifiedTable) IdentifierColumn() int {
	for col, role := range t.ColumnRoles {
		if role == RoleIdentifier {
			return col
		}
	}
	return -1
}

// Classify annotates a ranked table: header and footer rows first, column
// roles from the detected header labels plus data samples, then security
// rows. Rows whose identifier-column cell passes checksum validation count
// as security rows even when they fail the generic density test.
func (c *Classifier) Classify(t extraction.RankedTable) ClassifiedTable {
	ct := ClassifiedTable{
		RankedTable: t,
		ColumnRoles: make(map[int]Role),
		HeaderRows:  make(map[int]bool),
		FooterRows:  make(map[int]bool),
	}
	rows := t.Rows()
	if rows == 0 {
		return ct
	}

	c.detectHeaders(&ct)
	c.detectFooters(&ct)

	lastHeader := -1
	for r := range ct.HeaderRows {
		if r > lastHeader {
			lastHeader = r
		}
	}
	firstFooter := rows
	for r := range ct.FooterRows {
		if r < firstFooter {
			firstFooter = r
		}
	}

	// Column roles: header label from the last header row, samples from
	// the body between header and footer.
	var bodyRows []int
	for r := lastHeader + 1; r < firstFooter; r++ {
		bodyRows = append(bodyRows, r)
	}
	for col := 0; col < t.Cols(); col++ {
		header := ""
		if lastHeader >= 0 {
			header = t.Cell(lastHeader, col)
		}
		role := c.ClassifyColumn(header, t.Column(col, bodyRows))
		if role != RoleText {
			ct.ColumnRoles[col] = role
		}
	}

	idCol := ct.IdentifierColumn()
	for _, r := range bodyRows {
		if c.isSecurityRow(t, r, idCol) {
			ct.SecurityRows = append(ct.SecurityRows, r)
		}
	}
	// Identifier override also rescues rows the footer heuristic claimed.
	if idCol >= 0 {
		for r := range ct.FooterRows {
			if identifier.Validate(t.Cell(r, idCol)) {
				delete(ct.FooterRows, r)
				ct.SecurityRows = append(ct.SecurityRows, r)
			}
		}
	}
	sort.Ints(ct.SecurityRows)
	return ct
}

// detectHeaders scans at most the first HeaderScanRows rows. A header row
// has mostly short text cells, few gaps, no valid identifier and no numeric
// majority. Headers are contiguous from the top: the first data-looking row
// ends the scan.
func (c *Classifier) detectHeaders(ct *ClassifiedTable) {
	limit := c.cfg.HeaderScanRows
	if limit > ct.Rows() {
		limit = ct.Rows()
	}
	for r := 0; r < limit; r++ {
		row := ct.Cells[r]
		nonEmpty, totalLen, numeric := 0, 0, 0
		hasIdentifier := false
		for _, cell := range row {
			if cell == "" {
				continue
			}
			nonEmpty++
			totalLen += len(cell)
			if identifier.Validate(cell) {
				hasIdentifier = true
			}
			if money.IsNumeric(cell) {
				numeric++
			}
		}
		if nonEmpty == 0 || hasIdentifier {
			return
		}
		if float64(numeric) >= float64(nonEmpty)/2 {
			return
		}
		avgLen := float64(totalLen) / float64(nonEmpty)
		emptyRatio := 1 - float64(nonEmpty)/float64(ct.Cols())
		if avgLen >= c.cfg.HeaderMaxAvgCellLen || emptyRatio > c.cfg.HeaderMaxEmptyRatio {
			return
		}
		ct.HeaderRows[r] = true
	}
}

// detectFooters scans at most the last FooterScanRows rows for summary
// keywords or rows markedly sparser than the table median.
func (c *Classifier) detectFooters(ct *ClassifiedTable) {
	rows := ct.Rows()
	start := rows - c.cfg.FooterScanRows
	if start < 0 {
		start = 0
	}
	medianFill := medianFilledRatio(ct.CandidateTable)
	for r := start; r < rows; r++ {
		if ct.HeaderRows[r] {
			continue
		}
		if hasFooterKeyword(ct.Cells[r]) {
			ct.FooterRows[r] = true
			continue
		}
		if medianFill > 0 && rowFilledRatio(ct.CandidateTable, r) < medianFill*c.cfg.FooterSparsityFactor {
			ct.FooterRows[r] = true
		}
	}
}

// isSecurityRow applies the density test, with the identifier override.
func (c *Classifier) isSecurityRow(t extraction.RankedTable, row, idCol int) bool {
	if idCol >= 0 && identifier.Validate(t.Cell(row, idCol)) {
		return true
	}
	return rowFilledRatio(t.CandidateTable, row) >= c.cfg.SecurityRowMinFilledRatio
}

func hasFooterKeyword(row []string) bool {
	for _, cell := range row {
		lower := strings.ToLower(strings.TrimSpace(cell))
		if lower == "" {
			continue
		}
		for _, kw := range footerKeywords {
			if strings.HasPrefix(lower, kw) {
				return true
			}
		}
	}
	return false
}

func rowFilledRatio(t extraction.CandidateTable, row int) float64 {
	cols := t.Cols()
	if cols == 0 {
		return 0
	}
	filled := 0
	for col := 0; col < cols; col++ {
		if t.Cell(row, col) != "" {
			filled++
		}
	}
	return float64(filled) / float64(cols)
}

func medianFilledRatio(t extraction.CandidateTable) float64 {
	rows := t.Rows()
	if rows == 0 {
		return 0
	}
	ratios := make([]float64, rows)
	for r := 0; r < rows; r++ {
		ratios[r] = rowFilledRatio(t, r)
	}
	return median(ratios)
}
