package strategy

import (
	"context"
	"regexp"
	"strings"

	"github.com/FACorreiaa/holdings-engine/internal/domain/document"
	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction"
)

// Layout inference from plain text is the weakest source, so it carries the
// lowest accuracy hint and only wins when nothing structured is available.
const textGridAccuracy = 55.0

// columnGap splits on runs of two or more spaces, the usual column
// separator left behind by fixed-width PDF text extraction.
var columnGap = regexp.MustCompile(`\s{2,}`)

// TextGrid reconstructs tables from whitespace-aligned page text. Lines are
// segmented on multi-space gaps; only lines matching the page's dominant
// column count are kept, which drops prose and page furniture.
type TextGrid struct{}

// NewTextGrid creates the aligned-text strategy.
func NewTextGrid() *TextGrid { return &TextGrid{} }

func (s *TextGrid) Name() string { return "text-grid" }

func (s *TextGrid) ExtractCandidates(ctx context.Context, doc *document.Document) ([]extraction.CandidateTable, error) {
	var tables []extraction.CandidateTable
	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return tables, err
		}
		rows := segmentPage(page.Text)
		if len(rows) < 2 {
			continue
		}
		tables = append(tables, extraction.NewCandidateTable(s.Name(), page.Number, rows, textGridAccuracy))
	}
	return tables, nil
}

// segmentPage splits every line on column gaps, finds the modal column
// count, and keeps the lines at that count (short rows one column under it
// are padded, since trailing cells are often blank).
func segmentPage(text string) [][]string {
	var segmented [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := columnGap.Split(strings.TrimLeft(line, " \t"), -1)
		if len(cells) < 2 {
			continue
		}
		segmented = append(segmented, cells)
	}

	counts := make(map[int]int)
	for _, cells := range segmented {
		counts[len(cells)]++
	}
	mode, best := 0, 0
	for n, c := range counts {
		if c > best || (c == best && n > mode) {
			mode, best = n, c
		}
	}
	if mode < 2 || best < 2 {
		return nil
	}

	var rows [][]string
	for _, cells := range segmented {
		switch {
		case len(cells) == mode:
			rows = append(rows, cells)
		case len(cells) == mode-1 && mode > 2:
			rows = append(rows, append(cells, ""))
		}
	}
	return rows
}
