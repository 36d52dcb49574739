package strategy

import (
	"context"

	"github.com/FACorreiaa/holdings-engine/internal/domain/document"
	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction"
)

// Grid adapts cell grids produced by an upstream decoder (a PDF layout
// engine, an OCR service) into candidate tables. The decoder's own accuracy
// hint is carried through unchanged so its confidence ranks against the
// other strategies.
type Grid struct{}

// NewGrid creates the decoder-grid strategy.
func NewGrid() *Grid { return &Grid{} }

func (s *Grid) Name() string { return "decoder-grid" }

func (s *Grid) ExtractCandidates(ctx context.Context, doc *document.Document) ([]extraction.CandidateTable, error) {
	var tables []extraction.CandidateTable
	for _, grid := range doc.Grids {
		if err := ctx.Err(); err != nil {
			return tables, err
		}
		if len(grid.Cells) < 2 {
			continue
		}
		tables = append(tables, extraction.NewCandidateTable(s.Name(), grid.Page, grid.Cells, grid.AccuracyHint))
	}
	return tables, nil
}
