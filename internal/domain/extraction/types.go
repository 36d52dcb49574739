// Package extraction turns decoded documents into quality-ranked candidate
// tables. Several independent strategies run over the same document; their
// output is deduplicated by content fingerprint and scored so downstream
// consumers can trust the best rendition of each table.
package extraction

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/FACorreiaa/holdings-engine/pkg/money"
)

// CandidateTable is one strategy's rendition of a table. Immutable after
// creation; owned by the orchestrator until ranked.
type CandidateTable struct {
	Source       string     // strategy name
	Page         int        // 1-indexed page or sheet
	Cells        [][]string // row-major grid, trimmed
	AccuracyHint float64    // originating strategy's confidence in [0,100]
	Fingerprint  string
}

// RankedTable is a CandidateTable that survived deduplication, annotated
// with its composite quality score.
type RankedTable struct {
	CandidateTable
	QualityScore float64
}

// NewCandidateTable trims the grid, drops fully empty rows, and computes the
// content fingerprint.
func NewCandidateTable(source string, page int, cells [][]string, accuracyHint float64) CandidateTable {
	trimmed := make([][]string, 0, len(cells))
	for _, row := range cells {
		clean := make([]string, len(row))
		empty := true
		for i, c := range row {
			clean[i] = strings.TrimSpace(c)
			if clean[i] != "" {
				empty = false
			}
		}
		if !empty {
			trimmed = append(trimmed, clean)
		}
	}
	return CandidateTable{
		Source:       source,
		Page:         page,
		Cells:        trimmed,
		AccuracyHint: accuracyHint,
		Fingerprint:  fingerprint(trimmed),
	}
}

// fingerprint hashes the trimmed cell text row-major so that two strategies
// recovering the same underlying table collapse to one entry regardless of
// which strategy produced them.
func fingerprint(cells [][]string) string {
	h := sha256.New()
	for _, row := range cells {
		for _, cell := range row {
			h.Write([]byte(cell))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Rows returns the number of rows in the grid.
func (t CandidateTable) Rows() int { return len(t.Cells) }

// Cols returns the widest row of the grid.
func (t CandidateTable) Cols() int {
	max := 0
	for _, row := range t.Cells {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// FilledRatio is the fraction of non-empty cells over the full grid extent.
func (t CandidateTable) FilledRatio() float64 {
	rows, cols := t.Rows(), t.Cols()
	if rows == 0 || cols == 0 {
		return 0
	}
	filled := 0
	for _, row := range t.Cells {
		for _, cell := range row {
			if cell != "" {
				filled++
			}
		}
	}
	return float64(filled) / float64(rows*cols)
}

// NumericRatio is the fraction of non-empty cells that parse as numbers.
// Financial holdings tables are numeric-dense, so this feeds quality scoring.
func (t CandidateTable) NumericRatio() float64 {
	nonEmpty, numeric := 0, 0
	for _, row := range t.Cells {
		for _, cell := range row {
			if cell == "" {
				continue
			}
			nonEmpty++
			if money.IsNumeric(cell) {
				numeric++
			}
		}
	}
	if nonEmpty == 0 {
		return 0
	}
	return float64(numeric) / float64(nonEmpty)
}

// Cell returns the trimmed value at (row, col), or "" when out of range.
func (t CandidateTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Cells) {
		return ""
	}
	if col < 0 || col >= len(t.Cells[row]) {
		return ""
	}
	return t.Cells[row][col]
}

// Column collects the values of one column across the given rows.
func (t CandidateTable) Column(col int, rows []int) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, t.Cell(r, col))
	}
	return out
}
