// Package document models the decoder boundary: the shape a decoded
// statement or holdings report has when it enters the extraction pipeline.
// Actual decoding (PDF text extraction, OCR, spreadsheet unzipping) happens
// upstream; the pipeline only ever sees this read-only structure.
package document

import (
	"errors"

	"github.com/google/uuid"
)

// ErrEmptyDocument indicates a decoded document with no usable content at
// all: no page text, no cell grids, no raw spreadsheet bytes.
var ErrEmptyDocument = errors.New("document has no pages, grids or spreadsheet content")

// Kind identifies the physical source format of a document.
type Kind string

const (
	KindText        Kind = "text"        // plain or PDF-extracted page text
	KindDelimited   Kind = "delimited"   // CSV/TSV statement export
	KindSpreadsheet Kind = "spreadsheet" // native XLSX workbook
)

// Page is one page of extracted text, 1-indexed by Number.
type Page struct {
	Number int
	Text   string
}

// CellGrid is a pre-decoded table grid handed over by an upstream decoder
// (for example a PDF layout engine). Page is 1-indexed; AccuracyHint is the
// decoder's own confidence in [0,100].
type CellGrid struct {
	Page         int
	Cells        [][]string
	AccuracyHint float64
}

// Document is the read-only input to the extraction pipeline. A document may
// carry any combination of page text, pre-decoded grids, and raw spreadsheet
// bytes; each strategy consumes what it understands and ignores the rest.
type Document struct {
	ID    uuid.UUID
	Name  string
	Kind  Kind
	Pages []Page
	Grids []CellGrid

	// Raw holds the original file bytes for formats the strategies open
	// themselves (currently XLSX via excelize). Nil for text inputs.
	Raw []byte
}

// New creates a document with a fresh run ID.
func New(name string, kind Kind) *Document {
	return &Document{ID: uuid.New(), Name: name, Kind: kind}
}

// Empty reports whether the document carries no extractable content.
func (d *Document) Empty() bool {
	if d == nil {
		return true
	}
	for _, p := range d.Pages {
		if p.Text != "" {
			return false
		}
	}
	return len(d.Grids) == 0 && len(d.Raw) == 0
}

// FullText concatenates all page text, used by the free-text fallback.
func (d *Document) FullText() string {
	if d == nil {
		return ""
	}
	var size int
	for _, p := range d.Pages {
		size += len(p.Text) + 1
	}
	buf := make([]byte, 0, size)
	for _, p := range d.Pages {
		buf = append(buf, p.Text...)
		buf = append(buf, '\n')
	}
	return string(buf)
}
