// Package e2etest provides end-to-end tests over the fully wired pipeline,
// from raw document content to reconciled canonical securities.
package e2etest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/holdings-engine/internal/domain/classification"
	"github.com/FACorreiaa/holdings-engine/internal/domain/document"
	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction"
	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction/strategy"
	"github.com/FACorreiaa/holdings-engine/internal/domain/securities"
	"github.com/FACorreiaa/holdings-engine/pkg/config"
)

func newPipeline(t *testing.T) *securities.Processor {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg, err := config.Load()
	require.NoError(t, err)

	orchestrator := extraction.NewOrchestrator(logger, cfg.Pipeline.StrategyTimeout,
		strategy.NewSpreadsheet(),
		strategy.NewDelimited(),
		strategy.NewGrid(),
		strategy.NewTextGrid(),
	)
	return securities.NewProcessor(
		cfg.Pipeline,
		orchestrator,
		classification.NewClassifier(cfg.Classifier),
		securities.NewRowExtractor(logger),
		securities.NewFreeTextExtractor(logger),
		securities.NewEngine(logger, securities.NewReferenceCache(cfg.Cache.TTL)),
		logger,
	)
}

func TestCSVStatementEndToEnd(t *testing.T) {
	doc := document.New("statement.csv", document.KindDelimited)
	doc.Pages = []document.Page{{
		Number: 1,
		Text: "ISIN;Name;Qty;Price;Value;Currency\n" +
			"US0378331005;APPLE INC;100;176.35;17635.00;USD\n" +
			"DE0007164600;SAP SE;50;240.00;12000.00;EUR\n" +
			"Total;;;;29635.00;\n",
	}}

	result, err := newPipeline(t).Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Securities, 2)
	assert.False(t, result.Diagnostics.FallbackUsed)

	apple := result.Securities[0]
	require.NotNil(t, apple.Identifier)
	assert.Equal(t, "US0378331005", *apple.Identifier)
	assert.True(t, apple.IdentifierValid)
	assert.Equal(t, "APPLE INC", *apple.Name)
	assert.InDelta(t, 100, *apple.Quantity, 0.001)
	assert.InDelta(t, 176.35, *apple.Price, 0.001)
	assert.InDelta(t, 17635.00, *apple.Value, 0.001)
	assert.Equal(t, "USD", *apple.Currency)
	assert.InDelta(t, 1.0, apple.Completeness, 0.001)

	sap := result.Securities[1]
	assert.Equal(t, "DE0007164600", *sap.Identifier)
	assert.InDelta(t, 12000.00, *sap.Value, 0.001)

	// The Total footer must not surface as a security.
	for _, sec := range result.Securities {
		if sec.Name != nil {
			assert.NotContains(t, *sec.Name, "Total")
		}
	}

	agg := result.Aggregate
	assert.InDelta(t, 29635.00, agg.TotalValue, 0.001)
	assert.InDelta(t, 100, agg.IdentifierCoveragePercent, 0.001)
	assert.Equal(t, 2, agg.CompleteSecurityCount)
}

func TestSpreadsheetEndToEnd(t *testing.T) {
	book := excelize.NewFile()
	require.NoError(t, book.SetSheetName("Sheet1", "Positions"))
	cells := [][]string{
		{"ISIN", "Description", "Nominal", "Market Price", "Market Value", "Ccy"},
		{"CH0012032048", "ROCHE HOLDING AG", "40", "250.00", "10000.00", "CHF"},
		{"NL0000235190", "AIRBUS SE", "30", "140.00", "4200.00", "EUR"},
	}
	for r, row := range cells {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, book.SetCellValue("Positions", cell, v))
		}
	}
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	doc := document.New("portfolio.xlsx", document.KindSpreadsheet)
	doc.Raw = buf.Bytes()

	result, err := newPipeline(t).Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Securities, 2)

	roche := result.Securities[0]
	assert.Equal(t, "CH0012032048", *roche.Identifier)
	assert.Equal(t, "ROCHE HOLDING AG", *roche.Name)
	assert.InDelta(t, 40, *roche.Quantity, 0.001)
	assert.Equal(t, "CHF", *roche.Currency)
}

func TestFreeTextFallbackEndToEnd(t *testing.T) {
	doc := document.New("confirmation.txt", document.KindText)
	doc.Pages = []document.Page{{
		Number: 1,
		Text: "We confirm the purchase for your portfolio.\n" +
			"NESTLE SA ISIN CH0038863350 quantity 120 price 102.50 value 12,300.00 CHF\n" +
			"Settlement follows under separate cover.\n",
	}}

	result, err := newPipeline(t).Process(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, result.Diagnostics.FallbackUsed)
	require.Len(t, result.Securities, 1)

	sec := result.Securities[0]
	assert.Equal(t, "CH0038863350", *sec.Identifier)
	assert.True(t, sec.IdentifierValid)
	require.NotNil(t, sec.Value)
	assert.InDelta(t, 12300.00, *sec.Value, 0.001)
	assert.Equal(t, "CHF", *sec.Currency)
}

func TestMultiStrategyAgreementDeduplicates(t *testing.T) {
	// The same table arrives as page text and as a decoder grid; the result
	// must contain each security once.
	doc := document.New("statement.txt", document.KindText)
	doc.Pages = []document.Page{{
		Number: 1,
		Text: "ISIN;Name;Value\n" +
			"US0378331005;Apple Inc;17635.00\n",
	}}
	doc.Grids = []document.CellGrid{{
		Page: 1,
		Cells: [][]string{
			{"ISIN", "Name", "Value"},
			{"US0378331005", "Apple Inc", "17635.00"},
		},
		AccuracyHint: 92,
	}}

	result, err := newPipeline(t).Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Securities, 1)
	assert.Equal(t, "US0378331005", *result.Securities[0].Identifier)
	assert.GreaterOrEqual(t, result.Diagnostics.Extraction.Deduplicated, 1)
}
