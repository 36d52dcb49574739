package securities

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/FACorreiaa/holdings-engine/internal/domain/classification"
	"github.com/FACorreiaa/holdings-engine/internal/domain/document"
	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction"
	"github.com/FACorreiaa/holdings-engine/pkg/config"
	"github.com/FACorreiaa/holdings-engine/pkg/metrics"
)

// Diagnostics is the per-document observability payload, independent of the
// main result.
type Diagnostics struct {
	RunID        uuid.UUID        `json:"run_id"`
	Document     string           `json:"document"`
	Extraction   extraction.Stats `json:"extraction"`
	Reconcile    ReconcileStats   `json:"reconciliation"`
	TablesUsed   int              `json:"tables_used"`
	FallbackUsed bool             `json:"fallback_used"`
}

// Result is the full outcome of processing one document. An empty Securities
// list is a legitimate result ("no securities found"), not an error.
type Result struct {
	Securities  []CanonicalSecurity `json:"securities"`
	Aggregate   PortfolioAggregate  `json:"portfolio"`
	Diagnostics Diagnostics         `json:"diagnostics"`
}

// Empty reports whether nothing at all was recovered.
func (r *Result) Empty() bool {
	return r == nil || len(r.Securities) == 0
}

// Processor wires the full pipeline: orchestrated table extraction, column
// and row classification, record extraction with free-text fallback, and
// reconciliation. All state is document-scoped, so one Processor may serve
// concurrent documents.
type Processor struct {
	cfg          config.PipelineConfig
	orchestrator *extraction.Orchestrator
	classifier   *classification.Classifier
	rows         *RowExtractor
	freetext     *FreeTextExtractor
	engine       *Engine
	logger       *slog.Logger
}

// NewProcessor assembles a processor from its parts.
func NewProcessor(
	cfg config.PipelineConfig,
	orchestrator *extraction.Orchestrator,
	classifier *classification.Classifier,
	rows *RowExtractor,
	freetext *FreeTextExtractor,
	engine *Engine,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		cfg:          cfg,
		orchestrator: orchestrator,
		classifier:   classifier,
		rows:         rows,
		freetext:     freetext,
		engine:       engine,
		logger:       logger,
	}
}

// Process runs one document through the pipeline. Partial results always
// beat total failure: the only error is an undecodable (empty) document.
func (p *Processor) Process(ctx context.Context, doc *document.Document) (*Result, error) {
	if doc.Empty() {
		metrics.DocumentsProcessed.WithLabelValues("failed").Inc()
		return nil, document.ErrEmptyDocument
	}

	ranked, extractStats := p.orchestrator.Extract(ctx, doc)
	if p.cfg.TopTablePerPage {
		ranked = topPerPage(ranked)
	}

	var records []RawSecurityRecord
	for _, table := range ranked {
		classified := p.classifier.Classify(table)
		records = append(records, p.rows.Extract(classified)...)
	}

	fallbackUsed := false
	if len(records) == 0 {
		fallbackUsed = true
		records = append(records, p.freetext.Extract(doc.FullText())...)
	}

	reconciled, reconcileStats := p.engine.Reconcile(records)
	result := &Result{
		Securities: reconciled,
		Aggregate:  Aggregate(reconciled),
		Diagnostics: Diagnostics{
			RunID:        doc.ID,
			Document:     doc.Name,
			Extraction:   extractStats,
			Reconcile:    reconcileStats,
			TablesUsed:   len(ranked),
			FallbackUsed: fallbackUsed,
		},
	}

	outcome := "ok"
	if result.Empty() {
		outcome = "empty"
		p.logger.Info("no securities found",
			slog.String("document", doc.Name),
			slog.Int("candidate_tables", extractStats.Candidates),
		)
	}
	metrics.DocumentsProcessed.WithLabelValues(outcome).Inc()

	p.logger.Info("document processed",
		slog.String("document", doc.Name),
		slog.Int("securities", len(reconciled)),
		slog.Int("tables_used", len(ranked)),
		slog.Bool("fallback_used", fallbackUsed),
	)
	return result, nil
}

// topPerPage keeps only the best-ranked table of each page, preserving the
// overall ranking order.
func topPerPage(ranked []extraction.RankedTable) []extraction.RankedTable {
	seen := make(map[int]bool)
	out := make([]extraction.RankedTable, 0, len(ranked))
	for _, t := range ranked {
		if seen[t.Page] {
			continue
		}
		seen[t.Page] = true
		out = append(out, t)
	}
	return out
}
