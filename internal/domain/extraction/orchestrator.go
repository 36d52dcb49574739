package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/FACorreiaa/holdings-engine/internal/domain/document"
	"github.com/FACorreiaa/holdings-engine/pkg/metrics"
)

// Strategy is one independent table-extraction pass over a document.
// Implementations must treat the document as read-only. A strategy that
// cannot contribute returns (nil, nil); errors and panics are isolated by
// the orchestrator and never abort the other strategies.
type Strategy interface {
	Name() string
	ExtractCandidates(ctx context.Context, doc *document.Document) ([]CandidateTable, error)
}

// Quality-score weights: accuracy is augmented by table size, cell density,
// and numeric content. Tunable against a labeled corpus.
const (
	scoreRowWeight     = 0.5
	scoreRowCap        = 10.0
	scoreColWeight     = 2.0
	scoreColCap        = 10.0
	scoreFilledWeight  = 10.0
	scoreNumericWeight = 10.0
)

// Stats summarizes one orchestration run for the diagnostics channel.
type Stats struct {
	Candidates   int `json:"candidate_tables"`
	Deduplicated int `json:"deduplicated_tables"`
	Failures     int `json:"strategy_failures"`
}

// Orchestrator fans a document out to all registered strategies, collapses
// fingerprint duplicates, and returns tables sorted by descending quality.
type Orchestrator struct {
	strategies []Strategy
	timeout    time.Duration // per-strategy bound; zero means no bound
	logger     *slog.Logger
}

// NewOrchestrator creates an orchestrator with a per-strategy timeout.
func NewOrchestrator(logger *slog.Logger, timeout time.Duration, strategies ...Strategy) *Orchestrator {
	return &Orchestrator{
		strategies: strategies,
		timeout:    timeout,
		logger:     logger,
	}
}

// Register appends another strategy. Not safe to call concurrently with
// Extract.
func (o *Orchestrator) Register(s Strategy) {
	o.strategies = append(o.strategies, s)
}

type strategyResult struct {
	name   string
	tables []CandidateTable
	err    error
}

// Extract runs every strategy, each on its own goroutine with an independent
// deadline. Strategies share no mutable state, so parallelism here is purely
// a throughput optimization; the result is deterministic for a given input.
func (o *Orchestrator) Extract(ctx context.Context, doc *document.Document) ([]RankedTable, Stats) {
	results := make(chan strategyResult, len(o.strategies))

	var wg sync.WaitGroup
	for _, s := range o.strategies {
		wg.Add(1)
		go func(s Strategy) {
			defer wg.Done()
			results <- o.runOne(ctx, s, doc)
		}(s)
	}
	wg.Wait()
	close(results)

	// Collect in strategy-name order for deterministic tie-breaking.
	collected := make([]strategyResult, 0, len(o.strategies))
	for r := range results {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].name < collected[j].name })

	var stats Stats
	candidates := make([]CandidateTable, 0)
	for _, r := range collected {
		if r.err != nil {
			stats.Failures++
			metrics.StrategyFailures.WithLabelValues(r.name).Inc()
			o.logger.Warn("extraction strategy failed",
				slog.String("strategy", r.name),
				slog.Any("error", r.err),
			)
			continue
		}
		stats.Candidates += len(r.tables)
		metrics.CandidateTables.WithLabelValues(r.name).Add(float64(len(r.tables)))
		candidates = append(candidates, r.tables...)
	}

	deduped, dropped := dedupe(candidates)
	stats.Deduplicated = dropped
	metrics.DeduplicatedTables.Add(float64(dropped))

	ranked := rank(deduped)
	o.logger.Debug("extraction complete",
		slog.String("document", doc.Name),
		slog.Int("candidates", stats.Candidates),
		slog.Int("ranked", len(ranked)),
		slog.Int("duplicates_dropped", dropped),
	)
	return ranked, stats
}

// runOne executes a single strategy under its own deadline, converting
// panics into errors so one bad strategy cannot take the run down.
func (o *Orchestrator) runOne(ctx context.Context, s Strategy, doc *document.Document) (res strategyResult) {
	res.name = s.Name()
	defer func() {
		if r := recover(); r != nil {
			res.tables = nil
			res.err = fmt.Errorf("strategy panic: %v", r)
		}
	}()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	done := make(chan struct{})
	var tables []CandidateTable
	var err error
	go func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("strategy panic: %v", r)
			}
			close(done)
		}()
		tables, err = s.ExtractCandidates(ctx, doc)
	}()

	select {
	case <-done:
		res.tables, res.err = tables, err
	case <-ctx.Done():
		// Bounded wait: use whatever the other strategies produce.
		res.err = fmt.Errorf("strategy timed out: %w", ctx.Err())
	}
	return res
}

// dedupe collapses tables sharing a fingerprint within the same page,
// keeping the instance with the highest accuracy hint. Input order breaks
// ties, so callers must pass a deterministically ordered slice.
func dedupe(tables []CandidateTable) ([]CandidateTable, int) {
	type key struct {
		page        int
		fingerprint string
	}
	seen := make(map[key]int) // key -> index into out
	out := make([]CandidateTable, 0, len(tables))
	dropped := 0

	for _, t := range tables {
		k := key{t.Page, t.Fingerprint}
		if idx, ok := seen[k]; ok {
			dropped++
			if t.AccuracyHint > out[idx].AccuracyHint {
				out[idx] = t
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, t)
	}
	return out, dropped
}

// rank scores and sorts tables descending. Ordering is total: ties on score
// fall back to page then fingerprint, keeping output reproducible.
func rank(tables []CandidateTable) []RankedTable {
	ranked := make([]RankedTable, 0, len(tables))
	for _, t := range tables {
		ranked = append(ranked, RankedTable{CandidateTable: t, QualityScore: Score(t)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.QualityScore != b.QualityScore {
			return a.QualityScore > b.QualityScore
		}
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		return a.Fingerprint < b.Fingerprint
	})
	return ranked
}

// Score computes the composite quality score for a candidate table.
func Score(t CandidateTable) float64 {
	rows := float64(t.Rows()) * scoreRowWeight
	if rows > scoreRowCap {
		rows = scoreRowCap
	}
	cols := float64(t.Cols()) * scoreColWeight
	if cols > scoreColCap {
		cols = scoreColCap
	}
	return t.AccuracyHint + rows + cols +
		scoreFilledWeight*t.FilledRatio() +
		scoreNumericWeight*t.NumericRatio()
}
