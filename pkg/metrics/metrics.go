// Package metrics exposes Prometheus counters for the per-document
// diagnostics channel: how many candidate tables each strategy produced, how
// many survived deduplication, how many securities were recovered, and which
// strategies failed. The counters are process-wide and safe for concurrent
// document processing.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "holdings"

var (
	// DocumentsProcessed counts pipeline runs, partitioned by outcome
	// ("ok", "empty", "failed").
	DocumentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_processed_total",
		Help:      "Documents run through the extraction pipeline.",
	}, []string{"outcome"})

	// CandidateTables counts raw candidate tables per strategy, before
	// deduplication.
	CandidateTables = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidate_tables_total",
		Help:      "Candidate tables produced, by extraction strategy.",
	}, []string{"strategy"})

	// DeduplicatedTables counts tables collapsed by fingerprint matching.
	DeduplicatedTables = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deduplicated_tables_total",
		Help:      "Candidate tables dropped as fingerprint duplicates.",
	})

	// StrategyFailures counts isolated strategy errors and panics.
	StrategyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "strategy_failures_total",
		Help:      "Extraction strategy failures, by strategy.",
	}, []string{"strategy"})

	// SecuritiesRecovered counts canonical securities emitted.
	SecuritiesRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "securities_recovered_total",
		Help:      "Canonical securities emitted after reconciliation.",
	})

	// IdentifierFailures counts records whose identifier failed checksum
	// validation.
	IdentifierFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identifier_validation_failures_total",
		Help:      "Security records carrying a checksum-invalid identifier.",
	})

	// MergeDisagreements counts dropped conflicting field values during
	// reconciliation.
	MergeDisagreements = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "merge_disagreements_total",
		Help:      "Field conflicts dropped by first-non-null-wins merging.",
	})
)

// Serve starts a metrics endpoint on the given port. It blocks; run it in a
// goroutine.
func Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
