package securities

import (
	"log/slog"
	"strings"

	"github.com/FACorreiaa/holdings-engine/internal/domain/identifier"
	"github.com/FACorreiaa/holdings-engine/pkg/metrics"
)

// ReconcileStats summarizes one reconciliation pass for diagnostics.
type ReconcileStats struct {
	Records            int `json:"raw_records"`
	Securities         int `json:"securities"`
	Disagreements      int `json:"merge_disagreements"`
	IdentifierFailures int `json:"identifier_validation_failures"`
}

// Engine merges raw security records into canonical securities. It owns the
// mutable accumulation state for a single call only; an Engine value itself
// is stateless apart from its optional reference cache and may be shared.
type Engine struct {
	logger *slog.Logger
	cache  *ReferenceCache // optional, may be nil
}

// NewEngine creates a reconciliation engine. cache may be nil.
func NewEngine(logger *slog.Logger, cache *ReferenceCache) *Engine {
	return &Engine{logger: logger, cache: cache}
}

// group accumulates the raw records describing one security.
type group struct {
	records []RawSecurityRecord
}

// Reconcile merges records in arrival order: callers pass table-extraction
// records before free-text ones, so structured sources win conflicts. For
// each field the first non-null value wins; later conflicting values are
// dropped and logged as diagnostics. Output is in first-seen group order.
func (e *Engine) Reconcile(records []RawSecurityRecord) ([]CanonicalSecurity, ReconcileStats) {
	stats := ReconcileStats{Records: len(records)}

	var groups []*group
	byID := make(map[string]*group)
	byName := make(map[string]*group)

	for _, rec := range records {
		switch {
		case rec.Identifier != nil && strings.TrimSpace(*rec.Identifier) != "":
			key := strings.ToUpper(strings.TrimSpace(*rec.Identifier))
			// The normalized key is also what merging and the reference
			// cache see, so casing from odd sources cannot split entries.
			rec.Identifier = &key
			g, ok := byID[key]
			if !ok {
				g = &group{}
				byID[key] = g
				groups = append(groups, g)
			}
			g.records = append(g.records, rec)
			// Identifier-keyed groups claim their names so nameless
			// records for the same security join them instead of
			// spawning a duplicate.
			if rec.Name != nil {
				name := normalizeName(*rec.Name)
				if _, taken := byName[name]; !taken {
					byName[name] = g
				}
			}
		case rec.Name != nil && normalizeName(*rec.Name) != "":
			name := normalizeName(*rec.Name)
			g, ok := byName[name]
			if !ok {
				g = &group{}
				byName[name] = g
				groups = append(groups, g)
			}
			g.records = append(g.records, rec)
		default:
			// No identifier and no name: nothing to key on.
		}
	}

	out := make([]CanonicalSecurity, 0, len(groups))
	for _, g := range groups {
		sec := e.merge(g.records, &stats)
		out = append(out, sec)
	}
	stats.Securities = len(out)
	metrics.SecuritiesRecovered.Add(float64(len(out)))
	return out, stats
}

// merge folds a group's records into one canonical security.
func (e *Engine) merge(records []RawSecurityRecord, stats *ReconcileStats) CanonicalSecurity {
	sec := CanonicalSecurity{FieldProvenance: make(map[string]string)}
	for _, rec := range records {
		e.mergeStr(&sec.Identifier, rec.Identifier, "identifier", rec.Source, &sec, stats)
		e.mergeStr(&sec.Name, rec.Name, "name", rec.Source, &sec, stats)
		e.mergeFloat(&sec.Quantity, rec.Quantity, "quantity", rec.Source, &sec, stats)
		e.mergeFloat(&sec.Price, rec.Price, "price", rec.Source, &sec, stats)
		e.mergeFloat(&sec.AcquisitionPrice, rec.AcquisitionPrice, "acquisition_price", rec.Source, &sec, stats)
		e.mergeFloat(&sec.Value, rec.Value, "value", rec.Source, &sec, stats)
		e.mergeStr(&sec.Currency, rec.Currency, "currency", rec.Source, &sec, stats)
		e.mergeFloat(&sec.WeightPercent, rec.WeightPercent, "weight_percent", rec.Source, &sec, stats)
		e.mergeStr(&sec.MaturityDate, rec.MaturityDate, "maturity_date", rec.Source, &sec, stats)
		e.mergeFloat(&sec.CouponPercent, rec.CouponPercent, "coupon_percent", rec.Source, &sec, stats)
	}

	if sec.Identifier != nil {
		sec.IdentifierValid = identifier.Validate(*sec.Identifier)
		if !sec.IdentifierValid {
			stats.IdentifierFailures++
			metrics.IdentifierFailures.Inc()
		}
	}

	// The reference cache fills gaps left by every source, then learns
	// from this document in turn.
	if e.cache != nil && sec.IdentifierValid {
		if entry, ok := e.cache.Lookup(*sec.Identifier); ok {
			if sec.Name == nil && entry.Name != nil {
				sec.Name = entry.Name
				sec.FieldProvenance["name"] = "cache"
			}
			if sec.Currency == nil && entry.Currency != nil {
				sec.Currency = entry.Currency
				sec.FieldProvenance["currency"] = "cache"
			}
		}
		e.cache.Store(sec)
	}

	sec.Completeness = sec.computeCompleteness()
	return sec
}

func (e *Engine) mergeStr(dst **string, src *string, field string, prov Provenance, sec *CanonicalSecurity, stats *ReconcileStats) {
	if src == nil || *src == "" {
		return
	}
	if *dst == nil {
		v := *src
		*dst = &v
		sec.FieldProvenance[field] = prov.String()
		return
	}
	if **dst != *src {
		e.disagreement(field, prov, sec, stats)
	}
}

func (e *Engine) mergeFloat(dst **float64, src *float64, field string, prov Provenance, sec *CanonicalSecurity, stats *ReconcileStats) {
	if src == nil {
		return
	}
	if *dst == nil {
		v := *src
		*dst = &v
		sec.FieldProvenance[field] = prov.String()
		return
	}
	if **dst != *src {
		e.disagreement(field, prov, sec, stats)
	}
}

// disagreement records a dropped conflicting value. The earlier value is
// kept; the conflict itself is only a diagnostic.
func (e *Engine) disagreement(field string, prov Provenance, sec *CanonicalSecurity, stats *ReconcileStats) {
	stats.Disagreements++
	metrics.MergeDisagreements.Inc()
	kept := sec.FieldProvenance[field]
	e.logger.Debug("merge disagreement, keeping first value",
		slog.String("field", field),
		slog.String("kept_source", kept),
		slog.String("dropped_source", prov.String()),
	)
}
