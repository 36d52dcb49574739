package classification

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/holdings-engine/internal/domain/identifier"
	"github.com/FACorreiaa/holdings-engine/pkg/config"
	"github.com/FACorreiaa/holdings-engine/pkg/money"
)

// Classifier assigns roles to columns and rows using the configured
// heuristic cutoffs. Safe for concurrent use; all state is read-only.
type Classifier struct {
	cfg config.ClassifierConfig
}

// NewClassifier creates a classifier with the given cutoffs.
func NewClassifier(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// ClassifyColumn maps a column to its financial role. Phase one matches the
// header label (exact, then fuzzy) against the curated variants in fixed
// priority order; phase two sniffs the sample content. Unclassifiable
// columns get RoleText.
func (c *Classifier) ClassifyColumn(header string, samples []string) Role {
	if label := normalizeLabel(header); label != "" {
		for _, role := range rolePriority {
			for _, variant := range roleLabels[role] {
				if label == variant {
					return role
				}
			}
		}
		if c.cfg.FuzzyLabelMaxRank >= 0 {
			if role, ok := c.fuzzyLabel(label); ok {
				return role
			}
		}
	}
	return c.sniffContent(samples)
}

// fuzzyLabel tolerates small header typos ("quantiy", "curreny") without
// letting distant labels bind. The label must be a subsequence of a variant
// within the rank cutoff; first acceptable role in priority order wins.
func (c *Classifier) fuzzyLabel(label string) (Role, bool) {
	for _, role := range rolePriority {
		for _, variant := range roleLabels[role] {
			rank := fuzzy.RankMatchNormalizedFold(label, variant)
			if rank >= 0 && rank <= c.cfg.FuzzyLabelMaxRank {
				return role, true
			}
		}
	}
	return RoleText, false
}

// sniffContent classifies a headerless column from its values alone.
func (c *Classifier) sniffContent(samples []string) Role {
	nonEmpty := 0
	idCount, currencyCount, percentCount := 0, 0, 0
	var numbers []float64
	integers := 0

	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		nonEmpty++

		switch {
		case identifier.Validate(s):
			idCount++
		case money.IsCurrencyCode(s):
			currencyCount++
		case strings.HasSuffix(s, "%"):
			percentCount++
		}

		if v, _, err := money.ParseAmount(s); err == nil {
			numbers = append(numbers, v)
			if v == float64(int64(v)) {
				integers++
			}
		}
	}
	if nonEmpty == 0 {
		return RoleText
	}

	half := float64(nonEmpty) / 2
	switch {
	case float64(idCount) > half:
		return RoleIdentifier
	case float64(currencyCount) > half:
		return RoleCurrency
	case float64(percentCount) > half:
		return RoleWeight
	}

	if float64(len(numbers)) >= c.cfg.NumericColumnMinRatio*float64(nonEmpty) {
		return c.classifyNumeric(numbers, integers)
	}
	return RoleText
}

// classifyNumeric disambiguates quantity, price and value by magnitude of
// the median sample. Mostly-integer columns read as share counts.
func (c *Classifier) classifyNumeric(numbers []float64, integers int) Role {
	if len(numbers) == 0 {
		return RoleText
	}
	med := median(numbers)
	if med < 0 {
		med = -med
	}

	switch {
	case med > c.cfg.ValueMagnitudeMin:
		return RoleValue
	case integers == len(numbers) && med > c.cfg.WeightMagnitudeMax:
		return RoleQuantity
	case med <= c.cfg.WeightMagnitudeMax:
		return RolePrice
	default:
		return RolePrice
	}
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// normalizeLabel lowercases and collapses internal whitespace, trimming the
// punctuation statement generators like to append to headers.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ":.*")
	return strings.Join(strings.Fields(s), " ")
}
