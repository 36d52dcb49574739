package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Pipeline      PipelineConfig
	Classifier    ClassifierConfig
	Cache         CacheConfig
	Observability ObservabilityConfig
}

// PipelineConfig controls the extraction orchestrator.
type PipelineConfig struct {
	// StrategyTimeout bounds each extraction strategy independently so one
	// slow strategy cannot starve the rest before the overall deadline.
	// Results from strategies that miss it are discarded.
	StrategyTimeout time.Duration

	// TopTablePerPage restricts downstream consumption to the best-ranked
	// table per page when true; otherwise all ranked tables are used.
	TopTablePerPage bool
}

// ClassifierConfig carries the heuristic cutoffs used by column and row
// classification. These are genuinely open design parameters, kept named
// and tunable for calibration against a labeled corpus.
type ClassifierConfig struct {
	// HeaderScanRows / FooterScanRows bound the positional scan windows.
	HeaderScanRows int
	FooterScanRows int

	// HeaderMaxAvgCellLen: a candidate header row's non-empty cells must
	// average below this many characters.
	HeaderMaxAvgCellLen float64

	// HeaderMaxEmptyRatio: maximum fraction of empty cells in a header row.
	HeaderMaxEmptyRatio float64

	// SecurityRowMinFilledRatio: minimum filled-cell ratio for a generic
	// data row (identifier-bearing rows bypass this).
	SecurityRowMinFilledRatio float64

	// FooterSparsityFactor: a trailing row whose filled ratio is below
	// median*factor is treated as a footer.
	FooterSparsityFactor float64

	// NumericColumnMinRatio: fraction of numeric samples required before a
	// headerless column is sniffed as a numeric role.
	NumericColumnMinRatio float64

	// WeightMagnitudeMax / ValueMagnitudeMin split numeric columns by
	// magnitude: medians at or below the former look weight/price-like,
	// above the latter value-like, anything between price-like.
	WeightMagnitudeMax float64
	ValueMagnitudeMin  float64

	// FuzzyLabelMaxRank is the worst accepted fuzzysearch rank when no
	// header label matches exactly. Negative disables fuzzy matching.
	FuzzyLabelMaxRank int
}

// CacheConfig controls the reference-data cache shared across documents.
type CacheConfig struct {
	TTL           time.Duration
	SweepSchedule string // cron expression, 5-field format
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables, after loading a
// local .env file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Pipeline: PipelineConfig{
			StrategyTimeout: getEnvAsDuration("STRATEGY_TIMEOUT", 10*time.Second),
			TopTablePerPage: getEnvAsBool("TOP_TABLE_PER_PAGE", false),
		},
		Classifier: DefaultClassifier(),
		Cache: CacheConfig{
			TTL:           getEnvAsDuration("REFERENCE_CACHE_TTL", 12*time.Hour),
			SweepSchedule: getEnv("REFERENCE_CACHE_SWEEP", "0 * * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	cfg.Classifier.HeaderScanRows = getEnvAsInt("HEADER_SCAN_ROWS", cfg.Classifier.HeaderScanRows)
	cfg.Classifier.FooterScanRows = getEnvAsInt("FOOTER_SCAN_ROWS", cfg.Classifier.FooterScanRows)
	cfg.Classifier.HeaderMaxAvgCellLen = getEnvAsFloat("HEADER_MAX_AVG_CELL_LEN", cfg.Classifier.HeaderMaxAvgCellLen)
	cfg.Classifier.SecurityRowMinFilledRatio = getEnvAsFloat("SECURITY_ROW_MIN_FILLED_RATIO", cfg.Classifier.SecurityRowMinFilledRatio)
	cfg.Classifier.WeightMagnitudeMax = getEnvAsFloat("WEIGHT_MAGNITUDE_MAX", cfg.Classifier.WeightMagnitudeMax)
	cfg.Classifier.ValueMagnitudeMin = getEnvAsFloat("VALUE_MAGNITUDE_MIN", cfg.Classifier.ValueMagnitudeMin)

	return cfg, nil
}

// DefaultClassifier returns the calibrated default cutoffs.
func DefaultClassifier() ClassifierConfig {
	return ClassifierConfig{
		HeaderScanRows:            3,
		FooterScanRows:            3,
		HeaderMaxAvgCellLen:       25,
		HeaderMaxEmptyRatio:       0.4,
		SecurityRowMinFilledRatio: 0.5,
		FooterSparsityFactor:      0.6,
		NumericColumnMinRatio:     0.6,
		WeightMagnitudeMax:        100,
		ValueMagnitudeMin:         1000,
		FuzzyLabelMaxRank:         2,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
