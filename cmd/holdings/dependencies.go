package main

import (
	"log/slog"

	"github.com/FACorreiaa/holdings-engine/internal/domain/classification"
	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction"
	"github.com/FACorreiaa/holdings-engine/internal/domain/extraction/strategy"
	"github.com/FACorreiaa/holdings-engine/internal/domain/securities"
	"github.com/FACorreiaa/holdings-engine/pkg/config"
	"github.com/FACorreiaa/holdings-engine/pkg/cron"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config    *config.Config
	Logger    *slog.Logger
	Cache     *securities.ReferenceCache
	Scheduler *cron.Scheduler
	Processor *securities.Processor
}

// NewDependencies wires the full pipeline from configuration.
func NewDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	cache := securities.NewReferenceCache(cfg.Cache.TTL)

	orchestrator := extraction.NewOrchestrator(logger, cfg.Pipeline.StrategyTimeout,
		strategy.NewSpreadsheet(),
		strategy.NewDelimited(),
		strategy.NewGrid(),
		strategy.NewTextGrid(),
	)

	processor := securities.NewProcessor(
		cfg.Pipeline,
		orchestrator,
		classification.NewClassifier(cfg.Classifier),
		securities.NewRowExtractor(logger),
		securities.NewFreeTextExtractor(logger),
		securities.NewEngine(logger, cache),
		logger,
	)

	return &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Cache:     cache,
		Scheduler: cron.NewScheduler(cache, cfg.Cache.SweepSchedule, logger),
		Processor: processor,
	}
}
