// Command holdings runs decoded statement files through the extraction and
// reconciliation pipeline and prints one JSON result per input document.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/holdings-engine/internal/domain/document"
	"github.com/FACorreiaa/holdings-engine/pkg/config"
	"github.com/FACorreiaa/holdings-engine/pkg/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	pretty := flag.Bool("pretty", false, "indent JSON output")
	level := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file>...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		return 2
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*level),
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		return 1
	}

	deps := NewDependencies(cfg, logger)
	if err := deps.Scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		return 1
	}
	defer deps.Scheduler.Stop()

	if cfg.Observability.MetricsEnabled {
		go func() {
			if err := metrics.Serve(cfg.Observability.MetricsPort); err != nil {
				logger.Error("metrics endpoint failed", slog.Any("error", err))
			}
		}()
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}

	ctx := context.Background()
	exitCode := 0
	for _, path := range flag.Args() {
		doc, err := loadDocument(path)
		if err != nil {
			logger.Error("failed to load document",
				slog.String("path", path),
				slog.Any("error", err),
			)
			exitCode = 1
			continue
		}

		result, err := deps.Processor.Process(ctx, doc)
		if err != nil {
			logger.Error("failed to process document",
				slog.String("path", path),
				slog.Any("error", err),
			)
			exitCode = 1
			continue
		}
		if err := enc.Encode(result); err != nil {
			logger.Error("failed to write result", slog.Any("error", err))
			exitCode = 1
		}
	}
	return exitCode
}

// loadDocument reads a file into the pipeline's document shape. Spreadsheets
// are passed through as raw bytes for excelize; text formats are split into
// pages on form feeds.
func loadDocument(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		doc := document.New(name, document.KindSpreadsheet)
		doc.Raw = data
		return doc, nil
	case ".csv", ".tsv":
		doc := document.New(name, document.KindDelimited)
		doc.Pages = pagesFrom(string(data))
		return doc, nil
	default:
		doc := document.New(name, document.KindText)
		doc.Pages = pagesFrom(string(data))
		return doc, nil
	}
}

func pagesFrom(text string) []document.Page {
	var pages []document.Page
	for i, chunk := range strings.Split(text, "\f") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		pages = append(pages, document.Page{Number: i + 1, Text: chunk})
	}
	return pages
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
