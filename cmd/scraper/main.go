package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/bookcatalog/config"
	"github.com/aluiziolira/bookcatalog/models"
	"github.com/aluiziolira/bookcatalog/output"
	"github.com/aluiziolira/bookcatalog/parser"
	"github.com/aluiziolira/bookcatalog/scraper"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		return 1
	}

	defaults := config.DefaultConfig()
	if err := defaults.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		return 1
	}

	baseURL := flag.String("base-url", defaults.BaseURL, "Base URL of the catalogue site")
	outputFile := flag.String("output", defaults.OutputFile, "Output file path")
	outputFormat := flag.String("format", defaults.OutputFormat, "Output format: json, csv, or dual")
	backend := flag.String("backend", defaults.Backend, "HTTP backend: colly or resty")
	timeout := flag.Duration("timeout", defaults.Timeout, "Per-request timeout")
	maxPages := flag.Int("pages", defaults.MaxPages, "Maximum catalogue pages to scrape")
	rateLimit := flag.Float64("rate", defaults.RateLimit, "Maximum requests per second (0 = unlimited)")
	repeatWindow := flag.Int("repeat-window", defaults.RepeatWindow, "Stop when a page repeats one of the last N pages (0 = off)")
	skipMalformed := flag.Bool("skip-malformed", defaults.SkipMalformed, "Skip listings with unexpected markup instead of stopping")
	atomic := flag.Bool("atomic", defaults.AtomicWrite, "Write output via temp file and rename")
	metricsAddr := flag.String("metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	verify := flag.Bool("verify", false, "Read the JSON output back and check every record")
	verbose := flag.Bool("v", defaults.Verbose, "Enable verbose logging")

	flag.Parse()

	slog.SetDefault(newLogger(*verbose))

	cfg := defaults
	cfg.BaseURL = *baseURL
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.Backend = strings.ToLower(*backend)
	cfg.Timeout = *timeout
	cfg.MaxPages = *maxPages
	cfg.RateLimit = *rateLimit
	cfg.RepeatWindow = *repeatWindow
	cfg.SkipMalformed = *skipMalformed
	cfg.AtomicWrite = *atomic
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		return 1
	}

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		return 1
	}

	writer, err := output.New(cfg.OutputFormat, cfg.AtomicWrite)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result := s.Run(ctx)

	// Whatever was collected is written, including after a failure.
	writeErr := writer.Write(result.Records, cfg.OutputFile)
	if writeErr != nil {
		slog.Error("writing output failed", slog.Any("error", writeErr))
	} else if *verify && cfg.OutputFormat != "csv" {
		writeErr = verifyOutput(cfg.OutputFile, len(result.Records))
		if writeErr != nil {
			slog.Error("output validation failed", slog.Any("error", writeErr))
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, cfg.OutputFile)

	if writeErr != nil || result.State == models.StateFailed {
		return 1
	}
	return 0
}

func verifyOutput(path string, want int) error {
	records, err := output.ReadJSON(path)
	if err != nil {
		return err
	}
	if len(records) != want {
		return fmt.Errorf("%s holds %d records, want %d", path, len(records), want)
	}
	for i, record := range records {
		if err := parser.ValidateRecord(record); err != nil {
			return fmt.Errorf("%s record %d: %w", path, i+1, err)
		}
	}
	return nil
}

func printSummary(result *models.RunResult, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape " + result.State.String())

	fmt.Printf("  Records:       %d\n", len(result.Records))
	fmt.Printf("  Pages fetched: %d\n", result.Fetches)
	fmt.Printf("  Last page:     %d\n", result.LastPage)
	fmt.Printf("  Stop reason:   %s\n", result.Reason)
	if result.Err != nil {
		fmt.Printf("  Error:         %v\n", result.Err)
	}
	duration := result.Duration()
	fmt.Printf("  Duration:      %v\n", duration)
	if duration.Seconds() > 0 {
		fmt.Printf("  Records/sec:   %.2f\n", float64(len(result.Records))/duration.Seconds())
	}
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if isTerminal(os.Stderr) {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
