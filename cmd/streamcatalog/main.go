// Package main implements the entry point for the streamcatalog extractor.
// streamcatalog connects to a Kafka-compatible cluster and its schema
// registry, discovers topics, and emits dataset metadata workunits.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/c360/streamcatalog/config"
	"github.com/c360/streamcatalog/metric"
	"github.com/c360/streamcatalog/source"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "streamcatalog"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Run application with proper error handling
	if err := run(); err != nil {
		slog.Error("Extraction failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// Parse and validate CLI flags
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	// Load and validate configuration
	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	// Setup metrics
	metricsRegistry := metric.NewMetricsRegistry()
	if cliCfg.MetricsPort > 0 {
		startMetricsServer(cliCfg.MetricsPort, metricsRegistry)
	}

	// Open workunit output
	out, closeOut, err := openOutput(cliCfg.OutputPath)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer closeOut()

	// Connect and extract with signal handling
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	return extract(signalCtx, cfg, logger, metricsRegistry, out)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting streamcatalog (topic metadata extraction)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// extract runs the extraction pipeline and writes workunits as NDJSON.
func extract(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	metricsRegistry *metric.MetricsRegistry,
	out io.Writer,
) error {
	src, err := source.NewFromConfig(cfg,
		source.WithLogger(logger),
		source.WithMetrics(metricsRegistry),
	)
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			slog.Warn("Closing source failed", "error", err)
		}
	}()

	writer := bufio.NewWriter(out)
	encoder := json.NewEncoder(writer)

	for src.Next(ctx) {
		wu := src.Workunit()
		if err := encoder.Encode(wu); err != nil {
			return fmt.Errorf("write workunit %s: %w", wu.ID, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if err := src.Err(); err != nil {
		return fmt.Errorf("extraction stopped: %w", err)
	}

	rep := src.Report()
	slog.Info("Extraction complete", "report", rep)
	for _, w := range rep.Warnings() {
		slog.Warn("Run warning", "key", w.Key, "reason", w.Reason)
	}
	if rep.Failed() {
		return fmt.Errorf("run recorded %d failures", len(rep.Failures()))
	}

	return nil
}

// startMetricsServer serves Prometheus metrics in the background.
func startMetricsServer(port int, registry *metric.MetricsRegistry) {
	server := metric.NewServer(port, "/metrics", registry)
	slog.Info("Serving metrics", "address", server.Address())
	go func() {
		if err := server.Start(); err != nil {
			slog.Warn("Metrics server stopped", "error", err)
		}
	}()
}

// openOutput returns the workunit destination. "-" means stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {
		if err := f.Close(); err != nil {
			slog.Warn("Closing output failed", "error", err, "path", path)
		}
	}, nil
}

// loadConfig loads configuration from the specified file path, or just the
// defaults and environment overrides when no path is given.
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path == "" {
		return loader.Load()
	}
	return loader.LoadFile(path)
}
