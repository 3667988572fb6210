// Package main is the entry point for the hostpulse agent.
// It initializes configuration, builds the monitor, and prints collected
// metrics as JSON — once by default, or continuously in watch mode.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hostpulse/agent/internal/collector"
	"github.com/hostpulse/agent/internal/config"
	"github.com/hostpulse/agent/internal/monitor"
	"github.com/hostpulse/agent/internal/sampler"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = flag.String("config", "", "Path to configuration file")
	metricsList = flag.String("metrics", "", "Comma-separated metric names (default: all)")
	modeName    = flag.String("mode", "threaded", "Collection mode: sequential, threaded, async")
	watch       = flag.Bool("watch", false, "Collect continuously at the configured interval")
	showVersion = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("hostpulse-agent %s\n", version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)
	defer logger.Sync()

	mode, err := parseMode(*modeName)
	if err != nil {
		logger.Fatal("Invalid mode", zap.Error(err))
	}

	// Handle OS signals for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	mon := monitor.New(cfg, logger)

	if *watch {
		runWatch(ctx, mon, cfg, mode, logger)
		return
	}
	runOnce(ctx, mon, mode, logger)
}

// runOnce collects one result and prints it as JSON.
func runOnce(ctx context.Context, mon *monitor.Monitor, mode collector.Mode, logger *zap.Logger) {
	var result interface{}
	if names := selectedMetrics(); names != nil {
		result = mon.CollectWith(ctx, names, mode)
	} else {
		result = mon.CollectAllWith(ctx, mode)
	}
	printJSON(result, logger)
}

// runWatch collects at the configured interval until interrupted.
func runWatch(ctx context.Context, mon *monitor.Monitor, cfg *config.Config, mode collector.Mode, logger *zap.Logger) {
	logger.Info("Watching",
		zap.Duration("interval", cfg.Collection.Interval.Duration),
		zap.String("mode", mode.String()))

	s := sampler.New(mon, cfg.Collection.Interval.Duration, mode, logger)
	s.OnSample(func(snap sampler.Snapshot) {
		printJSON(snap, logger)
	})
	s.Start(ctx)
	logger.Info("Agent stopped")
}

// selectedMetrics parses the -metrics flag into a name list, or nil for all.
func selectedMetrics() []string {
	if *metricsList == "" {
		return nil
	}
	parts := strings.Split(*metricsList, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// parseMode resolves the -mode flag value.
func parseMode(name string) (collector.Mode, error) {
	switch name {
	case "sequential":
		return collector.Sequential, nil
	case "threaded":
		return collector.Threaded, nil
	case "async":
		return collector.Async, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want sequential, threaded, or async)", name)
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}, logger *zap.Logger) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("Failed to encode result", zap.Error(err))
		return
	}
	fmt.Println(string(data))
}

// initLogger creates a zap logger based on the configuration.
// It outputs to stderr (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Console output (human-readable); stderr keeps stdout clean for JSON
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	// File output (structured JSON, if configured)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
