package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ctsales/internal/config"
	"ctsales/internal/export"
	"ctsales/internal/store"
	"ctsales/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	interactive := flag.Bool("i", false, "run the interactive terminal explorer instead of the HTTP server")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	datasetStart := time.Now()
	ds, err := loadDataset(cfg)
	if err != nil {
		logger.Error("failed to load dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("dataset loaded",
		slog.Int("records", len(ds.Records())),
		slog.Int("years", len(ds.Years())),
		slog.Int("towns", len(ds.Towns())),
		slog.Duration("elapsed", time.Since(datasetStart).Truncate(time.Millisecond)))

	exporter := export.NewWriter(cfg.Export.Dir)

	if *interactive {
		runInteractive(ds, exporter)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.New(cfg.Server.Addr, ds, exporter, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadDataset picks the configured source. Both paths apply the same
// cleaning rules and produce the same immutable dataset.
func loadDataset(cfg *config.Config) (*store.Dataset, error) {
	switch cfg.Data.Source {
	case "", "csv":
		return store.Load(cfg.Data.Path)
	case "oracle":
		return store.LoadFromOracle(context.Background(), store.OracleConfig{
			Host:           cfg.Oracle.Host,
			Port:           cfg.Oracle.Port,
			Service:        cfg.Oracle.Service,
			Username:       cfg.Oracle.Username,
			Password:       cfg.Oracle.Password,
			WalletLocation: cfg.Oracle.WalletLocation,
			Table:          cfg.Oracle.Table,
		})
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
