package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erkkar/tms4-data-reader/services/ingest/internal/config"
	"github.com/erkkar/tms4-data-reader/services/ingest/internal/db"
	"github.com/erkkar/tms4-data-reader/services/ingest/internal/metrics"
	"github.com/erkkar/tms4-data-reader/services/ingest/internal/models"
	"github.com/erkkar/tms4-data-reader/services/ingest/internal/utils"
	"github.com/erkkar/tms4-data-reader/tmsreader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var pool *pgxpool.Pool
	if !cfg.DryRun {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	if cfg.IngestInterval <= 0 {
		if err := runOnce(ctx, cfg, pool, log, nil); err != nil {
			log.Error("ingest failed", "error", err)
			os.Exit(1)
		}
		return
	}

	m := metrics.New()
	go serveMetrics(cfg.MetricsAddr, log)

	log.Info("watching data directory", "dir", cfg.DataDir, "interval", cfg.IngestInterval)
	ticker := time.NewTicker(cfg.IngestInterval)
	defer ticker.Stop()

	for {
		if err := runOnce(ctx, cfg, pool, log, m); err != nil && !errors.Is(err, context.Canceled) {
			m.RunsTotal.WithLabelValues("error").Inc()
			log.Error("ingest run failed", "error", err)
		} else if err == nil {
			m.RunsTotal.WithLabelValues("success").Inc()
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Info("shutdown signal received, stopping ingest")
			return
		}
	}
}

// runOnce executes one discovery+parse+merge+upsert pass over the data
// directory. Metrics are nil in one-shot mode.
func runOnce(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, log *slog.Logger, m *metrics.IngestMetrics) error {
	runID := uuid.New()
	started := time.Now().UTC()

	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	reader, err := tmsreader.New(cfg.DataDir,
		tmsreader.WithLogger(log),
		tmsreader.WithWorkers(cfg.ParseWorkers))
	if err != nil {
		return err
	}

	ds, reports, err := reader.Read(runCtx)
	if err != nil {
		return err
	}

	failed, dropped := utils.CountFailures(reports)
	missing := ds.Missing(utils.ToLoggerIDs(cfg.ExpectedLoggers))
	if len(missing) > 0 {
		log.Warn("expected loggers contributed no rows", "run", runID, "missing", formatLoggerIDs(missing))
	}

	loggers := utils.BuildLoggerRows(ds)
	rows := utils.BuildMeasurementRows(ds)
	log.Info("parsed dataset",
		"run", runID, "files", len(reports), "failed", failed,
		"loggers", len(loggers), "rows", len(rows), "dropped", dropped)

	if m != nil {
		for _, rep := range reports {
			m.FilesTotal.WithLabelValues(rep.Kind.String()).Inc()
		}
		m.RowsDropped.Add(float64(dropped))
		m.MissingLoggers.Set(float64(len(missing)))
	}

	if cfg.DryRun {
		log.Info("dry-run: skipping database writes", "run", runID, "rows", len(rows))
		return nil
	}

	if err := db.UpsertLoggers(runCtx, pool, loggers); err != nil {
		return err
	}
	if err := db.UpsertMeasurements(runCtx, pool, rows, runID); err != nil {
		return err
	}

	run := models.RunRow{
		ID:             runID,
		StartedAt:      started,
		FinishedAt:     time.Now().UTC(),
		FilesSeen:      len(reports),
		FilesFailed:    failed,
		RowsUpserted:   len(rows),
		RowsDropped:    dropped,
		MissingLoggers: utils.ToInt64(missing),
	}
	if err := db.RecordRun(runCtx, pool, run); err != nil {
		return err
	}

	if m != nil {
		m.RowsUpserted.Add(float64(len(rows)))
		m.RunDuration.Observe(time.Since(started).Seconds())
	}
	log.Info("ingest run complete", "run", runID, "rows", len(rows), "duration", time.Since(started))
	return nil
}

func serveMetrics(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func formatLoggerIDs(ids []tmsreader.LoggerID) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint64(id))
	}
	return out
}
