package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMetricsAddr  = ":9090"
	defaultRunTimeout   = 5 * time.Minute
	defaultParseWorkers = 0 // 0 = reader default (GOMAXPROCS)
)

// Config holds runtime configuration for the ingest service.
type Config struct {
	DatabaseURL     string
	DataDir         string
	ExpectedLoggers []uint64
	IngestInterval  time.Duration // 0 = run once and exit
	MetricsAddr     string
	ParseWorkers    int
	RunTimeout      time.Duration
	LogLevel        string
	DryRun          bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		MetricsAddr:  defaultMetricsAddr,
		RunTimeout:   defaultRunTimeout,
		ParseWorkers: defaultParseWorkers,
	}

	cfg.DataDir = strings.TrimSpace(os.Getenv("DATA_DIR"))
	if cfg.DataDir == "" {
		return cfg, errors.New("DATA_DIR is required")
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" && !cfg.DryRun {
		return cfg, errors.New("DATABASE_URL is required")
	}

	if v := strings.TrimSpace(os.Getenv("EXPECTED_LOGGERS")); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return cfg, fmt.Errorf("invalid EXPECTED_LOGGERS entry %q: %w", part, err)
			}
			cfg.ExpectedLoggers = append(cfg.ExpectedLoggers, id)
		}
	}

	if v := strings.TrimSpace(os.Getenv("INGEST_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid INGEST_INTERVAL: %w", err)
		}
		cfg.IngestInterval = d
	}

	if v := strings.TrimSpace(os.Getenv("INGEST_RUN_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid INGEST_RUN_TIMEOUT: %w", err)
		}
		cfg.RunTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("METRICS_ADDR")); v != "" {
		cfg.MetricsAddr = v
	}

	if v := strings.TrimSpace(os.Getenv("PARSE_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid PARSE_WORKERS: %s", v)
		}
		cfg.ParseWorkers = n
	}

	cfg.LogLevel = strings.TrimSpace(os.Getenv("LOG_LEVEL"))

	return cfg, nil
}
