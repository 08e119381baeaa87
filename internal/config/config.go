// Package config centralizes environment and static-table loading: it calls
// godotenv.Load() and reads a YAML config file at startup.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"valuationengine/internal/logging"
	"valuationengine/pkg/damodaran"
)

var log = logging.Tag("CONFIG")

// Config holds runtime settings sourced from the environment.
type Config struct {
	AlphaVantageAPIKey string
	FMPAPIKey          string

	RedisAddr string // empty => treasury-yield cache runs in-memory only

	RequestDeadline    time.Duration // default 30s
	AggregatorDeadline time.Duration // default 8s
	AdapterTimeout     time.Duration // default 5s
	AdapterFanout      int           // default 4

	DamodaranSnapshotPath string // default "config/damodaran.yaml"
}

// Load reads .env (if present) and environment variables into a Config,
// then loads the Damodaran static dataset snapshot. A missing .env file is
// a warning, not a fatal error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file found, assuming environment variables are set: %v", err)
	}

	cfg := &Config{
		AlphaVantageAPIKey:    os.Getenv("ALPHAVANTAGE_API_KEY"),
		FMPAPIKey:             os.Getenv("FMP_API_KEY"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RequestDeadline:       durationEnv("VALUATION_REQUEST_DEADLINE", 30*time.Second),
		AggregatorDeadline:    durationEnv("VALUATION_AGGREGATOR_DEADLINE", 8*time.Second),
		AdapterTimeout:        durationEnv("VALUATION_ADAPTER_TIMEOUT", 5*time.Second),
		AdapterFanout:         intEnv("VALUATION_ADAPTER_FANOUT", 4),
		DamodaranSnapshotPath: stringEnv("DAMODARAN_SNAPSHOT_PATH", "config/damodaran.yaml"),
	}

	if _, err := os.Stat(cfg.DamodaranSnapshotPath); err == nil {
		if err := damodaran.Load(cfg.DamodaranSnapshotPath); err != nil {
			log.Warnf("failed to load Damodaran snapshot %s, using built-in defaults: %v", cfg.DamodaranSnapshotPath, err)
		} else {
			log.Printf("loaded Damodaran snapshot from %s", cfg.DamodaranSnapshotPath)
		}
	}

	return cfg, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
