// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/entanglement"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir        string // base directory for the results database
	Port           int
	LogLevel       string
	DevMode        bool
	Strategy       entanglement.Strategy
	LogBase        entanglement.LogBase
	EigenTolerance float64 // eigenvalue clipping threshold
	StateTolerance float64 // trace/Hermiticity deviation tolerance
	RetentionDays  int     // stored runs older than this are purged
}

// Load reads configuration from environment variables, loading a .env file if
// one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("ENTANGLE_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	port, err := getEnvInt("ENTANGLE_PORT", 8080)
	if err != nil {
		return nil, err
	}

	strategy := entanglement.Strategy(getEnv("ENTANGLE_STRATEGY", string(entanglement.StrategyMutualInformation)))
	if !strategy.Valid() {
		return nil, fmt.Errorf("invalid ENTANGLE_STRATEGY %q", strategy)
	}

	logBase := entanglement.LogBase(getEnv("ENTANGLE_LOG_BASE", string(entanglement.Base2)))
	if !logBase.Valid() {
		return nil, fmt.Errorf("invalid ENTANGLE_LOG_BASE %q (want \"2\" or \"e\")", logBase)
	}

	eigenTol, err := getEnvFloat("ENTANGLE_EIGEN_TOL", entanglement.DefaultEigenTolerance)
	if err != nil {
		return nil, err
	}
	if eigenTol <= 0 {
		return nil, fmt.Errorf("ENTANGLE_EIGEN_TOL must be positive, got %g", eigenTol)
	}

	stateTol, err := getEnvFloat("ENTANGLE_STATE_TOL", 1e-6)
	if err != nil {
		return nil, err
	}

	retentionDays, err := getEnvInt("ENTANGLE_RETENTION_DAYS", 30)
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir:        absDataDir,
		Port:           port,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnv("DEV_MODE", "false") == "true",
		Strategy:       strategy,
		LogBase:        logBase,
		EigenTolerance: eigenTol,
		StateTolerance: stateTol,
		RetentionDays:  retentionDays,
	}, nil
}

// DatabasePath returns the results database location inside the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "filtrations.db")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}
