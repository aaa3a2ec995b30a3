// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for databases and model bundles, always absolute
	Port               int
	DevMode            bool
	LogLevel           string
	JWTSecret          string
	TokenTTLHours      int
	ProfileBundlePath  string // Profile-variant classifier bundle (risk/behavior/goal)
	RTCBundlePath      string // RTC-variant classifier bundle (risk/tenure/capital)
	ArtifactReloadSpec string // Cron spec for the artifact reload check
	CheckpointSpec     string // Cron spec for the WAL checkpoint job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ADVISOR_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		Port:               getEnvAsInt("PORT", 5050),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenTTLHours:      getEnvAsInt("TOKEN_TTL_HOURS", 24),
		ProfileBundlePath:  getEnv("PROFILE_BUNDLE_PATH", filepath.Join(absDataDir, "recommendation_model.msgpack")),
		RTCBundlePath:      getEnv("RTC_BUNDLE_PATH", filepath.Join(absDataDir, "risk_tenure_capital_model.msgpack")),
		ArtifactReloadSpec: getEnv("ARTIFACT_RELOAD_SPEC", "@every 1m"),
		CheckpointSpec:     getEnv("WAL_CHECKPOINT_SPEC", "@every 6h"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AppDatabasePath returns the path of the main application database
func (c *Config) AppDatabasePath() string {
	return filepath.Join(c.DataDir, "app.db")
}

// CatalogDatabasePath returns the path of the investment catalog database
func (c *Config) CatalogDatabasePath() string {
	return filepath.Join(c.DataDir, "catalog.db")
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
