package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"tablesift/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Extract  ExtractConfig
	Loader   LoaderConfig
	LogLevel string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	Schema          string
	InsertBatchSize int
}

// ExtractConfig holds table extraction settings
type ExtractConfig struct {
	NamePolicy string
	Workers    int
	MaxRows    int
}

// LoaderConfig holds spreadsheet reading settings
type LoaderConfig struct {
	RawValues  bool
	FillMerged bool
}

// Load reads configuration from environment variables, after merging a .env
// file when one is present, and validates it
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only
func FromEnv() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Schema:          getEnvOrDefault("UPLOAD_SCHEMA", "uploads"),
			InsertBatchSize: getEnvIntOrDefault("INSERT_BATCH_SIZE", 500),
		},
		Extract: ExtractConfig{
			NamePolicy: strings.ToLower(getEnvOrDefault("NAME_POLICY", "last-wins")),
			Workers:    getEnvIntOrDefault("EXTRACT_WORKERS", 4),
			MaxRows:    getEnvIntOrDefault("MAX_ROWS", 1000000),
		},
		Loader: LoaderConfig{
			RawValues:  getEnvBoolOrDefault("LOADER_RAW_VALUES", true),
			FillMerged: getEnvBoolOrDefault("LOADER_FILL_MERGED", false),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// RequireDatabase reports a config error when no DATABASE_URL is set.
// Only commands that store tables call it.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	return nil
}

func validateConfig(config *Config) error {
	switch config.Extract.NamePolicy {
	case "last-wins", "suffix":
	default:
		return errors.ConfigInvalid("NAME_POLICY must be last-wins or suffix, got " + config.Extract.NamePolicy)
	}
	if config.Extract.Workers < 1 {
		return errors.ConfigInvalid("EXTRACT_WORKERS must be positive")
	}
	if config.Extract.MaxRows < 1 {
		return errors.ConfigInvalid("MAX_ROWS must be positive")
	}
	if config.Database.InsertBatchSize < 1 {
		return errors.ConfigInvalid("INSERT_BATCH_SIZE must be positive")
	}
	if config.Database.Schema == "" {
		return errors.ConfigInvalid("UPLOAD_SCHEMA must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
