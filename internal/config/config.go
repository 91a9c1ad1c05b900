package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kurihiro0119/commit-cadence/internal/stats"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken string

	// Storage
	StorageType string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string
	SnapshotDir string

	// Logging
	LogLevel string

	// Analytics
	DefaultDays       int
	AggregatorWorkers int
	Regularity        stats.RegularityConfig
}

// Load loads the configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		GitHubToken:       v.GetString("GITHUB_TOKEN"),
		StorageType:       strings.ToLower(v.GetString("STORAGE_TYPE")),
		SQLitePath:        v.GetString("SQLITE_PATH"),
		PostgresURL:       v.GetString("POSTGRES_URL"),
		APIPort:           v.GetString("API_PORT"),
		APIHost:           v.GetString("API_HOST"),
		APIEndpoint:       v.GetString("API_ENDPOINT"),
		SnapshotDir:       v.GetString("SNAPSHOT_DIR"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		DefaultDays:       v.GetInt("DEFAULT_DAYS"),
		AggregatorWorkers: v.GetInt("AGGREGATOR_WORKERS"),
		Regularity: stats.RegularityConfig{
			BucketWidthDays: v.GetInt("REGULARITY_BUCKET_WIDTH_DAYS"),
			ActivityWeight:  v.GetFloat64("REGULARITY_ACTIVITY_WEIGHT"),
			CoverageWeight:  v.GetFloat64("REGULARITY_COVERAGE_WEIGHT"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORAGE_TYPE", "sqlite")
	v.SetDefault("SQLITE_PATH", "./cadence.db")
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("API_HOST", "localhost")
	v.SetDefault("API_ENDPOINT", "http://localhost:8080")
	v.SetDefault("SNAPSHOT_DIR", "static")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEFAULT_DAYS", 360)
	v.SetDefault("AGGREGATOR_WORKERS", 4)
	v.SetDefault("REGULARITY_BUCKET_WIDTH_DAYS", stats.DefaultBucketWidthDays)
	v.SetDefault("REGULARITY_ACTIVITY_WEIGHT", stats.DefaultActivityWeight)
	v.SetDefault("REGULARITY_COVERAGE_WEIGHT", stats.DefaultCoverageWeight)
}

// Validate validates the configuration used by every command
func (c *Config) Validate() error {
	if c.StorageType != "sqlite" && c.StorageType != "postgres" {
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'sqlite' or 'postgres'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	if c.DefaultDays < 1 || c.DefaultDays > 365 {
		return &ConfigError{Field: "DEFAULT_DAYS", Message: "must be between 1 and 365"}
	}
	if c.AggregatorWorkers < 1 {
		return &ConfigError{Field: "AGGREGATOR_WORKERS", Message: "must be at least 1"}
	}
	if err := c.Regularity.Validate(); err != nil {
		return &ConfigError{Field: "REGULARITY", Message: err.Error()}
	}
	return nil
}

// ValidateCollector validates the settings needed to talk to GitHub
func (c *Config) ValidateCollector() error {
	if c.GitHubToken == "" {
		return &ConfigError{Field: "GITHUB_TOKEN", Message: "GitHub token is required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
