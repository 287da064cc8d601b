package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gowelch/domain/stats"
	"gowelch/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
	Batch    BatchConfig
}

// DatabaseConfig holds database connection settings. An empty URL selects the
// in-memory analysis store.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database connection should be opened.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	MaxUploadMB int
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// AnalysisConfig holds the defaults applied to requests that omit them.
type AnalysisConfig struct {
	ReportingLevel stats.ConfidenceLevel
	FanLevels      []stats.ConfidenceLevel
	PValueMode     stats.PValueMode
}

// BatchConfig bounds concurrent evaluation of batch requests.
type BatchConfig struct {
	Concurrency int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Server:   *loadServerConfig(),
		Batch:    BatchConfig{Concurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 8)},
	}

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", GinMode: "release", MaxUploadMB: 10},
		Analysis: AnalysisConfig{
			ReportingLevel: stats.DefaultReportingLevel,
			FanLevels:      []stats.ConfidenceLevel{0.5, 0.8, 0.95},
			PValueMode:     stats.PValueNormal,
		},
		Batch: BatchConfig{Concurrency: 8},
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "release"),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 10),
	}
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	fan, err := stats.ParseLevels(getEnvOrDefault("FAN_LEVELS", "0.5,0.8,0.95"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("FAN_LEVELS: %w", err))
	}

	return &AnalysisConfig{
		ReportingLevel: stats.ConfidenceLevel(getEnvFloatOrDefault("REPORTING_LEVEL", float64(stats.DefaultReportingLevel))),
		FanLevels:      fan,
		PValueMode:     stats.PValueMode(strings.ToLower(getEnvOrDefault("PVALUE_MODE", string(stats.PValueNormal)))),
	}, nil
}

// Validate checks cross-field constraints and returns CONFIG_INVALID errors.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("PORT must be numeric, got %q", c.Server.Port))
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("GIN_MODE must be debug, release or test, got %q", c.Server.GinMode))
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if err := c.Analysis.ReportingLevel.Validate(); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("REPORTING_LEVEL: %v", err))
	}
	if len(c.Analysis.FanLevels) == 0 {
		return errors.ConfigInvalid("FAN_LEVELS must name at least one level")
	}
	if !c.Analysis.PValueMode.Valid() {
		return errors.ConfigInvalid(fmt.Sprintf("PVALUE_MODE must be %q or %q, got %q",
			stats.PValueNormal, stats.PValueStudentT, c.Analysis.PValueMode))
	}
	if c.Batch.Concurrency < 1 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be at least 1")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
