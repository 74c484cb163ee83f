package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"vbtlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Generation GenerationConfig
	Export     ExportConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// GenerationConfig holds the default generation parameters. Individual
// requests may override them.
type GenerationConfig struct {
	ParticipantCount int
	Seed             int64
	StudyStartDate   time.Time
}

// ExportConfig holds artifact output settings
type ExportConfig struct {
	OutputDir string
	Formats   []string
}

const studyStartLayout = "2006-01-02"

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = *loadServerConfig()

	genConfig, err := loadGenerationConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load generation configuration")
	}
	config.Generation = *genConfig

	config.Export = *loadExportConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:     url,
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadGenerationConfig() (*GenerationConfig, error) {
	startStr := getEnvOrDefault("VBT_STUDY_START", "2025-01-01")
	start, err := time.Parse(studyStartLayout, startStr)
	if err != nil {
		return nil, errors.ConfigInvalid("VBT_STUDY_START must be formatted as YYYY-MM-DD")
	}

	return &GenerationConfig{
		ParticipantCount: getEnvIntOrDefault("VBT_PARTICIPANTS", 100),
		Seed:             getEnvInt64OrDefault("VBT_SEED", 42),
		StudyStartDate:   start,
	}, nil
}

func loadExportConfig() *ExportConfig {
	formats := strings.Split(getEnvOrDefault("VBT_FORMATS", "csv,xlsx,json"), ",")
	for i := range formats {
		formats[i] = strings.TrimSpace(formats[i])
	}

	return &ExportConfig{
		OutputDir: getEnvOrDefault("VBT_OUTPUT_DIR", "./output"),
		Formats:   formats,
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Generation.ParticipantCount <= 0 {
		return errors.ConfigInvalid("participant count must be positive")
	}
	if len(config.Export.Formats) == 0 {
		return errors.ConfigInvalid("at least one export format is required")
	}
	for _, f := range config.Export.Formats {
		switch f {
		case "csv", "xlsx", "json":
		default:
			return errors.ConfigInvalid("unsupported export format: " + f)
		}
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

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
