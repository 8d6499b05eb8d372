package config

import (
	"fmt"
	"os"

	"vatex/internal/logger"
)

type Config struct {
	// Template Configuration
	TemplatesDir string

	// Output Configuration
	OutputDir string

	// Declaration Defaults
	DefaultSubmitter string

	// User Settings Persistence
	SettingsFile string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		TemplatesDir:     getEnv("VATEX_TEMPLATES_DIR", "./templates"),
		OutputDir:        getEnv("VATEX_OUTPUT_DIR", "."),
		DefaultSubmitter: getEnv("VATEX_DEFAULT_SUBMITTER", ""),
		SettingsFile:     getEnv("VATEX_SETTINGS_FILE", "./vatex_settings.json"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:    getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:        getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.TemplatesDir == "" {
		return fmt.Errorf("VATEX_TEMPLATES_DIR must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("VATEX_OUTPUT_DIR must not be empty")
	}
	if c.SettingsFile == "" {
		return fmt.Errorf("VATEX_SETTINGS_FILE must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
