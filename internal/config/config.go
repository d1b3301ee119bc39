package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"file-conversion-server/internal/domain"
)

const (
	defaultMaxFileSize int64 = 10 * 1024 * 1024
	defaultMaxFiles          = 10
	defaultRatesURL          = "https://api.exchangerate-api.com/v4/latest/USD"

	// maxFilesLimit caps MAX_FILES. Array uploads never take more parts.
	maxFilesLimit = 10
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort      string
	MaxFileSize     int64
	MaxFiles        int
	LogLevel        string
	AllowedOrigins  []string
	RatesURL        string
	RatesTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// PaaS runtimes provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:      getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "3001")),
		MaxFileSize:     getEnvInt64OrDefault("MAX_FILE_SIZE", defaultMaxFileSize), // 10MB default
		MaxFiles:        min(int(getEnvInt64OrDefault("MAX_FILES", defaultMaxFiles)), maxFilesLimit),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		AllowedOrigins:  getEnvListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RatesURL:        getEnvOrDefault("RATES_URL", defaultRatesURL),
		RatesTimeout:    getEnvDurationOrDefault("RATES_TIMEOUT", 5*time.Second),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed size of a single uploaded file
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetMaxFiles returns the maximum number of parts in an array upload
func (c *AppConfig) GetMaxFiles() int {
	return c.MaxFiles
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetRatesURL returns the live exchange rate endpoint
func (c *AppConfig) GetRatesURL() string {
	return c.RatesURL
}

// GetRatesTimeout returns the live exchange rate request timeout
func (c *AppConfig) GetRatesTimeout() time.Duration {
	return c.RatesTimeout
}

// GetShutdownTimeout returns the graceful shutdown budget
func (c *AppConfig) GetShutdownTimeout() time.Duration {
	return c.ShutdownTimeout
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
