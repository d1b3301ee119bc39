package config

import (
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("MAX_FILE_SIZE", "")
	t.Setenv("MAX_FILES", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("RATES_URL", "")
	t.Setenv("RATES_TIMEOUT", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")

	cfg := NewConfig()

	if cfg.GetServerPort() != "3001" {
		t.Fatalf("expected default server port 3001, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetMaxFiles() != 10 {
		t.Fatalf("expected default max files 10, got %d", cfg.GetMaxFiles())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if origins := cfg.GetAllowedOrigins(); len(origins) != 1 || origins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected default origins: %v", origins)
	}
	if cfg.GetRatesURL() != defaultRatesURL {
		t.Fatalf("expected default rates url, got %s", cfg.GetRatesURL())
	}
	if cfg.GetRatesTimeout() != 5*time.Second {
		t.Fatalf("expected default rates timeout 5s, got %s", cfg.GetRatesTimeout())
	}
	if cfg.GetShutdownTimeout() != 10*time.Second {
		t.Fatalf("expected default shutdown timeout 10s, got %s", cfg.GetShutdownTimeout())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("MAX_FILE_SIZE", "12345")
	t.Setenv("MAX_FILES", "4")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATES_URL", "http://127.0.0.1:1/rates")
	t.Setenv("RATES_TIMEOUT", "250ms")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != 12345 {
		t.Fatalf("expected max file size 12345, got %d", cfg.GetMaxFileSize())
	}
	if cfg.GetMaxFiles() != 4 {
		t.Fatalf("expected max files 4, got %d", cfg.GetMaxFiles())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	origins := cfg.GetAllowedOrigins()
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", origins)
	}
	if cfg.GetRatesURL() != "http://127.0.0.1:1/rates" {
		t.Fatalf("unexpected rates url %s", cfg.GetRatesURL())
	}
	if cfg.GetRatesTimeout() != 250*time.Millisecond {
		t.Fatalf("expected rates timeout 250ms, got %s", cfg.GetRatesTimeout())
	}
	if cfg.GetShutdownTimeout() != 3*time.Second {
		t.Fatalf("expected shutdown timeout 3s, got %s", cfg.GetShutdownTimeout())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("MAX_FILES", "-3")
	t.Setenv("RATES_TIMEOUT", "soon")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetMaxFiles() != defaultMaxFiles {
		t.Fatalf("expected default max files, got %d", cfg.GetMaxFiles())
	}
	if cfg.GetRatesTimeout() != 5*time.Second {
		t.Fatalf("expected default rates timeout, got %s", cfg.GetRatesTimeout())
	}
}

func TestNewConfig_MaxFilesClamped(t *testing.T) {
	for _, v := range []string{"11", "500"} {
		t.Setenv("MAX_FILES", v)
		if got := NewConfig().GetMaxFiles(); got != maxFilesLimit {
			t.Fatalf("MAX_FILES=%s: expected %d, got %d", v, maxFilesLimit, got)
		}
	}
	t.Setenv("MAX_FILES", "10")
	if got := NewConfig().GetMaxFiles(); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestNewContainerWithConfig(t *testing.T) {
	cfg := &AppConfig{
		ServerPort:      "0",
		MaxFileSize:     1024,
		MaxFiles:        2,
		LogLevel:        "error",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RatesURL:        "http://127.0.0.1:1",
		RatesTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}

	c := NewContainerWithConfig(cfg)
	if c.GetConfig() != cfg || c.GetLogger() == nil {
		t.Fatalf("expected config and logger to be set")
	}
	if c.Dispatcher == nil || c.RatesService == nil || c.OperationHandler == nil || c.RatesHandler == nil {
		t.Fatalf("expected every component to be wired: %+v", c)
	}
}
