package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Directory = t.TempDir()
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}
	if cfg.MaxUploadSize != 50*1024*1024 {
		t.Errorf("Expected default max upload size to be 50MB, got %d", cfg.MaxUploadSize)
	}
	if cfg.OCRLanguages != "spa+eng" {
		t.Errorf("Expected default OCR languages to be 'spa+eng', got '%s'", cfg.OCRLanguages)
	}
	if cfg.OCRPages != 3 {
		t.Errorf("Expected default OCR page cap to be 3, got %d", cfg.OCRPages)
	}
	if cfg.TextThreshold != 50 {
		t.Errorf("Expected default text threshold to be 50, got %d", cfg.TextThreshold)
	}
	if cfg.PreviewDPI != 150 {
		t.Errorf("Expected default preview DPI to be 150, got %d", cfg.PreviewDPI)
	}
	if cfg.PreviewPages != 5 {
		t.Errorf("Expected default preview page cap to be 5, got %d", cfg.PreviewPages)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected default session TTL to be 30m, got %v", cfg.SessionTTL)
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected default worker count to be 4, got %d", cfg.Workers)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.ServerName != "docrename" {
		t.Errorf("Expected default server name to be 'docrename', got '%s'", cfg.ServerName)
	}

	// The document directory defaults to the current working directory.
	currentDir, _ := os.Getwd()
	if cfg.Directory != currentDir {
		t.Errorf("Expected default directory to be '%s', got '%s'", currentDir, cfg.Directory)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "invalid port - too low",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "empty directory",
			mutate:  func(c *Config) { c.Directory = "" },
			wantErr: true,
		},
		{
			name:    "invalid max upload size",
			mutate:  func(c *Config) { c.MaxUploadSize = 0 },
			wantErr: true,
		},
		{
			name:    "invalid OCR page cap",
			mutate:  func(c *Config) { c.OCRPages = 0 },
			wantErr: true,
		},
		{
			name:    "OCR resolution below 72 DPI",
			mutate:  func(c *Config) { c.OCRDPI = 60 },
			wantErr: true,
		},
		{
			name:    "negative text threshold",
			mutate:  func(c *Config) { c.TextThreshold = -1 },
			wantErr: true,
		},
		{
			name:    "zero text threshold allowed",
			mutate:  func(c *Config) { c.TextThreshold = 0 },
			wantErr: false,
		},
		{
			name:    "preview resolution below 72 DPI",
			mutate:  func(c *Config) { c.PreviewDPI = 10 },
			wantErr: true,
		},
		{
			name:    "invalid preview page cap",
			mutate:  func(c *Config) { c.PreviewPages = 0 },
			wantErr: true,
		},
		{
			name:    "invalid session TTL",
			mutate:  func(c *Config) { c.SessionTTL = 0 },
			wantErr: true,
		},
		{
			name:    "invalid worker count",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesMissingDirectory(t *testing.T) {
	cfg := validConfig(t)
	cfg.Directory = cfg.Directory + "/nested/pdfs"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() should create a missing directory, got error: %v", err)
	}
	if _, err := os.Stat(cfg.Directory); err != nil {
		t.Errorf("Directory was not created: %v", err)
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{
		Host: "192.168.1.1",
		Port: 9090,
	}

	expected := "192.168.1.1:9090"
	if got := cfg.Address(); got != expected {
		t.Errorf("Config.Address() = %v, want %v", got, expected)
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		logLevel string
		want     bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"error", false},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Host:          "localhost",
		Port:          8080,
		Directory:     "/home/user/pdfs",
		LogLevel:      "debug",
		MaxUploadSize: 1024,
		Workers:       2,
	}

	result := cfg.String()

	expectedSubstrings := []string{
		"Host: localhost",
		"Port: 8080",
		"Directory: /home/user/pdfs",
		"LogLevel: debug",
		"MaxUploadSize: 1024",
		"Workers: 2",
	}
	for _, substr := range expectedSubstrings {
		if !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}
}

func TestConfigValidateLogLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error"}
	invalidLevels := []string{"DEBUG", "INFO", "trace", "fatal", ""}

	for _, level := range validLevels {
		t.Run("valid_"+level, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.LogLevel = level
			if err := cfg.Validate(); err != nil {
				t.Errorf("Config.Validate() should accept log level '%s', got error: %v", level, err)
			}
		})
	}

	for _, level := range invalidLevels {
		t.Run("invalid_"+level, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.LogLevel = level
			if err := cfg.Validate(); err == nil {
				t.Errorf("Config.Validate() should reject log level '%s'", level)
			}
		})
	}
}
