package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultMaxUploadSize = 50 * 1024 * 1024 // 50MB per request
	DefaultOCRLanguages  = "spa+eng"
	DefaultOCRPages      = 3
	DefaultOCRDPI        = 300
	DefaultTextThreshold = 50
	DefaultPreviewDPI    = 150
	DefaultPreviewPages  = 5
	DefaultSessionTTL    = 30 * time.Minute
	DefaultWorkers       = 4

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the docrename tooling. The same
// struct feeds the CLI, the HTTP server and the MCP server; each binary
// only reads the fields it needs.
type Config struct {
	// Server configuration
	Host string
	Port int

	// Document source directory (CLI and MCP modes)
	Directory string

	// Upload limits (server mode)
	MaxUploadSize int64

	// Text acquisition
	OCRLanguages  string
	OCRPages      int
	OCRDPI        int
	TextThreshold int
	PdftoppmPath  string
	TesseractPath string

	// Preview rendering
	PreviewDPI   int
	PreviewPages int

	// Sessions
	SessionTTL time.Duration
	Workers    int

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		Directory:     currentDir,
		MaxUploadSize: DefaultMaxUploadSize,
		OCRLanguages:  DefaultOCRLanguages,
		OCRPages:      DefaultOCRPages,
		OCRDPI:        DefaultOCRDPI,
		TextThreshold: DefaultTextThreshold,
		PdftoppmPath:  "pdftoppm",
		TesseractPath: "tesseract",
		PreviewDPI:    DefaultPreviewDPI,
		PreviewPages:  DefaultPreviewPages,
		SessionTTL:    DefaultSessionTTL,
		Workers:       DefaultWorkers,
		Version:       "1.0.0",
		ServerName:    "docrename",
		LogLevel:      DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.Directory != "" {
		if expandedPath, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("DOCRENAME")
	viper.AutomaticEnv()

	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.Directory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxuploadsize", cfg.MaxUploadSize)
	viper.SetDefault("ocrlanguages", cfg.OCRLanguages)
	viper.SetDefault("ocrpages", cfg.OCRPages)
	viper.SetDefault("ocrdpi", cfg.OCRDPI)
	viper.SetDefault("textthreshold", cfg.TextThreshold)
	viper.SetDefault("previewdpi", cfg.PreviewDPI)
	viper.SetDefault("previewpages", cfg.PreviewPages)
	viper.SetDefault("sessionttl", cfg.SessionTTL)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("pdftoppm", cfg.PdftoppmPath)
	viper.SetDefault("tesseract", cfg.TesseractPath)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("host", cfg.Host, "Server host address")
	pflag.Int("port", cfg.Port, "Server port")
	pflag.String("dir", cfg.Directory, "Directory containing PDF files")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxuploadsize", cfg.MaxUploadSize, "Maximum upload size in bytes")
	pflag.String("ocrlanguages", cfg.OCRLanguages, "Tesseract language spec for OCR")
	pflag.Int("ocrpages", cfg.OCRPages, "Maximum pages to OCR per document")
	pflag.Int("ocrdpi", cfg.OCRDPI, "Raster resolution for OCR")
	pflag.Int("textthreshold", cfg.TextThreshold, "Minimum digital text length before falling back to OCR")
	pflag.Int("previewdpi", cfg.PreviewDPI, "Raster resolution for page previews")
	pflag.Int("previewpages", cfg.PreviewPages, "Maximum pages available for preview per document")
	pflag.Duration("sessionttl", cfg.SessionTTL, "Idle session lifetime")
	pflag.Int("workers", cfg.Workers, "Concurrent documents processed per batch")
	pflag.String("pdftoppm", cfg.PdftoppmPath, "Path to the pdftoppm binary")
	pflag.String("tesseract", cfg.TesseractPath, "Path to the tesseract binary")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"host", "port", "dir", "loglevel", "maxuploadsize",
		"ocrlanguages", "ocrpages", "ocrdpi", "textthreshold",
		"previewdpi", "previewpages", "sessionttl", "workers",
		"pdftoppm", "tesseract",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ndocrename - renombrado de documentos PDF de salud ocupacional\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  DOCRENAME_HOST           Server host\n")
		fmt.Fprintf(os.Stderr, "  DOCRENAME_PORT           Server port\n")
		fmt.Fprintf(os.Stderr, "  DOCRENAME_DIR            PDF directory\n")
		fmt.Fprintf(os.Stderr, "  DOCRENAME_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  DOCRENAME_MAXUPLOADSIZE  Maximum upload size\n")
		fmt.Fprintf(os.Stderr, "  DOCRENAME_OCRLANGUAGES   Tesseract languages\n")
		fmt.Fprintf(os.Stderr, "  DOCRENAME_SESSIONTTL     Idle session lifetime\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.Directory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxUploadSize = viper.GetInt64("maxuploadsize")
	cfg.OCRLanguages = viper.GetString("ocrlanguages")
	cfg.OCRPages = viper.GetInt("ocrpages")
	cfg.OCRDPI = viper.GetInt("ocrdpi")
	cfg.TextThreshold = viper.GetInt("textthreshold")
	cfg.PreviewDPI = viper.GetInt("previewdpi")
	cfg.PreviewPages = viper.GetInt("previewpages")
	cfg.SessionTTL = viper.GetDuration("sessionttl")
	cfg.Workers = viper.GetInt("workers")
	cfg.PdftoppmPath = viper.GetString("pdftoppm")
	cfg.TesseractPath = viper.GetString("tesseract")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if c.Directory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.Directory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.Directory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.Directory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.Directory, err)
	}

	if c.MaxUploadSize <= 0 {
		return errors.New("maximum upload size must be positive")
	}
	if c.OCRPages < 1 {
		return errors.New("OCR page count must be positive")
	}
	if c.OCRDPI < 72 {
		return errors.New("OCR resolution must be at least 72 DPI")
	}
	if c.TextThreshold < 0 {
		return errors.New("text threshold cannot be negative")
	}
	if c.PreviewDPI < 72 {
		return errors.New("preview resolution must be at least 72 DPI")
	}
	if c.PreviewPages < 1 {
		return errors.New("preview page count must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.Workers < 1 {
		return errors.New("worker count must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, Directory: %s, LogLevel: %s, MaxUploadSize: %d, Workers: %d}",
		c.Host, c.Port, c.Directory, c.LogLevel, c.MaxUploadSize, c.Workers)
}
