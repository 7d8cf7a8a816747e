// Package config provides configuration loading for the document corrector.
// Supports YAML files, .env files, environment variables and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spherical/doc-corrector/internal/domain"
)

// Config holds all configuration for the corrector.
type Config struct {
	Credentials   CredentialsConfig   `yaml:"credentials"`
	Paths         PathsConfig         `yaml:"paths"`
	OCR           OCRConfig           `yaml:"ocr"`
	Correction    CorrectionConfig    `yaml:"correction"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// CredentialsConfig holds the external service keys.
type CredentialsConfig struct {
	GoogleAPIKey string `yaml:"google_api_key"`
	CohereAPIKey string `yaml:"cohere_api_key"`
}

// PathsConfig holds the working and output directories.
type PathsConfig struct {
	UploadDir    string `yaml:"upload_dir"`
	ProcessedDir string `yaml:"processed_dir"`
}

// OCRConfig holds vision service settings.
type OCRConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	DPI         int           `yaml:"dpi"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// CorrectionConfig holds generation service settings.
type CorrectionConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	MaxChars    int           `yaml:"max_chars"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from an optional YAML file, then .env, then the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read is Load without validation, for commands that need no credentials.
func Read(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
	}

	_ = godotenv.Load() // Ignore error if .env doesn't exist

	applyEnvOverrides(cfg)

	return cfg, nil
}

// DefaultConfig returns a configuration with defaults matching the hosted services.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			UploadDir:    "uploads",
			ProcessedDir: "processed",
		},
		OCR: OCRConfig{
			Endpoint: "https://vision.googleapis.com/",
			DPI:      200,
		},
		Correction: CorrectionConfig{
			Endpoint:    "https://api.cohere.ai/v1/generate",
			Model:       "command-r-08-2024",
			MaxTokens:   1000,
			Temperature: 0.3,
			MaxChars:    3000,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors. Missing credentials fail here,
// before any file is touched.
func (c *Config) Validate() error {
	if c.Credentials.GoogleAPIKey == "" {
		return domain.ConfigError("GOOGLE_API_KEY is not set", nil)
	}
	if c.Credentials.CohereAPIKey == "" {
		return domain.ConfigError("COHERE_API_KEY is not set", nil)
	}
	if c.Paths.UploadDir == "" || c.Paths.ProcessedDir == "" {
		return domain.ConfigError("upload_dir and processed_dir are required", nil)
	}
	if c.OCR.DPI < domain.MinDPI || c.OCR.DPI > domain.MaxDPI {
		return domain.ConfigError(fmt.Sprintf("ocr.dpi must be between %d and %d, got %d", domain.MinDPI, domain.MaxDPI, c.OCR.DPI), nil)
	}
	if c.Correction.MaxChars <= 0 {
		return domain.ConfigError(fmt.Sprintf("correction.max_chars must be positive, got %d", c.Correction.MaxChars), nil)
	}
	if c.Correction.MaxTokens <= 0 {
		return domain.ConfigError(fmt.Sprintf("correction.max_tokens must be positive, got %d", c.Correction.MaxTokens), nil)
	}
	if c.Correction.Temperature < 0 || c.Correction.Temperature > 5 {
		return domain.ConfigError(fmt.Sprintf("correction.temperature must be between 0 and 5, got %g", c.Correction.Temperature), nil)
	}
	if c.Correction.Model == "" {
		return domain.ConfigError("correction.model is required", nil)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Credentials.GoogleAPIKey = v
	}

	if v := os.Getenv("COHERE_API_KEY"); v != "" {
		cfg.Credentials.CohereAPIKey = v
	}

	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.Paths.UploadDir = v
	}

	if v := os.Getenv("PROCESSED_DIR"); v != "" {
		cfg.Paths.ProcessedDir = v
	}

	if v := os.Getenv("COHERE_MODEL"); v != "" {
		cfg.Correction.Model = v
	}

	if v := os.Getenv("CHUNK_MAX_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Correction.MaxChars = n
		}
	}

	if v := os.Getenv("OCR_DPI"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.OCR.DPI = n
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// Logger builds the process logger from the observability settings.
func (c *Config) Logger(verbose bool) *domain.Logger {
	level := c.Observability.LogLevel
	if verbose {
		level = "debug"
	}
	return domain.NewLogger(domain.LogConfig{
		Level:  level,
		Format: c.Observability.LogFormat,
	})
}
