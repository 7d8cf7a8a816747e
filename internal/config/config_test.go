package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/doc-corrector/internal/domain"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("COHERE_API_KEY", "c-key")
}

func TestLoad_Defaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "g-key", cfg.Credentials.GoogleAPIKey)
	assert.Equal(t, "c-key", cfg.Credentials.CohereAPIKey)
	assert.Equal(t, "uploads", cfg.Paths.UploadDir)
	assert.Equal(t, "processed", cfg.Paths.ProcessedDir)
	assert.Equal(t, 200, cfg.OCR.DPI)
	assert.Equal(t, "command-r-08-2024", cfg.Correction.Model)
	assert.Equal(t, 1000, cfg.Correction.MaxTokens)
	assert.InDelta(t, 0.3, cfg.Correction.Temperature, 1e-9)
	assert.Equal(t, 3000, cfg.Correction.MaxChars)
}

func TestLoad_MissingCredentialsFailsFast(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("COHERE_API_KEY", "c-key")

	_, err := Load("")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConfig, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")

	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("COHERE_API_KEY", "")

	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COHERE_API_KEY")
}

func TestRead_SkipsValidation(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("COHERE_API_KEY", "")
	t.Setenv("UPLOAD_DIR", "/tmp/in")

	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/in", cfg.Paths.UploadDir)
	assert.Error(t, cfg.Validate())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	setCredentials(t)
	t.Setenv("CHUNK_MAX_CHARS", "1500")

	path := filepath.Join(t.TempDir(), "corrector.yaml")
	yamlDoc := `
paths:
  upload_dir: /srv/in
  processed_dir: /srv/out
correction:
  model: command-r-plus
  max_chars: 2000
  http_timeout: 45s
observability:
  log_format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/in", cfg.Paths.UploadDir)
	assert.Equal(t, "/srv/out", cfg.Paths.ProcessedDir)
	assert.Equal(t, "command-r-plus", cfg.Correction.Model)
	assert.Equal(t, 1500, cfg.Correction.MaxChars, "env wins over file")
	assert.Equal(t, "45s", cfg.Correction.HTTPTimeout.String())
	assert.Equal(t, "json", cfg.Observability.LogFormat)
	assert.Equal(t, 1000, cfg.Correction.MaxTokens, "untouched fields keep defaults")
}

func TestLoad_OutOfRangeDPIFailsAtStartup(t *testing.T) {
	setCredentials(t)
	t.Setenv("OCR_DPI", "20")

	_, err := Load("")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConfig, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "ocr.dpi")
}

func TestLoad_BadFile(t *testing.T) {
	setCredentials(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, domain.ErrorTypeConfig, domain.TypeOf(err))

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [unterminated"), 0o644))
	_, err = Load(path)
	assert.Equal(t, domain.ErrorTypeConfig, domain.TypeOf(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max chars", func(c *Config) { c.Correction.MaxChars = 0 }},
		{"zero max tokens", func(c *Config) { c.Correction.MaxTokens = 0 }},
		{"negative temperature", func(c *Config) { c.Correction.Temperature = -0.1 }},
		{"zero dpi", func(c *Config) { c.OCR.DPI = 0 }},
		{"dpi below rasterizer range", func(c *Config) { c.OCR.DPI = 20 }},
		{"dpi above rasterizer range", func(c *Config) { c.OCR.DPI = 2400 }},
		{"empty model", func(c *Config) { c.Correction.Model = "" }},
		{"empty processed dir", func(c *Config) { c.Paths.ProcessedDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Credentials = CredentialsConfig{GoogleAPIKey: "g", CohereAPIKey: "c"}
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
