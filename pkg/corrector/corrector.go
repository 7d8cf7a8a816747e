// Package corrector is the public entry point of the document correction pipeline.
package corrector

import (
	"context"

	"github.com/spherical/doc-corrector/internal/config"
	"github.com/spherical/doc-corrector/internal/docx"
	"github.com/spherical/doc-corrector/internal/domain"
	"github.com/spherical/doc-corrector/internal/extract"
	"github.com/spherical/doc-corrector/internal/llm"
	"github.com/spherical/doc-corrector/internal/ocr"
	"github.com/spherical/doc-corrector/internal/pdf"
)

// Re-export event types for public API
type (
	StreamEvent = domain.StreamEvent
	EventType   = domain.EventType
	Config      = config.Config
)

// Event type constants
const (
	EventStart           = domain.EventStart
	EventExtracted       = domain.EventExtracted
	EventChunkCorrecting = domain.EventChunkCorrecting
	EventChunkComplete   = domain.EventChunkComplete
	EventError           = domain.EventError
	EventComplete        = domain.EventComplete
)

// Processing modes
const (
	ModeDigital = string(domain.ModeDigital)
	ModeOCR     = string(domain.ModeOCR)
)

// DefaultInstruction is the correction prompt used when none is given.
const DefaultInstruction = "Corrija o texto mantendo formatação e ortografia."

// Client is the main entry point for the corrector library
type Client struct {
	service *extract.Service
}

// NewClient loads configuration from configPath (optional), .env and the
// environment, and builds a client.
func NewClient(ctx context.Context, configPath string) (*Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(ctx, cfg, cfg.Logger(false))
}

// NewClientWithConfig creates a client from an explicit configuration
func NewClientWithConfig(ctx context.Context, cfg *config.Config, logger *domain.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = domain.DefaultLogger
	}

	ocrClient, err := ocr.NewClient(ctx, ocr.Config{
		APIKey:   cfg.Credentials.GoogleAPIKey,
		Endpoint: cfg.OCR.Endpoint,
		Timeout:  cfg.OCR.HTTPTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	temperature := cfg.Correction.Temperature
	llmClient, err := llm.NewClient(cfg.Credentials.CohereAPIKey, llm.Config{
		Endpoint:    cfg.Correction.Endpoint,
		Model:       cfg.Correction.Model,
		MaxTokens:   cfg.Correction.MaxTokens,
		Temperature: &temperature,
		Timeout:     cfg.Correction.HTTPTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	service := extract.NewService(extract.Dependencies{
		Extractor:  extract.NewDigitalExtractor(logger),
		Rasterizer: pdf.NewConverter(cfg.OCR.DPI, logger),
		OCR:        ocrClient,
		Corrector:  llmClient,
		Writer:     docx.NewWriter(logger),
	}, extract.Options{
		UploadDir:    cfg.Paths.UploadDir,
		ProcessedDir: cfg.Paths.ProcessedDir,
		MaxChars:     cfg.Correction.MaxChars,
	}, logger)

	return &Client{service: service}, nil
}

// Process corrects one document and returns the name of the output file in
// the processed directory.
func (c *Client) Process(ctx context.Context, path, instruction, mode string) (string, error) {
	if instruction == "" {
		instruction = DefaultInstruction
	}
	return c.service.Process(ctx, path, instruction, mode)
}

// Stream processes one document in the background and returns a channel that
// streams events as processing progresses. The channel is closed when
// processing ends. EventComplete carries the output name as its payload.
// Events are dropped while the buffer is full.
func (c *Client) Stream(ctx context.Context, path, instruction, mode string) <-chan StreamEvent {
	if instruction == "" {
		instruction = DefaultInstruction
	}

	eventCh := make(chan StreamEvent, 100)
	go func() {
		defer close(eventCh)
		_, _ = c.service.ProcessWithEvents(ctx, path, instruction, mode, eventCh)
	}()
	return eventCh
}
