// Package llm talks to the Cohere generate endpoint to correct text chunks.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spherical/doc-corrector/internal/domain"
)

const (
	cohereGenerateURL  = "https://api.cohere.ai/v1/generate"
	defaultModel       = "command-r-08-2024"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.3
)

// Client handles communication with the Cohere API
type Client struct {
	apiKey      string
	endpoint    string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	logger      *domain.Logger
}

// Config holds optional client settings; zero values select the defaults.
type Config struct {
	Endpoint    string
	Model       string
	MaxTokens   int
	Temperature *float64
	Timeout     time.Duration // zero or negative means no timeout
	HTTPClient  *http.Client
}

// Request represents the generate request body
type Request struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// Response represents the generate response body
type Response struct {
	ID          string       `json:"id"`
	Generations []Generation `json:"generations"`
}

// Generation is a single completion
type Generation struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// NewClient creates a new correction client
func NewClient(apiKey string, cfg Config, logger *domain.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, domain.ConfigError("cohere API key is required", nil)
	}
	if logger == nil {
		logger = domain.DefaultLogger
	}

	c := &Client{
		apiKey:      apiKey,
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: defaultTemperature,
		httpClient:  cfg.HTTPClient,
		logger:      logger.WithPrefix("correction"),
	}
	if c.endpoint == "" {
		c.endpoint = cohereGenerateURL
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if cfg.Temperature != nil {
		c.temperature = *cfg.Temperature
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout < 0 {
			timeout = 0
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}

	return c, nil
}

// Correct sends one chunk with the instruction and returns the trimmed
// generated text. Failures are not retried.
func (c *Client) Correct(ctx context.Context, chunk, instruction string) (string, error) {
	body, err := json.Marshal(c.buildRequest(chunk, instruction))
	if err != nil {
		return "", domain.CorrectionServiceError("failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.CorrectionServiceError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", domain.CorrectionServiceError("failed to send request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.CorrectionServiceError("failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", domain.CorrectionServiceError(
			fmt.Sprintf("API returned status %d", resp.StatusCode),
			&domain.ServiceError{Service: "cohere", StatusCode: resp.StatusCode, Body: string(respBody)},
		)
	}

	var parsed Response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", domain.CorrectionServiceError("failed to decode response",
			&domain.ServiceError{Service: "cohere", StatusCode: resp.StatusCode, Body: string(respBody)})
	}
	if len(parsed.Generations) == 0 {
		return "", domain.CorrectionServiceError("response has no generations",
			&domain.ServiceError{Service: "cohere", StatusCode: resp.StatusCode, Body: string(respBody)})
	}

	c.logger.Debug().
		Int("chunk_chars", len([]rune(chunk))).
		Dur("elapsed", time.Since(start)).
		Msg("chunk corrected")

	return strings.TrimSpace(parsed.Generations[0].Text), nil
}

// buildRequest places the instruction before the chunk, separated by a blank line.
func (c *Client) buildRequest(chunk, instruction string) *Request {
	return &Request{
		Model:       c.model,
		Prompt:      instruction + "\n\n" + chunk,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
}
