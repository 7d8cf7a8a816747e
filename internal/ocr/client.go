// Package ocr detects document text in images through the Google Cloud Vision API.
package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/spherical/doc-corrector/internal/domain"
)

const (
	// DefaultEndpoint is the Vision API root; the library appends v1/images:annotate.
	DefaultEndpoint = "https://vision.googleapis.com/"

	featureDocumentText = "DOCUMENT_TEXT_DETECTION"
)

// Client sends one annotate request per image
type Client struct {
	svc    *vision.Service
	apiKey string
	logger *domain.Logger
}

// Config holds client settings
type Config struct {
	APIKey     string
	Endpoint   string
	Timeout    time.Duration // zero or negative means no timeout
	HTTPClient *http.Client
}

// NewClient creates a Vision client. The API key travels as the key query
// parameter on every request.
func NewClient(ctx context.Context, cfg Config, logger *domain.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigError("vision API key is required", nil)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = newHTTPClient(cfg.Timeout)
	}
	if logger == nil {
		logger = domain.DefaultLogger
	}

	svc, err := vision.NewService(ctx,
		option.WithHTTPClient(hc),
		option.WithEndpoint(cfg.Endpoint),
	)
	if err != nil {
		return nil, domain.ConfigError("failed to create vision service", err)
	}

	return &Client{
		svc:    svc,
		apiKey: cfg.APIKey,
		logger: logger.WithPrefix("ocr"),
	}, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}
	return &http.Client{Timeout: timeout}
}

// DetectText returns the full text annotation of the image at imagePath.
// A successful response without text yields domain.NoTextDetected.
func (c *Client) DetectText(ctx context.Context, imagePath string) (string, error) {
	content, err := os.ReadFile(imagePath)
	if err != nil {
		return "", domain.ExtractionError("failed to read image "+imagePath, err)
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(content)},
				Features: []*vision.Feature{{Type: featureDocumentText}},
			},
		},
	}

	c.logger.Debug().Str("image", imagePath).Int("bytes", len(content)).Msg("sending annotate request")

	resp, err := c.svc.Images.Annotate(req).
		Context(ctx).
		Do(googleapi.QueryParameter("key", c.apiKey))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return "", domain.OCRServiceError(gerr.Code, gerr.Body)
		}
		return "", domain.OCRServiceError(0, err.Error())
	}

	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		c.logger.Warn().Str("image", imagePath).Msg("vision returned no responses")
		return domain.NoTextDetected, nil
	}

	r := resp.Responses[0]
	if r.FullTextAnnotation == nil || r.FullTextAnnotation.Text == "" {
		event := c.logger.Warn().Str("image", imagePath)
		if r.Error != nil {
			event = event.Int64("code", r.Error.Code).Str("reason", r.Error.Message)
		}
		event.Msg("no text detected")
		return domain.NoTextDetected, nil
	}

	return r.FullTextAnnotation.Text, nil
}
