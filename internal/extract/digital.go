package extract

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spherical/doc-corrector/internal/docx"
	"github.com/spherical/doc-corrector/internal/domain"
	"github.com/spherical/doc-corrector/internal/pdf"
)

// DigitalExtractor reads text that is already embedded in a document.
type DigitalExtractor struct {
	logger *domain.Logger
}

// NewDigitalExtractor creates a digital text extractor
func NewDigitalExtractor(logger *domain.Logger) *DigitalExtractor {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &DigitalExtractor{logger: logger.WithPrefix("digital")}
}

// ExtractText returns the text of a plain-text, DOCX or PDF document.
func (e *DigitalExtractor) ExtractText(ctx context.Context, doc domain.SourceDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.logger.Debug().Str("path", doc.Path).Str("format", string(doc.Format)).Msg("extracting embedded text")

	switch doc.Format {
	case domain.FormatPlainText:
		return readPlainText(doc.Path)
	case domain.FormatWordProcessor:
		return docx.ExtractText(doc.Path)
	case domain.FormatPDF:
		return pdf.ExtractText(doc.Path)
	default:
		return "", domain.UnsupportedFormatError(
			fmt.Sprintf("format %s has no embedded text to extract", doc.Format), nil)
	}
}

func readPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", domain.ExtractionError("failed to read text file", err)
	}
	if !utf8.Valid(data) {
		return "", domain.ExtractionError(fmt.Sprintf("%s is not valid UTF-8", path), nil)
	}
	return string(data), nil
}
