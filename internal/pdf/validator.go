package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/doc-corrector/internal/domain"
)

// maxSize is the size above which a warning is logged; larger files are still processed.
const maxSize = 100 * 1024 * 1024 // 100MB

// Validator provides input validation for PDF files
type Validator struct {
	logger *domain.Logger
}

// NewValidator creates a new validator instance
func NewValidator(logger *domain.Logger) *Validator {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &Validator{logger: logger}
}

// ValidatePDFPath validates that a file path is valid and points to a PDF
func (v *Validator) ValidatePDFPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		return domain.ValidationError(fmt.Sprintf("file is not a PDF (has extension %s)", ext), nil)
	}

	if info.Size() > maxSize {
		v.logger.Warn().
			Str("path", path).
			Int64("size_mb", info.Size()/(1024*1024)).
			Msg("PDF file is very large, processing may take a while")
	}

	return nil
}

// ValidateDPI validates the rasterization resolution
func (v *Validator) ValidateDPI(dpi int) error {
	if dpi < domain.MinDPI || dpi > domain.MaxDPI {
		return domain.ValidationError(fmt.Sprintf("dpi must be between %d and %d, got %d", domain.MinDPI, domain.MaxDPI, dpi), nil)
	}
	return nil
}
