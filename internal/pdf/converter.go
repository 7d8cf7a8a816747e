package pdf

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"

	"github.com/spherical/doc-corrector/internal/domain"
)

// DefaultDPI is the rasterization resolution used for OCR.
const DefaultDPI = 200

// Converter renders PDF pages to PNG images using go-fitz
type Converter struct {
	dpi       int
	validator *Validator
	logger    *domain.Logger
	newID     func() string
}

// NewConverter creates a new PDF converter instance
func NewConverter(dpi int, logger *domain.Logger) *Converter {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &Converter{
		dpi:       dpi,
		validator: NewValidator(logger),
		logger:    logger.WithPrefix("rasterizer"),
		newID:     func() string { return uuid.New().String() },
	}
}

// Rasterize writes one PNG per page of pdfPath into targetDir, named
// {uuid}_pagina_{n}.png with n the zero-based page number. The images are
// returned in page order and are not removed afterwards.
func (c *Converter) Rasterize(ctx context.Context, pdfPath, targetDir string) ([]domain.RasterPage, error) {
	if err := c.validator.ValidatePDFPath(pdfPath); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateDPI(c.dpi); err != nil {
		return nil, err
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.ExtractionError("failed to open PDF", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.ExtractionError("PDF has no pages", nil)
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, domain.IOError("failed to create raster directory", err)
	}

	c.logger.Debug().Str("path", pdfPath).Int("pages", pageCount).Int("dpi", c.dpi).Msg("rasterizing PDF")

	pages := make([]domain.RasterPage, 0, pageCount)
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(pageNum, float64(c.dpi))
		if err != nil {
			return nil, domain.ExtractionError(fmt.Sprintf("failed to render page %d", pageNum+1), err)
		}

		outputPath := filepath.Join(targetDir, fmt.Sprintf("%s_pagina_%d.png", c.newID(), pageNum))
		outputFile, err := os.Create(outputPath)
		if err != nil {
			return nil, domain.IOError(fmt.Sprintf("failed to create image file for page %d", pageNum+1), err)
		}

		err = png.Encode(outputFile, img)
		closeErr := outputFile.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, domain.IOError(fmt.Sprintf("failed to encode page %d as PNG", pageNum+1), err)
		}

		bounds := img.Bounds()
		pages = append(pages, domain.RasterPage{
			DocumentPath: pdfPath,
			PageIndex:    pageNum,
			ImagePath:    outputPath,
			Width:        bounds.Dx(),
			Height:       bounds.Dy(),
		})
	}

	return pages, nil
}
