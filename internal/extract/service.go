package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spherical/doc-corrector/internal/chunk"
	"github.com/spherical/doc-corrector/internal/domain"
)

// Dependencies are the collaborators of the pipeline
type Dependencies struct {
	Extractor  domain.TextExtractor
	Rasterizer domain.Rasterizer
	OCR        domain.OCRClient
	Corrector  domain.Corrector
	Writer     domain.DocumentWriter
}

// Options holds the pipeline settings
type Options struct {
	// UploadDir receives the page images of scanned PDFs.
	UploadDir string
	// ProcessedDir receives the corrected documents.
	ProcessedDir string
	// MaxChars bounds the length of each chunk sent for correction.
	MaxChars int
}

// Service orchestrates extraction, chunked correction and output assembly
type Service struct {
	deps   Dependencies
	opts   Options
	logger *domain.Logger
}

// NewService creates a new correction pipeline
func NewService(deps Dependencies, opts Options, logger *domain.Logger) *Service {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = chunk.DefaultMaxChars
	}
	return &Service{
		deps:   deps,
		opts:   opts,
		logger: logger.WithPrefix("pipeline"),
	}
}

// Process corrects the document at path and returns the name of the output
// document written to the processed directory.
func (s *Service) Process(ctx context.Context, path, instruction, mode string) (string, error) {
	return s.ProcessWithEvents(ctx, path, instruction, mode, nil)
}

// ProcessWithEvents is Process with progress events sent on eventCh. Events
// are dropped when the channel is full.
func (s *Service) ProcessWithEvents(ctx context.Context, path, instruction, mode string, eventCh chan<- domain.StreamEvent) (string, error) {
	startTime := time.Now()
	logger := s.logger.WithFile(path)

	doc, err := domain.NewSourceDocument(path, mode)
	if err == nil {
		err = checkDispatch(doc)
	}
	if err != nil {
		s.emitError(eventCh, path, err)
		return "", err
	}

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Path:      path,
		Payload:   fmt.Sprintf("Processing %s in %s mode", filepath.Base(path), doc.Mode),
		Timestamp: time.Now(),
	})
	logger.Info().Str("format", string(doc.Format)).Str("mode", string(doc.Mode)).Msg("processing document")

	text, err := s.rawText(ctx, doc)
	if err != nil {
		s.emitError(eventCh, path, err)
		return "", err
	}

	logger.Debug().Int("chars", len([]rune(text))).Msg("text extracted")
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventExtracted,
		Path:      path,
		Payload:   len([]rune(text)),
		Timestamp: time.Now(),
	})

	results, err := s.correctChunks(ctx, doc, text, instruction, eventCh)
	if err != nil {
		s.emitError(eventCh, path, err)
		return "", err
	}

	output := domain.OutputDocument{
		Name: doc.OutputName(),
		Path: filepath.Join(s.opts.ProcessedDir, doc.OutputName()),
		Body: domain.JoinCorrections(results),
	}
	if err := s.deps.Writer.Write(output.Path, output.Body); err != nil {
		s.emitError(eventCh, path, err)
		return "", err
	}

	duration := time.Since(startTime)
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventComplete,
		Path:      path,
		Payload:   output.Name,
		Timestamp: time.Now(),
	})
	logger.Info().
		Str("output", output.Path).
		Int("chunks", len(results)).
		Dur("duration", duration).
		Msg("document corrected")

	return output.Name, nil
}

// checkDispatch rejects format and mode combinations the pipeline has no
// extraction path for.
func checkDispatch(doc domain.SourceDocument) error {
	switch {
	case doc.Mode == domain.ModeOCR && (doc.Format == domain.FormatPlainText || doc.Format == domain.FormatWordProcessor):
		return domain.UnsupportedFormatError(
			fmt.Sprintf("%s documents are not valid OCR input", doc.Format), nil)
	case doc.Mode == domain.ModeDigital && doc.Format == domain.FormatImage:
		return domain.UnsupportedFormatError("images have no embedded text; use ocr mode", nil)
	}
	return nil
}

// rawText obtains the uncorrected text of doc according to its mode.
func (s *Service) rawText(ctx context.Context, doc domain.SourceDocument) (string, error) {
	if doc.Mode == domain.ModeDigital {
		return s.deps.Extractor.ExtractText(ctx, doc)
	}

	if doc.Format == domain.FormatImage {
		return s.deps.OCR.DetectText(ctx, doc.Path)
	}

	pages, err := s.deps.Rasterizer.Rasterize(ctx, doc.Path, s.opts.UploadDir)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		pageText, err := s.deps.OCR.DetectText(ctx, page.ImagePath)
		if err != nil {
			return "", err
		}
		sb.WriteString(pageText)
		sb.WriteByte('\n')

		s.logger.Debug().Int("page", page.PageIndex+1).Int("pages", len(pages)).Msg("page recognized")
	}
	return sb.String(), nil
}

// correctChunks sends every chunk to the corrector, one at a time, in order.
// Blank chunks are kept as empty corrections without a service call.
func (s *Service) correctChunks(ctx context.Context, doc domain.SourceDocument, text, instruction string, eventCh chan<- domain.StreamEvent) ([]domain.CorrectionResult, error) {
	var results []domain.CorrectionResult

	for c := range chunk.All(text, s.opts.MaxChars) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if strings.TrimSpace(c.Content) == "" {
			results = append(results, domain.CorrectionResult{Index: c.Index})
			continue
		}

		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       domain.EventChunkCorrecting,
			Path:       doc.Path,
			ChunkIndex: c.Index,
			Timestamp:  time.Now(),
		})

		corrected, err := s.deps.Corrector.Correct(ctx, c.Content, instruction)
		if err != nil {
			s.logger.Error().Err(err).Str("file", doc.Path).Int("chunk", c.Index).Msg("correction failed")
			return nil, err
		}
		results = append(results, domain.CorrectionResult{Index: c.Index, Text: corrected})

		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       domain.EventChunkComplete,
			Path:       doc.Path,
			ChunkIndex: c.Index,
			Timestamp:  time.Now(),
		})
	}

	return results, nil
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Warn().Str("event", string(event.Type)).Msg("event channel full, dropping event")
		}
	}
}

// emitError emits an error event
func (s *Service) emitError(eventCh chan<- domain.StreamEvent, path string, err error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventError,
		Path:      path,
		Payload:   err.Error(),
		Timestamp: time.Now(),
	})
}
