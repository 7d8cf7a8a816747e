package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format is the inferred kind of a source document.
type Format string

const (
	FormatPlainText     Format = "plain-text"
	FormatWordProcessor Format = "word-processor"
	FormatPDF           Format = "pdf"
	FormatImage         Format = "image"
)

// Mode selects how raw text is obtained from a source document.
type Mode string

const (
	ModeDigital Mode = "digital"
	ModeOCR     Mode = "ocr"
)

// OutputSuffix is appended to the source base name to build the output name.
const OutputSuffix = "_corrigido"

// OutputExt is the extension of every output document.
const OutputExt = ".docx"

// Rasterization resolution bounds accepted for OCR.
const (
	MinDPI = 36
	MaxDPI = 1200
)

// NoTextDetected is returned by the OCR client when the service answered
// successfully but found no text in the image.
const NoTextDetected = "[Nenhum texto detectado]"

// extensionFormats lists every recognized input extension.
var extensionFormats = map[string]Format{
	".txt":  FormatPlainText,
	".docx": FormatWordProcessor,
	".pdf":  FormatPDF,
	".png":  FormatImage,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
}

// SupportedExtensions returns the recognized input extensions in a stable order.
func SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".pdf", ".txt", ".docx"}
}

// DetectFormat infers the document format from the file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensionFormats[ext]
	if !ok {
		return "", UnsupportedFormatError(fmt.Sprintf("unsupported file format: %q", ext), nil)
	}
	return format, nil
}

// ParseMode validates a processing mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDigital, ModeOCR:
		return Mode(s), nil
	default:
		return "", InvalidModeError(fmt.Sprintf("invalid mode %q: use %q or %q", s, ModeDigital, ModeOCR), nil)
	}
}

// SourceDocument is a read-only input to the pipeline.
type SourceDocument struct {
	Path   string
	Format Format
	Mode   Mode
}

// NewSourceDocument checks the extension and mode of path. It does not touch
// the file system.
func NewSourceDocument(path string, mode string) (SourceDocument, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return SourceDocument{}, err
	}
	m, err := ParseMode(mode)
	if err != nil {
		return SourceDocument{}, err
	}
	return SourceDocument{Path: path, Format: format, Mode: m}, nil
}

// BaseName returns the file name without directory and extension.
func (d SourceDocument) BaseName() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputName derives the name of the corrected document.
func (d SourceDocument) OutputName() string {
	return d.BaseName() + OutputSuffix + OutputExt
}

// RasterPage is one rendered PDF page waiting for OCR
type RasterPage struct {
	DocumentPath string
	PageIndex    int // zero-based
	ImagePath    string
	Width        int
	Height       int
}

// TextChunk is a bounded segment of extracted text
type TextChunk struct {
	Index   int
	Content string
}

// CorrectionResult is the corrected form of the chunk with the same index
type CorrectionResult struct {
	Index int
	Text  string
}

// OutputDocument is the single persisted artifact of a run
type OutputDocument struct {
	Name string
	Path string
	Body string
}

// JoinCorrections concatenates corrected chunks in index order with a newline.
func JoinCorrections(results []CorrectionResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Text
	}
	return strings.Join(parts, "\n")
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart           EventType = "start"
	EventExtracted       EventType = "extracted"
	EventChunkCorrecting EventType = "chunk_correcting"
	EventChunkComplete   EventType = "chunk_complete"
	EventError           EventType = "error"
	EventComplete        EventType = "complete"
)

// StreamEvent represents an event emitted during processing
type StreamEvent struct {
	Type       EventType   `json:"type"`
	Path       string      `json:"path"`
	ChunkIndex int         `json:"chunk_index,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}
