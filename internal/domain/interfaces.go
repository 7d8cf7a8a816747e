package domain

import "context"

// TextExtractor reads the embedded text of a digital document
type TextExtractor interface {
	// ExtractText returns the full text of a plain-text, word-processor or PDF document
	ExtractText(ctx context.Context, doc SourceDocument) (string, error)
}

// Rasterizer renders PDF pages to images
type Rasterizer interface {
	// Rasterize writes one image per page into targetDir and returns them in page order.
	// The images are left on disk.
	Rasterize(ctx context.Context, pdfPath, targetDir string) ([]RasterPage, error)
}

// OCRClient detects the text of a single image
type OCRClient interface {
	DetectText(ctx context.Context, imagePath string) (string, error)
}

// Corrector rewrites one chunk according to an instruction
type Corrector interface {
	Correct(ctx context.Context, chunk, instruction string) (string, error)
}

// DocumentWriter persists the corrected output
type DocumentWriter interface {
	Write(path, body string) error
}
