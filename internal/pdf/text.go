package pdf

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/doc-corrector/internal/domain"
)

// ExtractText returns the embedded text layer of a digital PDF. Each page's text
// is followed by a newline.
func ExtractText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", domain.ExtractionError("failed to open PDF", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			return "", domain.ExtractionError(fmt.Sprintf("failed to read text of page %d", i+1), err)
		}
		sb.WriteString(pageText)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}
