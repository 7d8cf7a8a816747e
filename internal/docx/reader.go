package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spherical/doc-corrector/internal/domain"
)

const documentPart = "word/document.xml"

// ExtractText returns the text of every body paragraph of the DOCX at path,
// joined with a newline. Empty paragraphs are kept as empty lines. Paragraphs
// nested in tables are skipped.
func ExtractText(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", domain.ExtractionError("failed to open DOCX archive", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == documentPart {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", domain.ExtractionError(documentPart+" not found in archive", nil)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", domain.ExtractionError("failed to open "+documentPart, err)
	}
	defer rc.Close()

	paragraphs, err := parseParagraphs(rc)
	if err != nil {
		return "", domain.ExtractionError("failed to parse "+documentPart, err)
	}

	return strings.Join(paragraphs, "\n"), nil
}

// wordNamespace is the WordprocessingML main namespace; DrawingML and VML
// elements that share local names such as p, r and t live elsewhere.
const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// embeddedContent holds text that belongs to a shape, not to the enclosing
// paragraph.
var embeddedContent = map[string]bool{
	"txbxContent":      true,
	"drawing":          true,
	"pict":             true,
	"object":           true,
	"AlternateContent": true,
}

// parseParagraphs walks document.xml and collects the text of each top-level w:p.
func parseParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs  []string
		current     strings.Builder
		inParagraph bool
		inRun       bool
		inText      bool
		tableDepth  int
		skipDepth   int
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode token: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skipDepth > 0 || embeddedContent[t.Name.Local] {
				skipDepth++
				continue
			}
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				if tableDepth == 0 {
					inParagraph = true
					current.Reset()
				}
			case "r":
				inRun = inParagraph
			case "t":
				inText = inRun
			case "br", "cr":
				if inRun {
					current.WriteByte('\n')
				}
			case "tab":
				// w:tab also appears as a tab stop under w:pPr; only runs carry text.
				if inRun {
					current.WriteByte('\t')
				}
			}

		case xml.CharData:
			if inText && skipDepth == 0 {
				current.Write(t)
			}

		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "r":
				inRun = false
			case "t":
				inText = false
			case "p":
				if inParagraph && tableDepth == 0 {
					inParagraph = false
					paragraphs = append(paragraphs, current.String())
				}
			}
		}
	}

	return paragraphs, nil
}
