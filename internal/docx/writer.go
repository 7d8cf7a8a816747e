package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/doc-corrector/internal/domain"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p>`

const documentFooter = `</w:p><w:sectPr/></w:body></w:document>`

// Writer produces single-paragraph DOCX documents.
type Writer struct {
	logger *domain.Logger
}

// NewWriter creates a DOCX writer
func NewWriter(logger *domain.Logger) *Writer {
	if logger == nil {
		logger = domain.DefaultLogger
	}
	return &Writer{logger: logger.WithPrefix("docx")}
}

// Write stores body as the only paragraph of a new DOCX at path, replacing
// any existing file. Line breaks become w:br and tabs become w:tab so the
// paragraph keeps its layout. The file is written next to path and renamed
// into place, so a failed write never leaves a partial document behind.
func (w *Writer) Write(path, body string) error {
	data, err := Build(body)
	if err != nil {
		return domain.IOError("failed to build DOCX", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.IOError("failed to create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".docx-*.tmp")
	if err != nil {
		return domain.IOError("failed to create temporary output file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return domain.IOError("failed to write output document", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.IOError("failed to close output document", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return domain.IOError(fmt.Sprintf("failed to move output document to %s", path), err)
	}

	w.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("wrote output document")
	return nil
}

// Build renders body as the bytes of a DOCX package.
func Build(body string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{documentPart, documentXML(body)},
	}

	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := f.Write(part.content); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func documentXML(body string) []byte {
	var buf bytes.Buffer
	buf.WriteString(documentHeader)
	buf.WriteString("<w:r>")

	body = strings.ReplaceAll(body, "\r\n", "\n")
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			buf.WriteString("<w:br/>")
		}
		for j, segment := range strings.Split(line, "\t") {
			if j > 0 {
				buf.WriteString("<w:tab/>")
			}
			if segment == "" {
				continue
			}
			buf.WriteString(`<w:t xml:space="preserve">`)
			// EscapeText only fails on writer errors, which bytes.Buffer never returns.
			_ = xml.EscapeText(&buf, []byte(segment))
			buf.WriteString("</w:t>")
		}
	}

	buf.WriteString("</w:r>")
	buf.WriteString(documentFooter)
	return buf.Bytes()
}
