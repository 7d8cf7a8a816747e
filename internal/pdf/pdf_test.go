package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gen2brain/go-fitz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/doc-corrector/internal/domain"
)

// writeTestPDF writes a PDF with one page per entry of pages, each showing its text.
func writeTestPDF(t *testing.T, dir string, pages ...string) string {
	t.Helper()

	n := len(pages)
	// Objects: 1 catalog, 2 pages, 3 font, then (page, content) pairs.
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	var kids []string
	for i, text := range pages {
		pageObj := 4 + 2*i
		contentObj := pageObj + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObj))
		stream := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentObj),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(dir, "sample.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	doc, err := fitz.New(path)
	if err != nil {
		t.Skipf("MuPDF cannot open generated PDF: %v", err)
	}
	doc.Close()

	return path
}

func TestValidatePDFPath(t *testing.T) {
	dir := t.TempDir()
	v := NewValidator(domain.NopLogger())

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	pdfPath := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "  ", true},
		{"missing file", filepath.Join(dir, "missing.pdf"), true},
		{"directory", dir, true},
		{"wrong extension", txt, true},
		{"pdf file", pdfPath, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePDFPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrorTypeValidation, domain.TypeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateDPI(t *testing.T) {
	v := NewValidator(domain.NopLogger())
	assert.NoError(t, v.ValidateDPI(200))
	assert.Error(t, v.ValidateDPI(10))
	assert.Error(t, v.ValidateDPI(5000))
}

func TestRasterize_OnePNGPerPageInOrder(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeTestPDF(t, dir, "first page", "second page", "third page")
	out := filepath.Join(dir, "uploads")

	conv := NewConverter(72, domain.NopLogger())
	pages, err := conv.Rasterize(context.Background(), pdfPath, out)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	name := regexp.MustCompile(`^[0-9a-f-]{36}_pagina_(\d+)\.png$`)
	seen := map[string]bool{}
	for i, p := range pages {
		assert.Equal(t, i, p.PageIndex)
		assert.Equal(t, pdfPath, p.DocumentPath)
		assert.Equal(t, out, filepath.Dir(p.ImagePath))

		m := name.FindStringSubmatch(filepath.Base(p.ImagePath))
		require.NotNil(t, m, "unexpected name %s", p.ImagePath)
		assert.Equal(t, fmt.Sprint(i), m[1])
		assert.False(t, seen[p.ImagePath])
		seen[p.ImagePath] = true

		f, err := os.Open(p.ImagePath)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, p.Width, img.Bounds().Dx())
		assert.InDelta(t, 612, p.Width, 2, "72 dpi renders at PDF point size")
	}
}

func TestRasterize_NamesDoNotCollideAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeTestPDF(t, dir, "only page")

	conv := NewConverter(72, domain.NopLogger())
	first, err := conv.Rasterize(context.Background(), pdfPath, dir)
	require.NoError(t, err)
	second, err := conv.Rasterize(context.Background(), pdfPath, dir)
	require.NoError(t, err)

	assert.NotEqual(t, first[0].ImagePath, second[0].ImagePath)
	assert.FileExists(t, first[0].ImagePath)
	assert.FileExists(t, second[0].ImagePath)
}

func TestRasterize_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeTestPDF(t, dir, "page")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConverter(72, domain.NopLogger()).Rasterize(ctx, pdfPath, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRasterize_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	_, err := NewConverter(200, domain.NopLogger()).Rasterize(context.Background(), filepath.Join(dir, "nope.pdf"), dir)
	assert.Equal(t, domain.ErrorTypeValidation, domain.TypeOf(err))

	broken := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(broken, []byte("this is not a pdf"), 0o644))
	_, err = NewConverter(200, domain.NopLogger()).Rasterize(context.Background(), broken, dir)
	assert.True(t, domain.IsExtraction(err), "got %v", err)
}

func TestExtractText_PagesFollowedByNewline(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeTestPDF(t, dir, "Hello PDF", "Second")

	text, err := ExtractText(pdfPath)
	require.NoError(t, err)

	assert.Contains(t, text, "Hello PDF")
	assert.Contains(t, text, "Second")
	assert.Less(t, strings.Index(text, "Hello PDF"), strings.Index(text, "Second"))
	assert.True(t, strings.HasSuffix(text, "\n"))
}
