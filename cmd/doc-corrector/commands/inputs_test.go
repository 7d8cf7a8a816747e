package commands

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestExpandInputs_ExtractsRecognizedEntries(t *testing.T) {
	dir := t.TempDir()
	upload := filepath.Join(dir, "uploads")
	archive := filepath.Join(dir, "lote.zip")
	writeZip(t, archive, map[string]string{
		"a.txt":           "texto",
		"scans/b.PNG":     "png",
		"setup.exe":       "binary",
		"notes/":          "",
		"docs/report.pdf": "%PDF",
	})

	files, failures := expandInputs([]string{archive, filepath.Join(dir, "z.docx")}, upload)
	assert.Empty(t, failures)

	assert.Equal(t, []string{
		filepath.Join(upload, "a.txt"),
		filepath.Join(upload, "docs", "report.pdf"),
		filepath.Join(upload, "scans", "b.PNG"),
		filepath.Join(dir, "z.docx"),
	}, files)

	data, err := os.ReadFile(filepath.Join(upload, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "texto", string(data))
	assert.NoFileExists(t, filepath.Join(upload, "setup.exe"))
}

func TestExpandInputs_KeepsUnsupportedFilesForReporting(t *testing.T) {
	files, failures := expandInputs([]string{"b.xlsx", "a.pdf"}, t.TempDir())
	assert.Empty(t, failures)
	assert.Equal(t, []string{"a.pdf", "b.xlsx"}, files)
}

func TestExpandInputs_RejectsZipSlip(t *testing.T) {
	dir := t.TempDir()
	upload := filepath.Join(dir, "uploads")
	archive := filepath.Join(dir, "evil.zip")
	writeZip(t, archive, map[string]string{"../../escape.txt": "x"})

	files, failures := expandInputs([]string{archive, "ok.txt"}, upload)
	assert.Equal(t, []string{"ok.txt"}, files)
	require.Len(t, failures, 1)
	assert.Equal(t, archive, failures[0].Path)
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestExpandInputs_BrokenArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "broken.ZIP")
	require.NoError(t, os.WriteFile(archive, []byte("not a zip"), 0o644))

	files, failures := expandInputs([]string{archive}, dir)
	assert.Empty(t, files)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Err.Error(), "open archive")
}

func TestSafeJoin(t *testing.T) {
	dir := filepath.Join("base", "uploads")

	tests := []struct {
		name    string
		entry   string
		wantErr bool
	}{
		{"plain", "a.txt", false},
		{"nested", "x/y/a.txt", false},
		{"inner dotdot stays inside", "x/../a.txt", false},
		{"parent", "../a.txt", true},
		{"deep parent", "x/../../a.txt", true},
		{"absolute", "/etc/passwd.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := safeJoin(dir, tt.entry)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResetDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "processed")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old_corrigido.docx"), []byte("x"), 0o644))

	require.NoError(t, resetDir(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
