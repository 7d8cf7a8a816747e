package commands

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spherical/doc-corrector/internal/domain"
)

// inputFailure is an input that could not be turned into documents.
type inputFailure struct {
	Path string
	Err  error
}

// expandInputs replaces every .zip in paths with the recognized documents it
// contains, extracted under uploadDir. Other paths are kept as given, so
// unsupported files still reach the pipeline and are reported there. The
// result is sorted.
func expandInputs(paths []string, uploadDir string) ([]string, []inputFailure) {
	var (
		files    []string
		failures []inputFailure
	)

	for _, p := range paths {
		if !strings.EqualFold(filepath.Ext(p), ".zip") {
			files = append(files, p)
			continue
		}

		extracted, err := extractArchive(p, uploadDir)
		if err != nil {
			failures = append(failures, inputFailure{Path: p, Err: err})
			continue
		}
		files = append(files, extracted...)
	}

	slices.Sort(files)
	return files, failures
}

// extractArchive writes the recognized documents of the zip at path into
// destDir, keeping their relative paths, and returns where they were written.
func extractArchive(path, destDir string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	var extracted []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isRecognized(f.Name) {
			continue
		}

		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return nil, err
		}
		if err := extractFile(f, target); err != nil {
			return nil, err
		}
		extracted = append(extracted, target)
	}

	return extracted, nil
}

func isRecognized(name string) bool {
	_, err := domain.DetectFormat(name)
	return err == nil
}

// safeJoin resolves an archive entry name under dir, rejecting names that
// would escape it.
func safeJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("archive entry %q has an absolute path", name)
	}
	target := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the upload directory", name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	_, err = io.Copy(out, rc)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}
