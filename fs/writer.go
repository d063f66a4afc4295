// Package fs writes extracted pages to the local filesystem.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/ccqa"
)

// Ensure Writer implements ccqa.PageWriter at compile time.
var _ ccqa.PageWriter = (*Writer)(nil)

// Writer writes pages as a pretty-printed JSON array to a single file.
// The file is written under a temporary name next to the target and renamed
// into place once complete, so the target is either replaced or untouched.
type Writer struct {
	path string
}

// NewWriter creates a new Writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the target file path.
func (w *Writer) Path() string {
	return w.path
}

// WritePages encodes pages to the target file, creating or truncating it.
func (w *Writer) WritePages(ctx context.Context, pages []*ccqa.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pages == nil {
		pages = []*ccqa.Page{}
	}

	dir := filepath.Dir(w.path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmp := f.Name()

	if err := encode(f, pages); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to set output file mode: %w", err)
	}

	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}

func encode(f *os.File, pages []*ccqa.Page) error {
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pages); err != nil {
		return fmt.Errorf("failed to encode pages: %w", err)
	}
	return nil
}
