// Package export writes rendered reports to disk without leaving partial files behind.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

func (w *Writer) Dir() string {
	return w.baseDir
}

// Path returns where Write places name. Absolute names are used as given.
func (w *Writer) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.baseDir, name)
}

// Write renders fn into a temp file next to the destination and renames it
// into place once fn and the close both succeed.
func (w *Writer) Write(name string, fn func(io.Writer) error) (string, int64, error) {
	destPath := w.Path(name)

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
		return "", 0, fmt.Errorf("creating directories: %w", err)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", 0, fmt.Errorf("creating temp file: %w", err)
	}

	cw := &countingWriter{w: f}
	err = fn(cw)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("writing report: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("renaming temp file: %w", err)
	}

	return destPath, cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
