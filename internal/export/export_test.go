package export

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriter(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "export-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	w := NewWriter(tmpDir)

	if w.Dir() != tmpDir {
		t.Errorf("expected Dir %s, got %s", tmpDir, w.Dir())
	}

	path, size, err := w.Write(filepath.Join("SPY", "report.json"), func(out io.Writer) error {
		_, err := io.WriteString(out, `{"spot": 600}`)
		return err
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "SPY", "report.json")
	if path != expected {
		t.Errorf("expected path %s, got %s", expected, path)
	}
	if size != 13 {
		t.Errorf("expected size 13, got %d", size)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(content) != `{"spot": 600}` {
		t.Errorf("unexpected content: %s", content)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after a successful write")
	}
}

func TestWriter_FailureLeavesNoFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "export-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	w := NewWriter(tmpDir)
	renderErr := errors.New("render failed")

	_, _, err = w.Write("report.txt", func(out io.Writer) error {
		_, _ = io.WriteString(out, "partial")
		return renderErr
	})
	if !errors.Is(err, renderErr) {
		t.Fatalf("expected wrapped render error, got %v", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory after failed write, found %d entries", len(entries))
	}
}

func TestWriter_AbsolutePath(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "export-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	abs := filepath.Join(tmpDir, "elsewhere", "out.txt")
	w := NewWriter(filepath.Join(tmpDir, "reports"))
	if got := w.Path(abs); got != abs {
		t.Errorf("expected absolute path to be kept, got %s", got)
	}
}
