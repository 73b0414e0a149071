package storage

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido/internal/models"
)

func TestWriteFiles_OnlyGenerated(t *testing.T) {
	out := t.TempDir()
	src := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(src, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	files := []models.OutputFile{
		models.GeneratedFile{Path: filepath.Join(out, "a", "index.html"), Content: "<p>a</p>"},
		models.CopiedFile{Source: src, Path: filepath.Join(out, "img", "logo.png")},
	}
	w := NewWriter(nil, true, 2)

	n, err := w.WriteFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if n != 1 {
		t.Errorf("written = %d, want 1", n)
	}
	got, err := os.ReadFile(filepath.Join(out, "a", "index.html"))
	if err != nil || string(got) != "<p>a</p>" {
		t.Errorf("content = %q, err = %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(out, "img", "logo.png")); !os.IsNotExist(err) {
		t.Error("WriteFiles must not copy static files")
	}

	n, err = w.CopyFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("CopyFiles: %v", err)
	}
	if n != 1 {
		t.Errorf("copied = %d, want 1", n)
	}
	got, err = os.ReadFile(filepath.Join(out, "img", "logo.png"))
	if err != nil || string(got) != "png" {
		t.Errorf("copy = %q, err = %v", got, err)
	}
}

func TestWriteFiles_Overwrites(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "index.html")
	w := NewWriter(nil, true, 1)
	for _, content := range []string{"first", "second"} {
		if _, err := w.WriteFiles(context.Background(), []models.OutputFile{models.GeneratedFile{Path: dst, Content: content}}); err != nil {
			t.Fatalf("WriteFiles: %v", err)
		}
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "second" {
		t.Errorf("content = %q, want second", got)
	}
}

func TestWriteFiles_LogsUnlessQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	dst := filepath.Join(t.TempDir(), "x.html")
	files := []models.OutputFile{models.GeneratedFile{Path: dst, Content: "x"}}

	if _, err := NewWriter(logger, false, 1).WriteFiles(context.Background(), files); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "writer: write") {
		t.Errorf("expected write log, got %q", buf.String())
	}

	buf.Reset()
	if _, err := NewWriter(logger, true, 1).WriteFiles(context.Background(), files); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("quiet writer logged: %q", buf.String())
	}
}

func TestCopyFiles_MissingSourceFails(t *testing.T) {
	out := t.TempDir()
	files := []models.OutputFile{models.CopiedFile{Source: filepath.Join(out, "missing"), Path: filepath.Join(out, "dst")}}
	if _, err := NewWriter(nil, true, 1).CopyFiles(context.Background(), files); err == nil {
		t.Error("expected error for missing source")
	}
}
