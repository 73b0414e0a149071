package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/models"
)

// Writer materializes build output. Distinct destinations are written
// concurrently; a failure aborts the pass and may leave partial output.
type Writer struct {
	logger      *slog.Logger
	quiet       bool
	concurrency int
}

// NewWriter creates a Writer. When quiet is set, per-file logging is off.
func NewWriter(logger *slog.Logger, quiet bool, concurrency int) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Writer{logger: logger, quiet: quiet, concurrency: concurrency}
}

// WriteFiles writes every GeneratedFile in files, creating directories as
// needed and overwriting existing files. Other entries are ignored.
func (w *Writer) WriteFiles(ctx context.Context, files []models.OutputFile) (int, error) {
	var generated []models.GeneratedFile
	for _, f := range files {
		if g, ok := f.(models.GeneratedFile); ok {
			generated = append(generated, g)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, file := range generated {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			if !w.quiet {
				w.logger.Info("writer: write", slog.String("path", file.Path))
			}
			return writeFile(file.Path, []byte(file.Content))
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(generated), nil
}

// CopyFiles copies every CopiedFile in files byte-for-byte, creating
// directories as needed. Other entries are ignored.
func (w *Writer) CopyFiles(ctx context.Context, files []models.OutputFile) (int, error) {
	var copied []models.CopiedFile
	for _, f := range files {
		if c, ok := f.(models.CopiedFile); ok {
			copied = append(copied, c)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, file := range copied {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			if !w.quiet {
				w.logger.Info("writer: copy", slog.String("path", file.Path), slog.String("source", file.Source))
			}
			return copyFile(file.Source, file.Path)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(copied), nil
}

func writeFile(dst string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := os.WriteFile(dst, content, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", dst, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("storage: copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", dst, err)
	}
	return nil
}
