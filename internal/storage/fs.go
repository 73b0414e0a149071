package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/markdown"
	"github.com/starford/raido/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root    string   // absolute path to the source directory
	exclude []string // absolute directories skipped while walking
}

// NewFS creates a new FS provider rooted at the given directory. Directories
// in exclude (for example an output directory nested in the source tree) are
// never walked. The root must already exist.
func NewFS(root string, exclude ...string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}

	f := &FS{root: abs}
	for _, dir := range exclude {
		if dir == "" {
			continue
		}
		ex, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("storage: resolve exclude: %w", err)
		}
		f.exclude = append(f.exclude, ex)
	}
	return f, nil
}

// Root implements Provider.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the source root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: %w: absolute paths not allowed: %s", apperr.ErrInvalidPath, rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: %w: path escapes source root: %s", apperr.ErrInvalidPath, rel)
	}
	return abs, nil
}

// skipDir reports whether a directory is hidden or excluded.
func (f *FS) skipDir(p string, d fs.DirEntry) bool {
	if p != f.root && strings.HasPrefix(d.Name(), ".") {
		return true
	}
	for _, ex := range f.exclude {
		if p == ex {
			return true
		}
	}
	return false
}

// List walks dir (relative to root) and returns metadata for every .md file.
// Contents are not read.
func (f *FS) List(dir string) ([]models.DocumentMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.DocumentMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if f.skipDir(p, d) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !markdown.IsDocument(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		out = append(out, models.DocumentMetadata{
			Path:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a source file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Walk returns every non-markdown, non-hidden file under the root in
// lexical order.
func (f *FS) Walk() ([]string, error) {
	var out []string
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if f.skipDir(p, d) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || markdown.IsDocument(d.Name()) || !d.Type().IsRegular() {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: walk: %w", err)
	}
	return out, nil
}
