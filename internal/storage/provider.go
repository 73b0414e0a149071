// Package storage reads the markdown source tree and materializes build
// output on disk.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for source tree access. Paths are slash
// separated and relative to the source root.
type Provider interface {
	// Root returns the absolute source root.
	Root() string
	// List returns metadata for every markdown document under dir.
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Walk returns the absolute paths of every static (non-markdown) file.
	Walk() ([]string, error)
}
