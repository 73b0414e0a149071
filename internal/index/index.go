package index

import (
	"context"

	"github.com/starford/raido/internal/pages"
)

// GraphIndex defines the queries served from a recorded page graph.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type GraphIndex interface {
	Record(ctx context.Context, s *pages.Snapshot) error
	Page(ctx context.Context, path string) (*PageRow, error)
	Backlinks(ctx context.Context, target string) ([]PageRow, error)
	PagesByTag(ctx context.Context, tag string) ([]PageRow, error)
	Children(ctx context.Context, path string) ([]PageRow, error)
	Tags(ctx context.Context) ([]TagCount, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	Graph(ctx context.Context) ([]GraphNode, []GraphLink, error)
	Close() error
}

// Verify *DB satisfies GraphIndex at compile time.
var _ GraphIndex = (*DB)(nil)
