// Package pages builds the content graph: canonical paths, the immutable page
// snapshot, and the pure queries over it (tags, children, backlinks).
package pages

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Snapshot is an immutable, indexed set of pages. It is safe for concurrent
// use; callers must not mutate the pages it holds.
type Snapshot struct {
	pages  []*models.Page
	byPath map[string]*models.Page
	parent map[string]*models.Page
}

// NewSnapshot indexes pages. Two pages sharing a canonical path is an error.
func NewSnapshot(pages []*models.Page) (*Snapshot, error) {
	byPath := make(map[string]*models.Page, len(pages))
	for _, p := range pages {
		if prev, dup := byPath[p.Path]; dup {
			return nil, fmt.Errorf("pages: %w: %s (from %s and %s)", apperr.ErrDuplicatePath, p.Path, prev.Source, p.Source)
		}
		byPath[p.Path] = p
	}

	s := &Snapshot{
		pages:  Sort(pages),
		byPath: byPath,
		parent: make(map[string]*models.Page, len(pages)),
	}
	for _, p := range s.pages {
		if parent := s.nearestIndex(p.Path); parent != nil {
			s.parent[p.Path] = parent
		}
	}
	return s, nil
}

// nearestIndex returns the closest index page whose path is a strict segment
// prefix of p.
func (s *Snapshot) nearestIndex(p string) *models.Page {
	segs := segments(p)
	for k := len(segs) - 1; k >= 0; k-- {
		candidate := path.Join("/", strings.Join(segs[:k], "/"))
		if page, ok := s.byPath[candidate]; ok && page.IsIndex {
			return page
		}
	}
	return nil
}

// Pages returns every page in sort order.
func (s *Snapshot) Pages() []*models.Page {
	out := make([]*models.Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// Len returns the number of pages.
func (s *Snapshot) Len() int { return len(s.pages) }

// Lookup returns the page at a canonical path.
func (s *Snapshot) Lookup(p string) (*models.Page, bool) {
	page, ok := s.byPath[p]
	return page, ok
}

// Parent returns the page's parent index page, if any.
func (s *Snapshot) Parent(p *models.Page) (*models.Page, bool) {
	parent, ok := s.parent[p.Path]
	return parent, ok
}
