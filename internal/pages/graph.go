package pages

import (
	"slices"

	"github.com/starford/raido/internal/models"
)

// PagesByTag returns every page whose tag set contains tag, in sort order.
func PagesByTag(s *Snapshot, tag string) []*models.Page {
	var out []*models.Page
	for _, p := range s.pages {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// ChildPages returns the pages whose nearest ancestor index page is page.
// Non-index pages have no children.
func ChildPages(s *Snapshot, page *models.Page) []*models.Page {
	if !page.IsIndex {
		return nil
	}
	var out []*models.Page
	for _, p := range s.pages {
		if parent, ok := s.parent[p.Path]; ok && parent.Path == page.Path {
			out = append(out, p)
		}
	}
	return out
}

// ChildTags returns the sorted union of tags across ChildPages(s, page).
func ChildTags(s *Snapshot, page *models.Page) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, child := range ChildPages(s, page) {
		for _, tag := range child.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	slices.Sort(out)
	return out
}

// BacklinkPages returns every other page whose resolved links contain the
// canonical path of page.
func BacklinkPages(s *Snapshot, page *models.Page) []*models.Page {
	var out []*models.Page
	for _, p := range s.pages {
		if p.Path == page.Path {
			continue
		}
		if p.LinksTo(page.Path) {
			out = append(out, p)
		}
	}
	return out
}

// Tags returns every distinct tag in the snapshot, sorted by name.
func Tags(s *Snapshot) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.pages {
		for _, tag := range p.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	slices.Sort(out)
	return out
}

// TagPages returns one TagPage per distinct tag, sorted by tag name.
func TagPages(s *Snapshot) []models.TagPage {
	tags := Tags(s)
	out := make([]models.TagPage, 0, len(tags))
	for _, tag := range tags {
		out = append(out, models.TagPage{Name: tag, Pages: PagesByTag(s, tag)})
	}
	return out
}

// Ancestors returns the chain of parent index pages from the root down to the
// direct parent of page.
func Ancestors(s *Snapshot, page *models.Page) []*models.Page {
	var chain []*models.Page
	for cur, ok := s.Parent(page); ok; cur, ok = s.Parent(cur) {
		chain = append(chain, cur)
	}
	slices.Reverse(chain)
	return chain
}

// OutgoingPages returns the existing pages that page links to, in sort order.
// Targets that do not resolve to a page are ordinary links and are skipped.
func OutgoingPages(s *Snapshot, page *models.Page) []*models.Page {
	var out []*models.Page
	for _, p := range s.pages {
		if p.Path != page.Path && page.LinksTo(p.Path) {
			out = append(out, p)
		}
	}
	return out
}
