package models

import (
	"slices"
	"time"
)

// Page is a rendered document addressed by its canonical URL path.
//
// Relationships (children, backlinks, tag membership) are not stored here;
// they are queried from an immutable page snapshot.
type Page struct {
	Path        string         `json:"path"`
	Source      string         `json:"source"`
	IsIndex     bool           `json:"is_index"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Order       *float64       `json:"order,omitempty"`
	Date        time.Time      `json:"date,omitempty"`
	HTML        string         `json:"-"`
	Headings    []Heading      `json:"headings,omitempty"`
	// Links holds the original .md targets in document order.
	Links []string `json:"links,omitempty"`
	// LinkPaths holds the canonical path each entry of Links resolves to.
	LinkPaths []string `json:"link_paths,omitempty"`
	Checksum  string   `json:"checksum"`
}

// HasTag reports whether tag is one of the page's tags.
func (p *Page) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// LinksTo reports whether any resolved link of p targets path.
func (p *Page) LinksTo(path string) bool {
	return slices.Contains(p.LinkPaths, path)
}

// Param returns a front matter value by key.
func (p *Page) Param(key string) any {
	if p.Frontmatter == nil {
		return nil
	}
	return p.Frontmatter[key]
}

// TagPage is a synthetic listing of every page carrying one tag.
type TagPage struct {
	Name  string  `json:"name"`
	Pages []*Page `json:"pages"`
}
