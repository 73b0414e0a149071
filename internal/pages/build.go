package pages

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/markdown"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
)

// NewPage renders doc and resolves its links relative to the document.
func NewPage(doc *models.Document) (*models.Page, error) {
	canonical, err := CanonicalPath(doc.Path)
	if err != nil {
		return nil, err
	}

	res, err := markdown.Render([]byte(doc.Body), markdown.WithResolver(Resolver(doc.Path)))
	if err != nil {
		return nil, fmt.Errorf("pages: render %s: %w", doc.Path, err)
	}

	var linkPaths []string
	for _, target := range res.Links {
		if p, ok := ResolveLink(doc.Path, target); ok {
			linkPaths = append(linkPaths, p)
		}
	}

	title := doc.Title
	if title == "" {
		title = parser.FallbackTitle(doc.Path)
	}

	return &models.Page{
		Path:        canonical,
		Source:      doc.Path,
		IsIndex:     IsIndexDocument(doc.Path),
		Title:       title,
		Description: doc.Description,
		Tags:        doc.Tags,
		Frontmatter: doc.Frontmatter,
		Order:       doc.Order,
		Date:        doc.Date,
		HTML:        res.HTML,
		Headings:    res.Headings,
		Links:       res.Links,
		LinkPaths:   linkPaths,
		Checksum:    doc.Checksum,
	}, nil
}

// Build renders every document and indexes the result. Rendering runs on up
// to concurrency goroutines; the snapshot is only assembled once every page
// is known, so link resolution never depends on processing order.
func Build(ctx context.Context, docs []*models.Document, concurrency int) (*Snapshot, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	out := make([]*models.Page, len(docs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			page, err := NewPage(doc)
			if err != nil {
				return err
			}
			out[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewSnapshot(out)
}
