// Package build turns a page snapshot into the set of output files of a site
// and drives a full build pass.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/pages"
	"github.com/starford/raido/internal/render"
)

// DocumentRenderer produces the final documents of a site. A false result
// means the view produced nothing and the document must be left out.
type DocumentRenderer interface {
	RenderPage(page *models.Page, ctx render.PageContext, site render.Site) (string, bool, error)
	RenderTag(tag models.TagPage, ctx render.TagContext, site render.Site) (string, bool, error)
	RenderFeed(pages []*models.Page, site render.Site) (string, bool, error)
}

// Options configures how output files are produced.
type Options struct {
	OutputRoot  string
	Head        string
	Dev         bool
	Site        render.Site
	FeedPath    string // relative to OutputRoot; empty disables the feed
	Concurrency int
	Logger      *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return 1
	}
	return o.Concurrency
}

// ContentDestination is where a page with the given canonical path is written.
func ContentDestination(outputRoot, pagePath string) string {
	return filepath.Join(outputRoot, filepath.FromSlash(strings.TrimPrefix(pagePath, "/")), "index.html")
}

// TagDestination is where the listing of a tag is written. A tag must name
// a single directory under tag/.
func TagDestination(outputRoot, tag string) (string, error) {
	if tag == "" || tag == "." || tag == ".." || strings.ContainsAny(tag, `/\`) {
		return "", fmt.Errorf("build: tag %q: %w", tag, apperr.ErrInvalidPath)
	}
	return filepath.Join(outputRoot, "tag", tag, "index.html"), nil
}

// PageContextFor resolves the graph relationships a page view needs.
func PageContextFor(s *pages.Snapshot, page *models.Page, opts Options) render.PageContext {
	ctx := render.PageContext{
		Head:          opts.Head,
		Dev:           opts.Dev,
		BacklinkPages: pages.BacklinkPages(s, page),
		PagesByTag:    make(map[string][]*models.Page, len(page.Tags)),
		Crumbs:        pages.Ancestors(s, page),
	}
	if page.IsIndex {
		ctx.ChildPages = pages.ChildPages(s, page)
		ctx.ChildTags = pages.ChildTags(s, page)
	}
	for _, tag := range page.Tags {
		ctx.PagesByTag[tag] = pages.PagesByTag(s, tag)
	}
	return ctx
}

// BuildContentFiles renders every page of s. Pages whose view yields nothing
// are omitted and reported; the returned files keep the snapshot order.
func BuildContentFiles(ctx context.Context, s *pages.Snapshot, r DocumentRenderer, opts Options) ([]models.OutputFile, []string, error) {
	all := s.Pages()
	results := make([]*models.GeneratedFile, len(all))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency())
	for i, page := range all {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			content, ok, err := r.RenderPage(page, PageContextFor(s, page, opts), opts.Site)
			if err != nil {
				return fmt.Errorf("build: page %s: %w", page.Path, err)
			}
			if ok {
				results[i] = &models.GeneratedFile{Path: ContentDestination(opts.OutputRoot, page.Path), Content: content}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		files   []models.OutputFile
		omitted []string
	)
	for i, f := range results {
		if f == nil {
			omitted = append(omitted, all[i].Path)
			opts.logger().Warn("build: page omitted, view rendered nothing", slog.String("path", all[i].Path))
			continue
		}
		files = append(files, *f)
	}
	return files, omitted, nil
}

// BuildTagFiles renders one listing per tag under tag/<name>/index.html.
func BuildTagFiles(ctx context.Context, tags []models.TagPage, r DocumentRenderer, opts Options) ([]models.OutputFile, []string, error) {
	results := make([]*models.GeneratedFile, len(tags))
	tctx := render.TagContext{Head: opts.Head, Dev: opts.Dev}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency())
	for i, tag := range tags {
		dst, err := TagDestination(opts.OutputRoot, tag.Name)
		if err != nil {
			return nil, nil, err
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			content, ok, err := r.RenderTag(tag, tctx, opts.Site)
			if err != nil {
				return fmt.Errorf("build: tag %s: %w", tag.Name, err)
			}
			if ok {
				results[i] = &models.GeneratedFile{Path: dst, Content: content}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		files   []models.OutputFile
		omitted []string
	)
	for i, f := range results {
		if f == nil {
			omitted = append(omitted, "tag/"+tags[i].Name)
			opts.logger().Warn("build: tag omitted, view rendered nothing", slog.String("tag", tags[i].Name))
			continue
		}
		files = append(files, *f)
	}
	return files, omitted, nil
}

// BuildFeedFile renders the feed from the full page set. It reports false
// when no feed path is configured or the template produced nothing.
func BuildFeedFile(s *pages.Snapshot, r DocumentRenderer, opts Options) (models.GeneratedFile, bool, error) {
	if opts.FeedPath == "" {
		return models.GeneratedFile{}, false, nil
	}
	content, ok, err := r.RenderFeed(s.Pages(), opts.Site)
	if err != nil {
		return models.GeneratedFile{}, false, fmt.Errorf("build: feed: %w", err)
	}
	if !ok {
		return models.GeneratedFile{}, false, nil
	}
	dst := filepath.Join(opts.OutputRoot, filepath.FromSlash(path.Clean("/" + opts.FeedPath)[1:]))
	return models.GeneratedFile{Path: dst, Content: content}, true, nil
}

// StaticFiles maps static source entries to copies under outputRoot,
// preserving their position relative to inputRoot. Entries outside
// inputRoot are rejected.
func StaticFiles(entries []string, inputRoot, outputRoot string) ([]models.OutputFile, error) {
	files := make([]models.OutputFile, 0, len(entries))
	for _, src := range entries {
		rel, err := filepath.Rel(inputRoot, src)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("build: static %s outside %s: %w", src, inputRoot, apperr.ErrInvalidPath)
		}
		files = append(files, models.CopiedFile{Source: src, Path: filepath.Join(outputRoot, rel)})
	}
	return files, nil
}

// CheckDestinations fails when two output files target the same destination.
func CheckDestinations(files []models.OutputFile) error {
	seen := make(map[string]models.OutputFile, len(files))
	for _, f := range files {
		dst := filepath.Clean(f.Destination())
		if prev, ok := seen[dst]; ok {
			return fmt.Errorf("build: %s written by %s and %s: %w", dst, describe(prev), describe(f), apperr.ErrDestinationConflict)
		}
		seen[dst] = f
	}
	return nil
}

func describe(f models.OutputFile) string {
	switch v := f.(type) {
	case models.CopiedFile:
		return "copy of " + v.Source
	default:
		return "generated content"
	}
}
