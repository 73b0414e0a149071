// Package render turns pages and their resolved graph context into complete
// HTML documents and the Atom feed. It knows nothing about the page graph
// beyond what it is handed.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

//go:embed views
var embeddedViews embed.FS

const (
	pageView     = "page.html"
	tagView      = "tag.html"
	documentView = "document.html"
	baseStyle    = "views/base.css"
)

const reloadScript = `<script>
(() => {
  const events = new EventSource("/_raido/events");
  events.addEventListener("reload", () => location.reload());
})();
</script>`

// PageContext carries a page's resolved relationships and build flags.
type PageContext struct {
	Head          string
	Dev           bool
	ChildPages    []*models.Page
	BacklinkPages []*models.Page
	PagesByTag    map[string][]*models.Page
	ChildTags     []string
	Crumbs        []*models.Page
}

// TagContext carries the build flags for a tag page.
type TagContext struct {
	Head string
	Dev  bool
}

// Options configures a Renderer.
type Options struct {
	// ViewsDir overrides the embedded views with files of the same name.
	ViewsDir string
	// FeedTemplate overrides the embedded feed template.
	FeedTemplate string
}

// Renderer renders documents from a parsed view set. It is safe for
// concurrent use: every render works on its own clone of the views.
type Renderer struct {
	views        *template.Template
	feed         feedTemplate
	baseCSS      string
	highlightCSS string
}

// New parses the embedded views, applies overrides, and prepares the
// highlight stylesheet when site enables code highlighting.
func New(opts Options, site Site) (*Renderer, error) {
	views := template.New("views").Funcs(viewFuncs(nil))

	sub, err := fs.Sub(embeddedViews, "views")
	if err != nil {
		return nil, fmt.Errorf("render: views: %w", err)
	}
	if views, err = views.ParseFS(sub, "*.html"); err != nil {
		return nil, fmt.Errorf("render: parse views: %w", err)
	}

	if opts.ViewsDir != "" {
		dir := os.DirFS(opts.ViewsDir)
		matches, err := fs.Glob(dir, "*.html")
		if err != nil {
			return nil, fmt.Errorf("render: glob views: %w", err)
		}
		if len(matches) > 0 {
			if views, err = views.ParseFS(dir, matches...); err != nil {
				return nil, fmt.Errorf("render: parse views %s: %w", opts.ViewsDir, err)
			}
		}
	}

	base, err := embeddedViews.ReadFile(baseStyle)
	if err != nil {
		return nil, fmt.Errorf("render: base style: %w", err)
	}

	feed, err := parseFeedTemplate(opts.FeedTemplate)
	if err != nil {
		return nil, err
	}

	r := &Renderer{views: views, feed: feed, baseCSS: string(base)}
	if site.CodeHighlight {
		if r.highlightCSS, err = HighlightCSS(site.HighlightStyle); err != nil {
			return nil, err
		}
	}
	return r, nil
}

type pageData struct {
	Page          *models.Page
	Body          template.HTML
	ShowTitle     bool
	Dev           bool
	ChildPages    []*models.Page
	BacklinkPages []*models.Page
	PagesByTag    map[string][]*models.Page
	ChildTags     []string
	Crumbs        []*models.Page
	Site          Site
}

type tagData struct {
	Name  string
	Pages []*models.Page
	Dev   bool
	Site  Site
}

type documentData struct {
	Lang        string
	Title       string
	SiteTitle   string
	Description string
	URL         string
	FeedURL     string
	Styles      template.HTML
	Head        template.HTML
	Reload      template.HTML
	Body        template.HTML
}

// RenderPage renders a content page. The boolean is false when the page view
// produced no content, in which case the page should be left out.
func (r *Renderer) RenderPage(page *models.Page, ctx PageContext, site Site) (string, bool, error) {
	data := pageData{
		Page:          page,
		Body:          template.HTML(page.HTML),
		ShowTitle:     !hasTitleHeading(page),
		Dev:           ctx.Dev,
		ChildPages:    ctx.ChildPages,
		BacklinkPages: ctx.BacklinkPages,
		PagesByTag:    ctx.PagesByTag,
		ChildTags:     ctx.ChildTags,
		Crumbs:        ctx.Crumbs,
		Site:          site,
	}
	doc := documentData{
		Title:       site.DocumentTitle(page.Title),
		Description: site.DocumentDescription(page.Description),
		URL:         site.URL(page.Path),
	}
	return r.render(pageView, data, doc, ctx.Head, ctx.Dev, site)
}

// RenderTag renders the listing page of one tag.
func (r *Renderer) RenderTag(tag models.TagPage, ctx TagContext, site Site) (string, bool, error) {
	data := tagData{Name: tag.Name, Pages: tag.Pages, Dev: ctx.Dev, Site: site}
	doc := documentData{
		Title:       site.DocumentTitle("#" + tag.Name),
		Description: site.DocumentDescription(""),
		URL:         site.URL("/tag/" + tag.Name),
	}
	return r.render(tagView, data, doc, ctx.Head, ctx.Dev, site)
}

// render executes a body view and wraps it in the document shell. The style
// accumulator lives only for the duration of this call.
func (r *Renderer) render(view string, data any, doc documentData, head string, dev bool, site Site) (string, bool, error) {
	styles := NewStyles()
	styles.Insert(r.baseCSS, PriorityBase)

	views, err := r.views.Clone()
	if err != nil {
		return "", false, fmt.Errorf("render: clone views: %w", err)
	}
	views.Funcs(viewFuncs(styles))

	var body bytes.Buffer
	if err := views.ExecuteTemplate(&body, view, data); err != nil {
		return "", false, fmt.Errorf("render: %s: %w", view, err)
	}
	if strings.TrimSpace(body.String()) == "" {
		return "", false, nil
	}

	if r.highlightCSS != "" {
		styles.Insert(r.highlightCSS, PriorityHighlight)
	}

	doc.Lang = site.lang()
	doc.SiteTitle = site.Title
	doc.FeedURL = site.FeedURL
	doc.Styles = styles.Tag()
	doc.Head = template.HTML(head)
	doc.Body = template.HTML(body.String())
	if dev {
		doc.Reload = template.HTML(reloadScript)
	}

	var out bytes.Buffer
	if err := views.ExecuteTemplate(&out, documentView, doc); err != nil {
		return "", false, fmt.Errorf("render: %s: %w", documentView, err)
	}
	return out.String(), true, nil
}

// viewFuncs returns the template functions bound to one render. A nil
// accumulator is only used while parsing.
func viewFuncs(styles *Styles) template.FuncMap {
	return template.FuncMap{
		"style": func(css string, priority ...int) string {
			if styles == nil {
				return ""
			}
			p := PriorityView
			if len(priority) > 0 {
				p = priority[0]
			}
			styles.Insert(css, p)
			return ""
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"isoDate": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
	}
}

func hasTitleHeading(page *models.Page) bool {
	for _, h := range page.Headings {
		if h.Level == 1 {
			return true
		}
	}
	return false
}
