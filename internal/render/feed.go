package render

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/starford/raido/internal/models"
)

const (
	feedView     = "views/feed.xml"
	maxFeedItems = 100
)

type feedTemplate = *template.Template

type feedEntry struct {
	Title   string
	Link    string
	ID      string
	Updated time.Time
	Summary string
	Content string
	Tags    []string
}

type feedData struct {
	Site    Site
	ID      string
	Self    string
	Updated time.Time
	Entries []feedEntry
}

func parseFeedTemplate(path string) (feedTemplate, error) {
	var (
		src []byte
		err error
	)
	if path != "" {
		src, err = os.ReadFile(path)
	} else {
		src, err = embeddedViews.ReadFile(feedView)
	}
	if err != nil {
		return nil, fmt.Errorf("render: read feed template: %w", err)
	}

	tpl, err := template.New("feed").Funcs(template.FuncMap{
		"xml": html.EscapeString,
		"isoDate": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
	}).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("render: parse feed template: %w", err)
	}
	return tpl, nil
}

// RenderFeed renders the Atom feed for the full page set: newest first, at
// most 100 entries. The feed's updated stamp is the newest page date, so the
// output only changes when the content does.
func (r *Renderer) RenderFeed(pages []*models.Page, site Site) (string, bool, error) {
	ordered := slices.Clone(pages)
	slices.SortStableFunc(ordered, func(a, b *models.Page) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	if len(ordered) > maxFeedItems {
		ordered = ordered[:maxFeedItems]
	}

	data := feedData{
		Site: site,
		ID:   site.URL("/"),
		Self: site.URL(site.FeedURL),
	}
	for _, p := range ordered {
		if p.Date.After(data.Updated) {
			data.Updated = p.Date
		}
		data.Entries = append(data.Entries, feedEntry{
			Title:   p.Title,
			Link:    site.URL(p.Path),
			ID:      site.URL(p.Path),
			Updated: p.Date,
			Summary: p.Description,
			Content: p.HTML,
			Tags:    p.Tags,
		})
	}
	if data.Updated.IsZero() {
		data.Updated = time.Unix(0, 0)
	}

	var buf bytes.Buffer
	if err := r.feed.Execute(&buf, data); err != nil {
		return "", false, fmt.Errorf("render: feed: %w", err)
	}
	if strings.TrimSpace(buf.String()) == "" {
		return "", false, nil
	}
	return buf.String(), true, nil
}
