package render

import "strings"

// NavLink is one entry of the site navigation.
type NavLink struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Author identifies the site author.
type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	URL   string `yaml:"url"`
}

// Site is the site-wide configuration consumed by the renderer.
type Site struct {
	Title          string
	Description    string
	Lang           string
	BaseURL        string
	NavLinks       []NavLink
	Author         Author
	CodeHighlight  bool
	HighlightStyle string
	// FeedURL is the public path of the feed, e.g. "/feed.xml". Empty disables
	// the alternate link.
	FeedURL string
}

// URL returns the absolute URL of a site path. Without a base URL the path is
// returned as is.
func (s Site) URL(p string) string {
	base := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}

func (s Site) lang() string {
	if s.Lang == "" {
		return "en"
	}
	return s.Lang
}

// DocumentTitle returns the page title alone when it equals the site title,
// otherwise "<page> · <site>".
func (s Site) DocumentTitle(pageTitle string) string {
	if pageTitle == s.Title || s.Title == "" {
		return pageTitle
	}
	if pageTitle == "" {
		return s.Title
	}
	return pageTitle + " · " + s.Title
}

// DocumentDescription falls back to the site description.
func (s Site) DocumentDescription(pageDescription string) string {
	if pageDescription != "" {
		return pageDescription
	}
	return s.Description
}
