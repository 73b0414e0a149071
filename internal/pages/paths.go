package pages

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/markdown"
)

const indexName = "index"

// CanonicalPath derives the URL path of a document from its slash-separated
// path relative to the input root. An index document maps to its directory.
//
//	blog/post-a.md -> /blog/post-a
//	blog/index.md  -> /blog
//	index.md       -> /
func CanonicalPath(docPath string) (string, error) {
	p := strings.ReplaceAll(docPath, "\\", "/")
	if !markdown.IsDocument(p) {
		return "", fmt.Errorf("pages: %w: not a markdown document: %s", apperr.ErrInvalidPath, docPath)
	}
	// Cleaning a rooted path clamps ".." at the root.
	cleaned := path.Clean("/" + markdown.StripExtension(p))
	if strings.EqualFold(path.Base(cleaned), indexName) {
		cleaned = path.Dir(cleaned)
	}
	return cleaned, nil
}

// IsIndexDocument reports whether docPath is a directory's index document.
func IsIndexDocument(docPath string) bool {
	base := path.Base(strings.ReplaceAll(docPath, "\\", "/"))
	return strings.EqualFold(base, indexName+markdown.Extension)
}

// ResolveLink resolves an internal .md link target found in the document at
// docPath to the canonical path it references. Relative targets are resolved
// against the document's directory; query and fragment are ignored. The
// result is a candidate only: it may not name an existing page.
func ResolveLink(docPath, target string) (string, bool) {
	if markdown.IsExternal(target) {
		return "", false
	}
	t, _ := markdown.SplitSuffix(target)
	if !markdown.IsDocument(t) {
		return "", false
	}
	var joined string
	if strings.HasPrefix(t, "/") {
		joined = t
	} else {
		joined = path.Join("/", path.Dir(strings.ReplaceAll(docPath, "\\", "/")), t)
	}
	canonical, err := CanonicalPath(joined)
	if err != nil {
		return "", false
	}
	return canonical, true
}

// Resolver returns a markdown.Resolver rendering internal references found in
// docPath as canonical URL paths.
func Resolver(docPath string) markdown.Resolver {
	return func(target string) string {
		if p, ok := ResolveLink(docPath, target); ok {
			return p
		}
		return markdown.DefaultResolver(target)
	}
}

// segments splits a canonical path into its components; "/" has none.
func segments(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
