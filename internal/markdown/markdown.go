// Package markdown renders markdown documents to HTML with goldmark while
// collecting internal document links and headings.
package markdown

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/starford/raido/internal/models"
)

// Extension is the file extension of markdown documents.
const Extension = ".md"

// Resolver maps an internal document reference (query and fragment removed)
// to the href it is rendered with.
type Resolver func(target string) string

// Result holds the artifacts of rendering one document.
type Result struct {
	HTML     string
	Links    []string
	Headings []models.Heading
}

type options struct {
	resolve Resolver
}

// Option configures a Render call.
type Option func(*options)

// WithResolver sets how internal .md references are rewritten.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolve = r
		}
	}
}

// DefaultResolver strips the extension and roots the target at "/".
func DefaultResolver(target string) string {
	return path.Join("/", StripExtension(target))
}

// StripExtension removes a trailing markdown extension, in any case.
func StripExtension(target string) string {
	if IsDocument(target) {
		return target[:len(target)-len(Extension)]
	}
	return target
}

// IsDocument reports whether target names a markdown document.
func IsDocument(target string) bool {
	return len(target) > len(Extension) && strings.EqualFold(target[len(target)-len(Extension):], Extension)
}

// Render converts markdown to HTML. It never rejects input; malformed
// constructs produce goldmark's best-effort output. The only error source is
// the output buffer.
func Render(src []byte, opts ...Option) (*Result, error) {
	o := options{resolve: DefaultResolver}
	for _, opt := range opts {
		opt(&o)
	}

	nr := &nodeRenderer{resolve: o.resolve}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(nr, 100)),
		),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	if err := md.Convert(src, &buf, parser.WithContext(pctx)); err != nil {
		return nil, fmt.Errorf("markdown: convert: %w", err)
	}

	return &Result{
		HTML:     buf.String(),
		Links:    nr.links,
		Headings: nr.headings,
	}, nil
}
