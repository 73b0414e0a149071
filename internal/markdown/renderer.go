package markdown

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/starford/raido/internal/models"
)

const externalRel = "external noopener noreferrer"

// nodeRenderer overrides goldmark's heading and link output. One instance
// serves exactly one Render call and accumulates that document's links and
// headings.
type nodeRenderer struct {
	resolve  Resolver
	links    []string
	headings []models.Heading
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
}

func (r *nodeRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	slug := headingID(n)
	level := strconv.Itoa(n.Level)

	if entering {
		r.headings = append(r.headings, models.Heading{
			Text:  plainText(n, source),
			Level: n.Level,
			Slug:  slug,
		})
		_, _ = w.WriteString("<h" + level)
		if slug != "" {
			_, _ = w.WriteString(` id="`)
			_, _ = w.Write(util.EscapeHTML([]byte(slug)))
			_ = w.WriteByte('"')
		}
		_ = w.WriteByte('>')
		return ast.WalkContinue, nil
	}

	if slug != "" {
		_, _ = w.WriteString(`<a href="#`)
		_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(slug), true)))
		_, _ = w.WriteString(`"></a>`)
	}
	_, _ = w.WriteString("</h" + level + ">\n")
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	r.openAnchor(w, string(n.Destination), n.Title)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.AutoLink)
	if !entering {
		return ast.WalkContinue, nil
	}
	dest := string(n.URL(source))
	if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(dest), "mailto:") {
		dest = "mailto:" + dest
	}
	r.openAnchor(w, dest, nil)
	_, _ = w.Write(util.EscapeHTML(n.Label(source)))
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) openAnchor(w util.BufWriter, dest string, title []byte) {
	href, external := r.rewrite(dest)

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(href), true)))
	_ = w.WriteByte('"')
	if external {
		_, _ = w.WriteString(` rel="` + externalRel + `"`)
	}
	if len(title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(title))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
}

// rewrite classifies a link destination. External links are returned as is;
// markdown document references are recorded and resolved; everything else
// passes through unchanged.
func (r *nodeRenderer) rewrite(dest string) (string, bool) {
	if IsExternal(dest) {
		return dest, true
	}
	target, suffix := SplitSuffix(dest)
	if IsDocument(target) {
		r.links = append(r.links, dest)
		return r.resolve(target) + suffix, false
	}
	return dest, false
}

// IsExternal reports whether dest carries an explicit scheme or is
// protocol-relative.
func IsExternal(dest string) bool {
	if strings.HasPrefix(dest, "//") {
		return true
	}
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.Scheme != ""
}

// SplitSuffix splits dest into its path and the trailing query/fragment.
func SplitSuffix(dest string) (string, string) {
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		return dest[:i], dest[i:]
	}
	return dest, ""
}

func headingID(n *ast.Heading) string {
	v, ok := n.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}

// plainText concatenates the text content of n, ignoring markup.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(source))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
