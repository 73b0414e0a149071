package markdown

import (
	"strings"
	"testing"
)

func render(t *testing.T, src string, opts ...Option) *Result {
	t.Helper()
	r, err := Render([]byte(src), opts...)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return r
}

func TestRender_HeadingsCarryIDAndAnchor(t *testing.T) {
	r := render(t, "# Hello World\n\n## Second *part*\n")

	if !strings.Contains(r.HTML, `<h1 id="hello-world">Hello World<a href="#hello-world"></a></h1>`) {
		t.Errorf("h1 not rewritten: %q", r.HTML)
	}
	if len(r.Headings) != 2 {
		t.Fatalf("len(headings) = %d, want 2", len(r.Headings))
	}
	if r.Headings[0].Text != "Hello World" || r.Headings[0].Level != 1 || r.Headings[0].Slug != "hello-world" {
		t.Errorf("heading[0] = %+v", r.Headings[0])
	}
	if r.Headings[1].Text != "Second part" || r.Headings[1].Level != 2 {
		t.Errorf("heading[1] = %+v", r.Headings[1])
	}
}

func TestRender_DuplicateSlugsDisambiguated(t *testing.T) {
	r := render(t, "# Intro\n\n# Intro\n\n## Intro\n")

	seen := make(map[string]struct{})
	for _, h := range r.Headings {
		if _, dup := seen[h.Slug]; dup {
			t.Fatalf("duplicate slug %q in %+v", h.Slug, r.Headings)
		}
		seen[h.Slug] = struct{}{}
	}
	if r.Headings[0].Slug != "intro" {
		t.Errorf("first slug = %q, want intro", r.Headings[0].Slug)
	}
}

func TestRender_UnicodeSlugs(t *testing.T) {
	r := render(t, "# 日本語\n\n# Ελληνικά Κείμενο\n\n# 日本語\n\n# ?!\n")

	want := []string{"日本語", "ελληνικά-κείμενο", "日本語-1", "heading"}
	if len(r.Headings) != len(want) {
		t.Fatalf("len(headings) = %d, want %d", len(r.Headings), len(want))
	}
	for i, h := range r.Headings {
		if h.Slug != want[i] {
			t.Errorf("heading[%d].Slug = %q, want %q", i, h.Slug, want[i])
		}
	}
	if !strings.Contains(r.HTML, `<h1 id="日本語">`) {
		t.Errorf("unicode id missing: %q", r.HTML)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"hello world":    "hello-world",
		"  a_b-c  ":      "a_b-c",
		"what's new?":    "whats-new",
		"café au lait":   "café-au-lait",
		"v1.2 (release)": "v12-release",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRender_ExternalLink(t *testing.T) {
	r := render(t, "[ex](https://example.com)")

	if !strings.Contains(r.HTML, `<a href="https://example.com" rel="external noopener noreferrer">ex</a>`) {
		t.Errorf("external link not rewritten: %q", r.HTML)
	}
	if len(r.Links) != 0 {
		t.Errorf("external link recorded: %v", r.Links)
	}
}

func TestRender_ExternalLinkWithTitle(t *testing.T) {
	r := render(t, `[ex](https://example.com "Example")`)
	if !strings.Contains(r.HTML, `rel="external noopener noreferrer" title="Example">ex</a>`) {
		t.Errorf("title missing: %q", r.HTML)
	}
}

func TestRender_DocumentLinkRewritten(t *testing.T) {
	r := render(t, "[Post B](post-b.md)")

	if !strings.Contains(r.HTML, `<a href="/post-b">Post B</a>`) {
		t.Errorf("document link not rewritten: %q", r.HTML)
	}
	if len(r.Links) != 1 || r.Links[0] != "post-b.md" {
		t.Errorf("links = %v, want [post-b.md]", r.Links)
	}
}

func TestRender_DocumentLinkWithResolverAndFragment(t *testing.T) {
	resolver := func(target string) string { return "/blog/" + StripExtension(target) }
	r := render(t, "[B](post-b.md#usage)", WithResolver(resolver))

	if !strings.Contains(r.HTML, `<a href="/blog/post-b#usage">B</a>`) {
		t.Errorf("fragment not preserved: %q", r.HTML)
	}
	if len(r.Links) != 1 || r.Links[0] != "post-b.md#usage" {
		t.Errorf("original target not recorded: %v", r.Links)
	}
}

func TestRender_OtherLinksUnchanged(t *testing.T) {
	r := render(t, "[img](assets/logo.png) and [top](#intro)")

	if !strings.Contains(r.HTML, `<a href="assets/logo.png">img</a>`) {
		t.Errorf("asset link changed: %q", r.HTML)
	}
	if !strings.Contains(r.HTML, `<a href="#intro">top</a>`) {
		t.Errorf("anchor link changed: %q", r.HTML)
	}
	if len(r.Links) != 0 {
		t.Errorf("links = %v, want none", r.Links)
	}
}

func TestRender_AutoLinkIsExternal(t *testing.T) {
	r := render(t, "see https://example.org now")
	if !strings.Contains(r.HTML, `<a href="https://example.org" rel="external noopener noreferrer">https://example.org</a>`) {
		t.Errorf("autolink not external: %q", r.HTML)
	}
}

func TestRender_GFMAndNoHardBreaks(t *testing.T) {
	r := render(t, "line one\nline two\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n")

	if strings.Contains(r.HTML, "<br") {
		t.Errorf("soft break rendered as <br>: %q", r.HTML)
	}
	if !strings.Contains(r.HTML, "<table>") {
		t.Errorf("GFM table missing: %q", r.HTML)
	}
	if !strings.Contains(r.HTML, "<del>gone</del>") {
		t.Errorf("strikethrough missing: %q", r.HTML)
	}
}

func TestRender_NoTypographerAndRawHTML(t *testing.T) {
	r := render(t, "\"quoted\" -- text\n\n<div class=\"x\">raw</div>\n")
	if !strings.Contains(r.HTML, "&quot;quoted&quot; -- text") {
		t.Errorf("typographic substitution applied: %q", r.HTML)
	}
	if !strings.Contains(r.HTML, `<div class="x">raw</div>`) {
		t.Errorf("raw HTML altered: %q", r.HTML)
	}
}

func TestRender_Deterministic(t *testing.T) {
	src := "# A\n\n[x](x.md) [y](https://y.dev)\n\n## A\n"
	a := render(t, src)
	b := render(t, src)
	if a.HTML != b.HTML {
		t.Errorf("render not deterministic")
	}
}

func TestIsExternal(t *testing.T) {
	cases := map[string]bool{
		"https://example.com": true,
		"mailto:a@b.c":        true,
		"//cdn.example.com/x": true,
		"post.md":             false,
		"/abs/path":           false,
		"#frag":               false,
	}
	for in, want := range cases {
		if got := IsExternal(in); got != want {
			t.Errorf("IsExternal(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsDocument(t *testing.T) {
	if !IsDocument("a/b.MD") {
		t.Error("expected uppercase extension to match")
	}
	if IsDocument(".md") || IsDocument("a.mdx") {
		t.Error("unexpected document match")
	}
}
