package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/build"
	"github.com/starford/raido/internal/pages"
	"github.com/starford/raido/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	_, store := testutil.TestSource(t, map[string]string{
		"index.md":       "# Home\n",
		"blog/index.md":  "# Blog\n",
		"blog/post-a.md": "---\ntags: [go]\n---\n# Post A\n\nSee [B](post-b.md).\n",
		"blog/post-b.md": "---\ntags: [go, x]\n---\n# Post B\n\nfindme\n",
	})
	db := testutil.TestDB(t)

	ctx := context.Background()
	docs, err := build.LoadDocuments(ctx, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := pages.Build(ctx, docs, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Record(ctx, snap); err != nil {
		t.Fatal(err)
	}
	return New(store, db, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// called directly.
	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "search_pages":
		result, err = srv.searchPages(ctx, req)
	case "read_page":
		result, err = srv.readPage(ctx, req)
	case "list_sources":
		result, err = srv.listSources(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "child_pages":
		result, err = srv.childPages(ctx, req)
	case "pages_by_tag":
		result, err = srv.pagesByTag(ctx, req)
	case "get_page_format":
		result, err = srv.getPageFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadPage(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_page", map[string]any{"path": "/blog/post-b"})
	if r.IsError {
		t.Fatalf("read_page error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "findme") {
		t.Errorf("read result = %q", resultText(r))
	}

	r = callTool(t, srv, "read_page", map[string]any{"path": "blog/post-a"})
	if !strings.Contains(resultText(r), "# Post A") {
		t.Errorf("path without leading slash: %q", resultText(r))
	}
}

func TestReadPageMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_page", map[string]any{"path": "/nope"})
	if !r.IsError {
		t.Error("expected error for missing page")
	}
}

func TestListSources(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_sources", map[string]any{})
	if got := strings.Split(resultText(r), "\n"); len(got) != 4 {
		t.Errorf("sources = %v", got)
	}
	r = callTool(t, srv, "list_sources", map[string]any{"folder": "blog"})
	if got := strings.Split(resultText(r), "\n"); len(got) != 3 {
		t.Errorf("blog sources = %v", got)
	}
}

func TestGetBacklinks(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_backlinks", map[string]any{"path": "/blog/post-b"})
	if text := resultText(r); text != "/blog/post-a\tPost A" {
		t.Errorf("backlinks = %q", text)
	}
	r = callTool(t, srv, "get_backlinks", map[string]any{"path": "/"})
	if text := resultText(r); text != "no backlinks found" {
		t.Errorf("backlinks of / = %q", text)
	}
}

func TestChildPages(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "child_pages", map[string]any{"path": "/"})
	if text := resultText(r); text != "/blog\tBlog" {
		t.Errorf("children = %q", text)
	}
}

func TestPagesByTag(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "pages_by_tag", map[string]any{"tag": "x"})
	if text := resultText(r); text != "/blog/post-b\tPost B" {
		t.Errorf("tagged = %q", text)
	}
	r = callTool(t, srv, "pages_by_tag", map[string]any{})
	if text := resultText(r); !strings.Contains(text, `"tag": "go"`) || !strings.Contains(text, `"count": 2`) {
		t.Errorf("tag list = %q", text)
	}
}

func TestSearchPages(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_pages", map[string]any{"query": "findme"})
	if text := resultText(r); !strings.Contains(text, `"path": "/blog/post-b"`) {
		t.Errorf("search = %q", text)
	}
}

func TestGetPageFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_page_format", map[string]any{})
	if resultText(r) != PageFormat {
		t.Error("page format mismatch")
	}
}
