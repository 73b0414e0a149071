package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/pages"
	"github.com/starford/raido/internal/testutil"
)

// testEnv records a small blog into a temp index and returns its router.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	db := testutil.TestDB(t)

	s, err := pages.Build(context.Background(), []*models.Document{
		{Path: "index.md", Title: "Home"},
		{Path: "blog/index.md", Title: "Blog"},
		{Path: "blog/post-a.md", Title: "Post A", Body: "See [B](post-b.md).", Tags: []string{"go"}},
		{Path: "blog/post-b.md", Title: "Post B", Body: "findme", Tags: []string{"go", "x"}},
	}, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := db.Record(context.Background(), s); err != nil {
		t.Fatalf("Record: %v", err)
	}
	return NewRouter(db, authToken != "", authToken)
}

func get(t *testing.T, h http.Handler, target string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return w.Code
}

func TestGetPage(t *testing.T) {
	h := testEnv(t, "")

	var detail PageDetail
	if code := get(t, h, "/pages/blog/post-b", &detail); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if detail.Title != "Post B" || detail.Parent != "/blog" {
		t.Errorf("detail = %+v", detail)
	}
	if len(detail.Backlinks) != 1 || detail.Backlinks[0].Path != "/blog/post-a" {
		t.Errorf("backlinks = %+v", detail.Backlinks)
	}
	if detail.Children == nil || len(detail.Children) != 0 {
		t.Errorf("children = %+v, want empty list", detail.Children)
	}
}

func TestGetPage_EncodedAndRoot(t *testing.T) {
	h := testEnv(t, "")

	var detail PageDetail
	if code := get(t, h, "/pages/blog%2Fpost-a", &detail); code != http.StatusOK || detail.Path != "/blog/post-a" {
		t.Errorf("encoded: status = %d, detail = %+v", code, detail)
	}
	var root PageDetail
	if code := get(t, h, "/pages/", &root); code != http.StatusOK || root.Path != "/" {
		t.Errorf("root: status = %d, detail = %+v", code, root)
	}
	if len(root.Children) != 1 || root.Children[0].Path != "/blog" {
		t.Errorf("root children = %+v", root.Children)
	}
}

func TestGetPage_NotFound(t *testing.T) {
	h := testEnv(t, "")
	if code := get(t, h, "/pages/missing", nil); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestChildrenAndTags(t *testing.T) {
	h := testEnv(t, "")

	var children PageListResponse
	get(t, h, "/children/blog", &children)
	if len(children.Pages) != 2 {
		t.Errorf("children = %+v", children.Pages)
	}

	var tags TagListResponse
	get(t, h, "/tags", &tags)
	if len(tags.Tags) != 2 || tags.Tags[0].Tag != "go" || tags.Tags[0].Count != 2 {
		t.Errorf("tags = %+v", tags.Tags)
	}

	var tagged PageListResponse
	get(t, h, "/tags/x", &tagged)
	if len(tagged.Pages) != 1 || tagged.Pages[0].Path != "/blog/post-b" {
		t.Errorf("tagged = %+v", tagged.Pages)
	}
}

func TestSearch(t *testing.T) {
	h := testEnv(t, "")

	if code := get(t, h, "/search", nil); code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", code)
	}
	var res SearchResponse
	if code := get(t, h, "/search?q=findme", &res); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(res.Results) != 1 || res.Results[0].Path != "/blog/post-b" {
		t.Errorf("results = %+v", res.Results)
	}
}

func TestGraph(t *testing.T) {
	h := testEnv(t, "")
	var g GraphResponse
	get(t, h, "/graph", &g)
	if len(g.Nodes) != 4 || len(g.Links) != 1 {
		t.Errorf("graph = %+v", g)
	}
}

func TestAuth(t *testing.T) {
	h := testEnv(t, "secret")

	if code := get(t, h, "/tags", nil); code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", code)
	}

	bad := httptest.NewRequest(http.MethodGet, "/tags", nil)
	bad.Header.Set("Authorization", "Bearer secre")
	bw := httptest.NewRecorder()
	h.ServeHTTP(bw, bad)
	if bw.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", bw.Code)
	}
	if got := bw.Header().Get("WWW-Authenticate"); got == "" {
		t.Error("401 without WWW-Authenticate challenge")
	}
	var body ErrorResponse
	if err := json.NewDecoder(bw.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error == "" || body.Path != "/tags" {
		t.Errorf("error body = %+v", body)
	}

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d", w.Code)
	}
}

func TestErrorBody(t *testing.T) {
	h := middleware.RequestID(testEnv(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/pages/missing", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "page not found" || body.Path != "/pages/missing" || body.RequestID == "" {
		t.Errorf("error body = %+v", body)
	}
}
