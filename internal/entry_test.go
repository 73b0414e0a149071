package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/testutil"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "content")
	testutil.WriteFiles(t, input, map[string]string{
		"index.md":       "# Home\n",
		"blog/index.md":  "# Blog\n",
		"blog/post-a.md": "---\ntags: [go]\ndate: 2024-03-01\n---\n# Post A\n\nSee [B](post-b.md).\n",
		"blog/post-b.md": "# Post B\n",
		"img/logo.png":   "png",
	})

	cfg := NewDefaultConfig()
	cfg.Site.Title = "Test"
	cfg.Build.Input = input
	cfg.Build.Output = filepath.Join(input, "public")
	cfg.Build.Quiet = true
	cfg.Index.Path = filepath.Join(dir, "raido.db")
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestBuild_EndToEnd(t *testing.T) {
	cfg := testConfig(t)

	report, err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Pages != 4 || report.Copied != 1 {
		t.Errorf("report = %+v", report)
	}

	for _, p := range []string{"index.html", "blog/index.html", "blog/post-a/index.html", "tag/go/index.html", "feed.xml", "img/logo.png"} {
		if _, err := os.Stat(filepath.Join(cfg.Build.Output, filepath.FromSlash(p))); err != nil {
			t.Errorf("missing output %s: %v", p, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Build.Output, "public")); !os.IsNotExist(err) {
		t.Error("output tree must not be copied into itself")
	}
}

func TestBuild_RebuildWithNestedOutput(t *testing.T) {
	cfg := testConfig(t)
	for range 2 {
		if _, err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
			t.Fatalf("Build: %v", err)
		}
	}
}

func TestQuery(t *testing.T) {
	cfg := testConfig(t)
	if _, err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := Query(context.Background(), QueryBacklinks, "blog/post-b", 0, WithConfig(cfg), WithLogOutput(io.Discard), WithOutput(&out)); err != nil {
		t.Fatalf("Query: %v", err)
	}
	var rows []index.PageRow
	if err := json.Unmarshal(out.Bytes(), &rows); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if len(rows) != 1 || rows[0].Path != "/blog/post-a" {
		t.Errorf("backlinks = %+v", rows)
	}

	out.Reset()
	if err := Query(context.Background(), QueryTags, "", 0, WithConfig(cfg), WithLogOutput(io.Discard), WithOutput(&out)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"tag": "go"`) {
		t.Errorf("tags = %s", out.String())
	}

	if err := Query(context.Background(), "nope", "", 0, WithConfig(cfg), WithLogOutput(io.Discard)); err == nil {
		t.Error("unknown query kind should fail")
	}
}

func TestQuery_IndexDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Index.Path = ""
	err := Query(context.Background(), QueryTags, "", 0, WithConfig(cfg), WithLogOutput(io.Discard))
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Errorf("err = %v, want index disabled", err)
	}
}

func TestRequiresConfig(t *testing.T) {
	if _, err := Build(context.Background()); err == nil {
		t.Error("expected error without config")
	}
}
