package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu      sync.Mutex
	bursts  int
	changed map[string]bool
}

func (r *recorder) onChange(_ context.Context, paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bursts++
	if r.changed == nil {
		r.changed = map[string]bool{}
	}
	for _, p := range paths {
		r.changed[p] = true
	}
}

func (r *recorder) saw(p string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed[p]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bursts
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func start(t *testing.T, root string, exclude ...string) *recorder {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rec := &recorder{}
	w := New(root, exclude, 50*time.Millisecond, testLogger())
	go w.Run(ctx, rec.onChange)
	time.Sleep(100 * time.Millisecond)
	return rec
}

func TestWatcher_FileChangeReported(t *testing.T) {
	dir := t.TempDir()
	rec := start(t, dir)

	p := filepath.Join(dir, "new.md")
	_ = os.WriteFile(p, []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.saw(p)
	}, "new file not reported by watcher")
}

func TestWatcher_BurstDebounced(t *testing.T) {
	dir := t.TempDir()
	rec := start(t, dir)

	for i := range 5 {
		_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte('a' + i)}, 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.count() > 0
	}, "burst not reported")
	time.Sleep(200 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Errorf("bursts = %d, want 1", n)
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	dir := t.TempDir()
	rec := start(t, dir)

	sub := filepath.Join(dir, "subdir")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)

	p := filepath.Join(sub, "deep.md")
	_ = os.WriteFile(p, []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.saw(p)
	}, "file in new subdir not reported by watcher")
}

func TestWatcher_ExcludedDirIgnored(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "public")
	_ = os.MkdirAll(out, 0o755)
	rec := start(t, dir, out)

	_ = os.WriteFile(filepath.Join(out, "index.html"), []byte("built"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if rec.count() != 0 {
		t.Error("changes in the output tree must not be reported")
	}
}

func TestWatcher_RelativeRootAbsoluteExclude(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "public")
	_ = os.MkdirAll(out, 0o755)
	t.Chdir(dir)
	rec := start(t, ".", out)

	_ = os.WriteFile(filepath.Join(out, "index.html"), []byte("built"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("write into the output tree reported %d change(s), want 0", n)
	}

	src := filepath.Join(dir, "a.md")
	_ = os.WriteFile(src, []byte("# A"), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.saw(src)
	}, "source change under a relative root not reported with its absolute path")
}

func TestIgnored(t *testing.T) {
	w := New("/src", []string{"/src/public"}, 0, nil)
	cases := map[string]bool{
		"/src/a.md":              false,
		"/src/blog/post.md":      false,
		"/src/public/index.html": true,
		"/src/public":            true,
		"/src/.git/HEAD":         true,
		"/src/blog/.draft.md":    true,
	}
	for p, want := range cases {
		if got := w.ignored(p); got != want {
			t.Errorf("ignored(%q) = %v, want %v", p, got, want)
		}
	}
}
