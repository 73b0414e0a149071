// Package watch reports changes to a source tree so the dev server can
// rebuild the site.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/unicode/norm"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before reporting a change.
const DefaultDebounce = 200 * time.Millisecond

// ChangeFunc is called once per settled burst of changes. paths holds the
// absolute paths that changed during the burst.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher watches a source tree recursively.
type Watcher struct {
	root     string
	exclude  []string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher on root. Hidden directories and the directories in
// exclude (typically the output tree) are ignored.
func New(root string, exclude []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{root: absPath(root), debounce: debounce, logger: logger}
	for _, ex := range exclude {
		if ex != "" {
			w.exclude = append(w.exclude, absPath(ex))
		}
	}
	return w
}

// absPath cleans p and makes it absolute against the working directory.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Run processes file change events until ctx is cancelled, calling onChange
// after each debounced burst. New directories created at runtime are added
// to the watch list.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addDirsRecursive(fw, w.root); err != nil {
		return err
	}

	w.logger.Info("watcher: started", slog.String("root", w.root))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending = map[string]struct{}{}
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			w.logger.Debug("watcher: change settled", slog.Int("paths", len(changed)))
			onChange(ctx, changed)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.ignored(ev.Name) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.addDirsRecursive(fw, ev.Name); addErr != nil {
						w.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						w.logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}

			// Some filesystems report decomposed names.
			pending[norm.NFC.String(ev.Name)] = struct{}{}
			schedule()

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// ignored reports whether p lies in an excluded or hidden location.
func (w *Watcher) ignored(p string) bool {
	p = absPath(p)
	for _, ex := range w.exclude {
		if p == ex || strings.HasPrefix(p, ex+string(filepath.Separator)) {
			return true
		}
	}
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its watched subdirectories.
func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
