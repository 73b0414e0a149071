package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/raido/internal/pages"
	"github.com/starford/raido/internal/storage"
)

// GraphRecorder persists a finished snapshot, e.g. into the graph index.
type GraphRecorder interface {
	Record(ctx context.Context, s *pages.Snapshot) error
}

// Report summarizes one build pass.
type Report struct {
	Pages    int
	Tags     int
	Written  int
	Copied   int
	Omitted  []string
	Duration time.Duration
}

// Builder runs full build passes from a source tree into an output tree.
type Builder struct {
	store    storage.Provider
	renderer DocumentRenderer
	writer   *storage.Writer
	recorder GraphRecorder
	opts     Options
}

// NewBuilder wires a Builder. recorder may be nil.
func NewBuilder(store storage.Provider, renderer DocumentRenderer, writer *storage.Writer, recorder GraphRecorder, opts Options) *Builder {
	return &Builder{
		store:    store,
		renderer: renderer,
		writer:   writer,
		recorder: recorder,
		opts:     opts,
	}
}

// Run performs a full build. Any write failure aborts the pass; files
// already written are left in place.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	logger := b.opts.logger()

	docs, err := LoadDocuments(ctx, b.store, logger)
	if err != nil {
		return nil, err
	}

	snap, err := pages.Build(ctx, docs, b.opts.concurrency())
	if err != nil {
		return nil, err
	}
	tags := pages.TagPages(snap)

	content, omitted, err := BuildContentFiles(ctx, snap, b.renderer, b.opts)
	if err != nil {
		return nil, err
	}
	tagFiles, omittedTags, err := BuildTagFiles(ctx, tags, b.renderer, b.opts)
	if err != nil {
		return nil, err
	}

	files := append(content, tagFiles...)
	if feed, ok, err := BuildFeedFile(snap, b.renderer, b.opts); err != nil {
		return nil, err
	} else if ok {
		files = append(files, feed)
	}

	entries, err := b.store.Walk()
	if err != nil {
		return nil, fmt.Errorf("build: walk statics: %w", err)
	}
	statics, err := StaticFiles(entries, b.store.Root(), b.opts.OutputRoot)
	if err != nil {
		return nil, err
	}
	files = append(files, statics...)

	if err := CheckDestinations(files); err != nil {
		return nil, err
	}

	written, err := b.writer.WriteFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	copied, err := b.writer.CopyFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	if b.recorder != nil {
		if err := b.recorder.Record(ctx, snap); err != nil {
			return nil, fmt.Errorf("build: record graph: %w", err)
		}
	}

	report := &Report{
		Pages:    snap.Len(),
		Tags:     len(tags),
		Written:  written,
		Copied:   copied,
		Omitted:  append(omitted, omittedTags...),
		Duration: time.Since(start),
	}
	logger.Info("build: done",
		slog.Int("pages", report.Pages),
		slog.Int("tags", report.Tags),
		slog.Int("written", report.Written),
		slog.Int("copied", report.Copied),
		slog.Int("omitted", len(report.Omitted)),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}
