package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mcpserver"
)

// Query kinds understood by Query.
const (
	QueryBacklinks = "backlinks"
	QueryTag       = "tag"
	QueryChildren  = "children"
	QuerySearch    = "search"
	QueryTags      = "tags"
)

// Query answers one question about the graph recorded by the last build and
// prints the result as JSON.
func Query(ctx context.Context, kind, arg string, limit int, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	db, err := app.requireIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	var result any
	switch kind {
	case QueryBacklinks:
		result, err = db.Backlinks(ctx, path.Clean("/"+arg))
	case QueryChildren:
		result, err = db.Children(ctx, path.Clean("/"+arg))
	case QueryTag:
		result, err = db.PagesByTag(ctx, arg)
	case QueryTags:
		result, err = db.Tags(ctx)
	case QuerySearch:
		result, err = db.Search(ctx, arg, limit)
	default:
		return fmt.Errorf("unknown query %q", kind)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ServeMCP serves the graph tools over stdio. When refresh is set the site is
// built first so the index reflects the current sources.
func ServeMCP(ctx context.Context, refresh bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	db, err := app.requireIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := app.newStore()
	if err != nil {
		return err
	}
	if refresh {
		builder, err := app.newBuilder(store, db)
		if err != nil {
			return err
		}
		if _, err := builder.Run(ctx); err != nil {
			return err
		}
	}

	app.logger.Info("mcp: serving on stdio", slog.String("index_path", app.config.Index.Path))
	return mcpserver.New(store, db, app.version).ServeStdio()
}

func (a *application) requireIndex() (*index.DB, error) {
	db, err := a.openIndex()
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("graph index is disabled (index.path is empty)")
	}
	return db, nil
}
