package build

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/storage"
)

// LoadDocuments reads and parses every markdown document of the source tree.
// Front matter problems never fail the load; unreadable files do.
func LoadDocuments(ctx context.Context, store storage.Provider, logger *slog.Logger) ([]*models.Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metas, err := store.List("")
	if err != nil {
		return nil, fmt.Errorf("build: list: %w", err)
	}

	docs := make([]*models.Document, 0, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := store.Read(m.Path)
		if err != nil {
			return nil, fmt.Errorf("build: read %s: %w", m.Path, err)
		}
		res, err := parser.Parse(data)
		if err != nil {
			logger.Warn("build: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			res = &parser.Result{Frontmatter: map[string]any{}, Body: string(data)}
		}

		title := res.Title
		if title == "" {
			title = parser.FallbackTitle(m.Path)
		}
		docs = append(docs, &models.Document{
			Path:        m.Path,
			Frontmatter: res.Frontmatter,
			Body:        res.Body,
			Title:       title,
			Description: res.Description,
			Tags:        res.Tags,
			Order:       res.Order,
			Date:        res.Date,
			Checksum:    checksum.Sum(data),
			ModTime:     m.ModTime,
		})
	}
	return docs, nil
}
