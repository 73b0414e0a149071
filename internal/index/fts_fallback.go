//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE on pages.body.
	return nil
}

func ftsClear(_ context.Context, _ *sql.Tx) error { return nil }

func ftsInsert(_ context.Context, _ *sql.Tx, _, _, _ string, _ []string) error {
	// Body is already stored in the pages table.
	return nil
}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.path, p.title, substr(p.body, 1, 200)
		FROM pages p
		WHERE p.title LIKE ? OR p.body LIKE ?
		   OR EXISTS (SELECT 1 FROM tags t WHERE t.path = p.path AND t.tag LIKE ?)
		ORDER BY p.position
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
