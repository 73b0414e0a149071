package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path        string    `json:"path"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsIndex     bool      `json:"is_index"`
	Parent      string    `json:"parent,omitempty"`
	Date        time.Time `json:"date,omitempty"`
	Checksum    string    `json:"checksum"`
}

// TagCount is a tag and the number of pages carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

const pageColumns = `p.path, p.source, p.title, p.description, p.is_index, p.parent, p.date, p.checksum`

func scanPage(sc interface{ Scan(...any) error }) (PageRow, error) {
	var (
		r    PageRow
		date sql.NullTime
	)
	if err := sc.Scan(&r.Path, &r.Source, &r.Title, &r.Description, &r.IsIndex, &r.Parent, &date, &r.Checksum); err != nil {
		return PageRow{}, err
	}
	if date.Valid {
		r.Date = date.Time
	}
	return r, nil
}

func (db *DB) queryPages(ctx context.Context, op, query string, args ...any) ([]PageRow, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: %s: %w", op, err)
	}
	defer rows.Close()

	var out []PageRow
	for rows.Next() {
		r, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Page returns one recorded page by canonical path.
func (db *DB) Page(ctx context.Context, path string) (*PageRow, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages p WHERE p.path = ?`, path)
	r, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: page: %w", err)
	}
	return &r, nil
}

// Backlinks returns the pages other than target that link to it, in build order.
func (db *DB) Backlinks(ctx context.Context, target string) ([]PageRow, error) {
	return db.queryPages(ctx, "backlinks", `
		SELECT `+pageColumns+`
		FROM links l JOIN pages p ON p.path = l.source
		WHERE l.target = ? AND l.source <> l.target
		ORDER BY p.position
	`, target)
}

// PagesByTag returns every page carrying tag, in build order.
func (db *DB) PagesByTag(ctx context.Context, tag string) ([]PageRow, error) {
	return db.queryPages(ctx, "pages by tag", `
		SELECT `+pageColumns+`
		FROM tags t JOIN pages p ON p.path = t.path
		WHERE t.tag = ?
		ORDER BY p.position
	`, tag)
}

// Children returns the pages whose parent is path, in build order.
func (db *DB) Children(ctx context.Context, path string) ([]PageRow, error) {
	return db.queryPages(ctx, "children", `
		SELECT `+pageColumns+`
		FROM pages p
		WHERE p.parent = ? AND p.path <> ?
		ORDER BY p.position
	`, path, path)
}

// Tags returns every recorded tag with its page count, sorted by name.
func (db *DB) Tags(ctx context.Context) ([]TagCount, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT tag, count(*) FROM tags GROUP BY tag ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("index: tags: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// GraphNode is a node of the recorded page graph.
type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// GraphLink is an edge between two recorded pages.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph returns every recorded page and every link whose target is itself a
// recorded page. Self links are left out.
func (db *DB) Graph(ctx context.Context) ([]GraphNode, []GraphLink, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, title FROM pages ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer rows.Close()

	nodes := []GraphNode{}
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(&n.ID, &n.Title); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	lrows, err := db.conn.QueryContext(ctx, `
		SELECT l.source, l.target
		FROM links l JOIN pages p ON p.path = l.target
		WHERE l.source <> l.target
		ORDER BY l.source, l.target
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph links: %w", err)
	}
	defer lrows.Close()

	links := []GraphLink{}
	for lrows.Next() {
		var l GraphLink
		if err := lrows.Scan(&l.Source, &l.Target); err != nil {
			return nil, nil, err
		}
		links = append(links, l)
	}
	return nodes, links, lrows.Err()
}
