package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/raido/internal/pages"
)

// Record replaces the stored graph with the contents of s in a single
// transaction, so readers always see one complete build.
func (db *DB) Record(ctx context.Context, s *pages.Snapshot) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, table := range []string{"links", "tags", "pages"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("index: clear %s: %w", table, err)
		}
	}
	if err := ftsClear(ctx, tx); err != nil {
		return err
	}

	pageStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pages (path, source, title, description, is_index, parent, position, checksum, date, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare page insert: %w", err)
	}
	defer pageStmt.Close()
	linkStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer linkStmt.Close()
	tagStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO tags (path, tag) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare tag insert: %w", err)
	}
	defer tagStmt.Close()

	for i, p := range s.Pages() {
		var parent string
		if par, ok := s.Parent(p); ok {
			parent = par.Path
		}
		var date sql.NullTime
		if !p.Date.IsZero() {
			date = sql.NullTime{Time: p.Date, Valid: true}
		}
		body := plainText(p.HTML)

		if _, err := pageStmt.ExecContext(ctx, p.Path, p.Source, p.Title, p.Description, p.IsIndex, parent, i, p.Checksum, date, body); err != nil {
			return fmt.Errorf("index: insert page %s: %w", p.Path, err)
		}
		if err := ftsInsert(ctx, tx, p.Path, p.Title, body, p.Tags); err != nil {
			return err
		}
		for _, target := range p.LinkPaths {
			if _, err := linkStmt.ExecContext(ctx, p.Path, target); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
		for _, tag := range p.Tags {
			if _, err := tagStmt.ExecContext(ctx, p.Path, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// plainText strips markup from rendered HTML for search. Script and style
// bodies are dropped.
func plainText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func isRawText(tag []byte) bool {
	t := string(tag)
	return t == "script" || t == "style"
}
