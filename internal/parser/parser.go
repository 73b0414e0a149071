// Package parser extracts front matter and page metadata from markdown documents.
package parser

import (
	"bytes"
	"path"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Result holds the output of parsing a markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Title       string
	Description string
	Tags        []string
	Order       *float64
	Date        time.Time
}

// Parse extracts front matter, body, title, description, tags, order and date
// from raw markdown bytes. Malformed front matter falls back to an empty map.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	if fm == nil {
		fm = map[string]any{}
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		Description: stringField(fm, "description"),
		Tags:        extractTags(fm),
		Order:       extractOrder(fm),
		Date:        extractDate(fm),
	}, nil
}

// FallbackTitle returns the title to use when neither front matter nor the
// body provide one: the file name, or its directory name for index files.
func FallbackTitle(docPath string) string {
	base := strings.TrimSuffix(path.Base(docPath), path.Ext(docPath))
	if base == "index" {
		dir := path.Base(path.Dir(docPath))
		if dir == "." || dir == "/" {
			return ""
		}
		base = dir
	}
	return base
}

// splitFrontmatter separates YAML front matter (between leading --- delimiters)
// from the markdown body. If no front matter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: keep the body, drop the metadata.
		return nil, body, nil
	}

	return fm, body, nil
}

func stringField(fm map[string]any, key string) string {
	raw, ok := fm[key]
	if !ok {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return toString(v)
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// extractTags collects the front matter "tags" field, given either as a list
// or as a comma separated string. Duplicates are dropped, order is kept.
func extractTags(fm map[string]any) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	switch v := fm["tags"].(type) {
	case []any:
		for _, item := range v {
			switch s := item.(type) {
			case string:
				add(s)
			case int, float64, bool:
				add(toString(s))
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	}

	return out
}

func extractOrder(fm map[string]any) *float64 {
	var f float64
	switch v := fm["order"].(type) {
	case int:
		f = float64(v)
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// extractDate reads the "date" field. yaml.v3 leaves unquoted timestamps as
// strings when decoding into a map, so both forms are accepted.
func extractDate(fm map[string]any) time.Time {
	switch v := fm["date"].(type) {
	case time.Time:
		return v.UTC()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

// deriveTitle returns the front matter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if s := stringField(fm, "title"); s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
