package render

import (
	"bytes"
	"fmt"
	"html/template"
	"slices"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// Style priorities. Higher priorities are emitted later and win the cascade.
const (
	PriorityBase      = 0
	PriorityView      = 10
	PriorityHighlight = 999
)

type styleRule struct {
	css      string
	priority int
	seq      int
}

// Styles collects the CSS used by a single render. A fresh value is created
// for every document so nothing leaks between pages rendered in one build.
type Styles struct {
	rules []styleRule
	seen  map[string]struct{}
}

// NewStyles returns an empty accumulator.
func NewStyles() *Styles {
	return &Styles{seen: make(map[string]struct{})}
}

// Insert adds a rule. Identical rules are kept once.
func (s *Styles) Insert(css string, priority int) {
	css = strings.TrimSpace(css)
	if css == "" {
		return
	}
	if _, dup := s.seen[css]; dup {
		return
	}
	s.seen[css] = struct{}{}
	s.rules = append(s.rules, styleRule{css: css, priority: priority, seq: len(s.rules)})
}

// Len returns the number of collected rules.
func (s *Styles) Len() int { return len(s.rules) }

// String returns the collected CSS ordered by priority, then insertion.
func (s *Styles) String() string {
	ordered := slices.Clone(s.rules)
	slices.SortStableFunc(ordered, func(a, b styleRule) int {
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		return a.seq - b.seq
	})
	parts := make([]string, len(ordered))
	for i, r := range ordered {
		parts[i] = r.css
	}
	return strings.Join(parts, "\n")
}

// Tag returns the collected CSS wrapped in a style element.
func (s *Styles) Tag() template.HTML {
	if len(s.rules) == 0 {
		return ""
	}
	return template.HTML("<style>\n" + s.String() + "\n</style>")
}

// HighlightCSS returns chroma's class-based stylesheet for the named style.
// Unknown names fall back to chroma's default style.
func HighlightCSS(name string) (string, error) {
	style := styles.Get(name)
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("render: highlight css: %w", err)
	}
	return buf.String(), nil
}
