package markdown

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const fallbackID = "heading"

// headingIDs generates heading slugs for one document. Letters and digits of
// any script are kept, whitespace becomes '-', other punctuation is dropped.
// Repeated slugs get a numeric suffix.
type headingIDs struct {
	lower cases.Caser
	used  map[string]struct{}
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{
		lower: cases.Lower(language.Und),
		used:  make(map[string]struct{}),
	}
}

func (h *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	base := slugify(h.lower.String(norm.NFC.String(string(value))))
	if base == "" {
		base = fallbackID
	}
	id := base
	for i := 1; ; i++ {
		if _, taken := h.used[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(i)
	}
	h.used[id] = struct{}{}
	return []byte(id)
}

func (h *headingIDs) Put(value []byte) {
	h.used[string(value)] = struct{}{}
}

// slugify maps s to an anchor-safe slug without changing its case.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsMark(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}
