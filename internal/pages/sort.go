package pages

import (
	"slices"
	"strings"

	"github.com/starford/raido/internal/models"
)

// Compare orders pages for presentation: pages with an explicit order come
// first, ascending; then dated pages, oldest first; then everything else.
// The canonical path breaks every remaining tie, so the order is total.
func Compare(a, b *models.Page) int {
	switch {
	case a.Order != nil && b.Order != nil:
		if *a.Order < *b.Order {
			return -1
		}
		if *a.Order > *b.Order {
			return 1
		}
	case a.Order != nil:
		return -1
	case b.Order != nil:
		return 1
	}

	switch {
	case !a.Date.IsZero() && !b.Date.IsZero():
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
	case !a.Date.IsZero():
		return -1
	case !b.Date.IsZero():
		return 1
	}

	return strings.Compare(a.Path, b.Path)
}

// Sort returns a sorted copy of pages.
func Sort(pages []*models.Page) []*models.Page {
	out := slices.Clone(pages)
	slices.SortStableFunc(out, Compare)
	return out
}
