package api

import "github.com/starford/raido/internal/index"

// PageDetail is a page together with its immediate graph neighbourhood.
type PageDetail struct {
	index.PageRow
	Backlinks []index.PageRow `json:"backlinks"`
	Children  []index.PageRow `json:"children"`
}

// PageListResponse wraps a list of pages.
type PageListResponse struct {
	Pages []index.PageRow `json:"pages"`
}

// TagListResponse wraps the tag listing.
type TagListResponse struct {
	Tags []index.TagCount `json:"tags"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// GraphResponse wraps the page graph.
type GraphResponse struct {
	Nodes []index.GraphNode `json:"nodes"`
	Links []index.GraphLink `json:"links"`
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
