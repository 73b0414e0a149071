package api

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	idx index.GraphIndex
}

// NewHandler creates a new Handler.
func NewHandler(idx index.GraphIndex) *Handler {
	return &Handler{idx: idx}
}

// pagePath extracts the canonical page path from the wildcard part of the
// URL. Encoded slashes (blog%2Fpost) are accepted.
func pagePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return path.Clean("/" + raw)
}

// GetPage handles GET /pages/*.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	p := pagePath(r)
	page, err := h.idx.Page(r.Context(), p)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "page not found")
			return
		}
		internalError(w, r, "get page", err)
		return
	}

	backlinks, err := h.idx.Backlinks(r.Context(), p)
	if err != nil {
		internalError(w, r, "backlinks", err)
		return
	}
	children, err := h.idx.Children(r.Context(), p)
	if err != nil {
		internalError(w, r, "children", err)
		return
	}
	writeJSON(w, http.StatusOK, PageDetail{
		PageRow:   *page,
		Backlinks: orEmpty(backlinks),
		Children:  orEmpty(children),
	})
}

// Backlinks handles GET /backlinks/*.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.idx.Backlinks(r.Context(), pagePath(r))
	if err != nil {
		internalError(w, r, "backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: orEmpty(rows)})
}

// Children handles GET /children/*.
func (h *Handler) Children(w http.ResponseWriter, r *http.Request) {
	rows, err := h.idx.Children(r.Context(), pagePath(r))
	if err != nil {
		internalError(w, r, "children", err)
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: orEmpty(rows)})
}

// Tags handles GET /tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.idx.Tags(r.Context())
	if err != nil {
		internalError(w, r, "tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: orEmpty(tags)})
}

// PagesByTag handles GET /tags/{tag}.
func (h *Handler) PagesByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if decoded, err := url.PathUnescape(tag); err == nil {
		tag = decoded
	}
	rows, err := h.idx.PagesByTag(r.Context(), tag)
	if err != nil {
		internalError(w, r, "pages by tag", err)
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: orEmpty(rows)})
}

// Search handles GET /search?q=...&limit=....
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, r, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.idx.Search(r.Context(), q, limit)
	if err != nil {
		internalError(w, r, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: orEmpty(results)})
}

// Graph handles GET /graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, links, err := h.idx.Graph(r.Context())
	if err != nil {
		internalError(w, r, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: orEmpty(nodes), Links: orEmpty(links)})
}
