package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/index"
)

// NewRouter creates a chi router with all graph query routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(idx index.GraphIndex, authEnabled bool, token string) chi.Router {
	h := NewHandler(idx)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/pages/*", h.GetPage)
	r.Get("/backlinks/*", h.Backlinks)
	r.Get("/children/*", h.Children)

	r.Get("/tags", h.Tags)
	r.Get("/tags/{tag}", h.PagesByTag)

	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)

	return r
}
