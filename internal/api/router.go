package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/search"
)

// NewRouter creates a chi router with the read-only search routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(engine *search.Engine, authEnabled bool, token string) chi.Router {
	h := NewHandler(engine)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/search", h.Search)
	r.Get("/notes", h.ListNotes)

	return r
}
