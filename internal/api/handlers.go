package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/starford/ansuz/internal/search"
)

// Handler holds API route handlers.
type Handler struct {
	engine *search.Engine
}

// NewHandler creates a new Handler.
func NewHandler(engine *search.Engine) *Handler {
	return &Handler{engine: engine}
}

// ResultDTO is one search or listing row in API responses. Content is
// deliberately omitted; clients fetch the file themselves.
type ResultDTO struct {
	Path    string    `json:"path"`
	Title   string    `json:"title"`
	Tags    []string  `json:"tags"`
	Score   float64   `json:"score"`
	Missing bool      `json:"missing"`
	Mtime   time.Time `json:"mtime"`
}

// SearchResponse wraps search results and related-term suggestions.
type SearchResponse struct {
	Results []ResultDTO `json:"results"`
	Related []string    `json:"related"`
}

// Search handles GET /api/search?q=...&limit=N (limit "all" for unlimited).
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, err := parseLimit(r.URL.Query().Get("limit"), 20)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid limit"))
		return
	}

	results, related, err := h.engine.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if related == nil {
		related = []string{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: toDTOs(results), Related: related})
}

// ListNotes handles GET /api/notes: every indexed document, newest first.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	results, err := h.engine.List()
	if err != nil {
		slog.Error("list failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": toDTOs(results),
		"total": len(results),
	})
}

func toDTOs(results []search.Result) []ResultDTO {
	out := make([]ResultDTO, len(results))
	for i, r := range results {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		out[i] = ResultDTO{
			Path:    r.Path,
			Title:   r.Title,
			Tags:    tags,
			Score:   r.Score,
			Missing: r.Missing,
			Mtime:   r.Mtime,
		}
	}
	return out
}

// parseLimit accepts a count, "all" (unlimited), or empty (fallback).
func parseLimit(s string, fallback int) (int, error) {
	switch s {
	case "":
		return fallback, nil
	case "all":
		return 0, nil
	}
	return strconv.Atoi(s)
}
