package provider

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Server exposes the catalog search route.
type Server struct {
	yt *YouTubeClient
}

func NewServer(yt *YouTubeClient) *Server {
	return &Server{yt: yt}
}

// Routes attaches the search route to r behind the given middleware.
func (s *Server) Routes(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		for _, mw := range middlewares {
			r.Use(mw)
		}
		r.Get("/youtube/search", s.handleSearch)
	})
}

// GET /youtube/search?q=&limit=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := s.yt.Search(r.Context(), query, limit)
	if errors.Is(err, ErrNoAPIKey) {
		writeError(w, http.StatusServiceUnavailable, "search is not configured")
		return
	}
	if err != nil {
		log.Printf("jukebox-service: youtube search: %v", err)
		writeError(w, http.StatusBadGateway, "failed to search videos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
