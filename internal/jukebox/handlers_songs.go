package jukebox

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"jukebox-service/internal/auth"
)

// GET /songs
// The queue plus the current playback pointer, for client polling.
func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	songs, err := s.engine.Queue(ctx)
	if err != nil {
		log.Printf("jukebox-service: list queue: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	pb, err := s.engine.State(ctx)
	if err != nil {
		log.Printf("jukebox-service: playback state: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"songs":         songs,
		"currentSongId": pb.CurrentSongID,
		"startedAt":     pb.StartedAt,
	})
}

// POST /songs
// Resolves the submitted URL and enqueues it for the current user.
func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var body struct {
		YouTubeURL string `json:"youtubeUrl"`
		Message    string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.YouTubeURL = strings.TrimSpace(body.YouTubeURL)
	if body.YouTubeURL == "" {
		writeError(w, http.StatusBadRequest, "youtubeUrl is required")
		return
	}

	ref, err := s.resolver.Resolve(ctx, body.YouTubeURL)
	if errors.Is(err, ErrInvalidSubmission) {
		writeError(w, http.StatusBadRequest, "invalid youtube url")
		return
	}
	if err != nil {
		log.Printf("jukebox-service: resolve submission: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch video metadata")
		return
	}

	song, err := s.engine.Enqueue(ctx, NewSong{
		YouTubeURL:    body.YouTubeURL,
		VideoID:       ref.VideoID,
		Title:         ref.Title,
		ThumbnailURL:  ref.ThumbnailURL,
		AddedBy:       user.ID,
		AddedByName:   user.Name,
		AddedByAvatar: user.AvatarURL,
		Message:       strings.TrimSpace(body.Message),
	})
	if errors.Is(err, ErrDuplicateSong) {
		writeError(w, http.StatusConflict, ErrDuplicateSong.Error())
		return
	}
	if err != nil {
		log.Printf("jukebox-service: enqueue: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "queue.updated",
		"payload": map[string]any{"song": song},
	})

	writeJSON(w, http.StatusCreated, map[string]any{"song": song})
}

// PUT /songs/reorder
func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		OrderedIds []string `json:"orderedIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.OrderedIds == nil {
		writeError(w, http.StatusBadRequest, "orderedIds must be an array of song ids")
		return
	}

	if err := s.engine.Reorder(ctx, body.OrderedIds); err != nil {
		log.Printf("jukebox-service: reorder: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "queue.updated",
		"payload": map[string]any{"orderedIds": body.OrderedIds},
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DELETE /songs
func (s *Server) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deleted, err := s.engine.ClearQueue(ctx)
	if err != nil {
		log.Printf("jukebox-service: clear queue: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "queue.updated",
		"payload": map[string]any{"cleared": deleted},
	})

	writeJSON(w, http.StatusOK, map[string]any{"message": "queue cleared", "deleted": deleted})
}

// DELETE /songs/{id}
func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	err := s.engine.DeleteSong(ctx, id)
	if errors.Is(err, ErrSongNotFound) {
		writeError(w, http.StatusNotFound, "song not found")
		return
	}
	if err != nil {
		log.Printf("jukebox-service: delete song: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "queue.updated",
		"payload": map[string]any{"deleted": id},
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /songs/history?page=&limit=
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := s.engine.History(r.Context(), page, limit)
	if err != nil {
		log.Printf("jukebox-service: history: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

// DELETE /songs/history
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ClearHistory(r.Context()); err != nil {
		log.Printf("jukebox-service: clear history: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "history cleared"})
}
