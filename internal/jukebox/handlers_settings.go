package jukebox

import (
	"encoding/json"
	"log"
	"net/http"
)

// GET /settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Load(r.Context())
	if err != nil {
		log.Printf("jukebox-service: get settings: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// POST /settings
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var patch SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if patch.Theme != nil && !patch.Theme.Valid() {
		writeError(w, http.StatusBadRequest, "invalid theme")
		return
	}

	settings, err := s.settings.Apply(ctx, patch)
	if err != nil {
		log.Printf("jukebox-service: update settings: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "settings.updated",
		"payload": settings,
	})

	writeJSON(w, http.StatusOK, settings)
}

// GET /settings/theme
// Unauthenticated: the welcome page needs the theme before login.
func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Load(r.Context())
	if err != nil {
		log.Printf("jukebox-service: get theme: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"theme": settings.Theme})
}

// POST /settings/theme
func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Theme Theme `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !body.Theme.Valid() {
		writeError(w, http.StatusBadRequest, "invalid theme")
		return
	}

	settings, err := s.settings.Apply(ctx, SettingsPatch{Theme: &body.Theme})
	if err != nil {
		log.Printf("jukebox-service: set theme: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "settings.updated",
		"payload": settings,
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "theme": settings.Theme})
}
