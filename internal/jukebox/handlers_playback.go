package jukebox

import (
	"errors"
	"log"
	"net/http"

	"jukebox-service/internal/auth"
)

// POST /songs/next
// Advances the queue. Under the superadmin policy only the
// distinguished admin account may skip.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := auth.AdminFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated as admin")
		return
	}
	if s.advancePolicy == PolicySuperAdmin && claims.Username != SuperAdminUsername {
		writeError(w, http.StatusForbidden, "super admin only")
		return
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		log.Printf("jukebox-service: load settings: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	pb, err := s.engine.Advance(ctx, settings.RadioMode)
	if errors.Is(err, ErrNoCurrentSong) {
		writeError(w, http.StatusBadRequest, ErrNoCurrentSong.Error())
		return
	}
	if err != nil {
		log.Printf("jukebox-service: advance: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type": "player.state_changed",
		"payload": map[string]any{
			"currentSongId": pb.CurrentSongID,
			"startedAt":     pb.StartedAt,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"currentSongId": pb.CurrentSongID,
		"startedAt":     pb.StartedAt,
	})
}
