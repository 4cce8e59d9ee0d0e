package auth

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxAvatarSize = 5 * 1024 * 1024 // 5MB

// POST /upload
// Stores an avatar image and points the current user at it.
func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		writeError(w, http.StatusBadRequest, "unsupported file type (allowed: png, jpg, jpeg, webp)")
		return
	}

	if err := os.MkdirAll(s.avatarDir, 0o755); err != nil {
		log.Printf("jukebox-service: mkdir avatars: %v", err)
		writeError(w, http.StatusInternalServerError, "cannot save avatar")
		return
	}

	filename := uuid.NewString() + ext
	dstPath := filepath.Join(s.avatarDir, filename)

	dst, err := os.Create(dstPath)
	if err != nil {
		log.Printf("jukebox-service: create avatar file: %v", err)
		writeError(w, http.StatusInternalServerError, "cannot save avatar")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("jukebox-service: write avatar file: %v", err)
		writeError(w, http.StatusInternalServerError, "cannot save avatar")
		return
	}

	avatarURL := "/avatars/" + filename
	if _, err := s.db.Exec(r.Context(), `
      UPDATE users SET avatar_url = $2 WHERE id = $1
    `, user.ID, avatarURL); err != nil {
		log.Printf("jukebox-service: update avatar: %v", err)
		writeError(w, http.StatusInternalServerError, "cannot save avatar")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"url": avatarURL})
}
