package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// POST /users
// Registers a participant and sets the session cookie.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || body.Avatar == "" {
		writeError(w, http.StatusBadRequest, "name and avatar are required")
		return
	}
	if len(body.Name) > 60 {
		writeError(w, http.StatusBadRequest, "name cannot be more than 60 characters")
		return
	}

	sessionID := uuid.NewString()
	user, err := scanUser(s.db.QueryRow(r.Context(), `
      INSERT INTO users (name, avatar_url, session_id)
      VALUES ($1, $2, $3)
      RETURNING `+userColumns,
		body.Name, body.Avatar, sessionID,
	))
	if err != nil {
		log.Printf("jukebox-service: register user: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.setSessionCookie(w, sessionCookie, sessionID, s.sessionTTL)
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// POST /auth/login
// Admin login: bcrypt check, then both an admin token cookie and a
// fresh participant session (admins also submit songs).
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var user User
	var passwordHash string
	err := s.db.QueryRow(r.Context(), `
      SELECT id, name, COALESCE(username, ''), avatar_url, is_admin, session_id, created_at, password_hash
      FROM users
      WHERE username = $1 AND is_admin
    `, body.Username).Scan(
		&user.ID, &user.Name, &user.Username, &user.AvatarURL,
		&user.IsAdmin, &user.SessionID, &user.CreatedAt, &passwordHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		log.Printf("jukebox-service: login lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(body.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.issueAdminToken(user)
	if err != nil {
		log.Printf("jukebox-service: issue admin token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sessionID := uuid.NewString()
	if _, err := s.db.Exec(r.Context(), `
      UPDATE users SET session_id = $2 WHERE id = $1
    `, user.ID, sessionID); err != nil {
		log.Printf("jukebox-service: rotate session: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.setSessionCookie(w, adminSessionCookie, token, s.adminTTL)
	s.setSessionCookie(w, sessionCookie, sessionID, s.sessionTTL)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /auth/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// GET /auth/admin-check
func (s *Server) handleAdminCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := s.adminFromRequest(r); err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated as admin")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"isAdmin": true})
}

// POST /setup-admin
// One-time admin bootstrap. Duplicate usernames are rejected.
func (s *Server) handleSetupAdmin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if body.Name == "" {
		body.Name = "Admin"
	}

	var exists bool
	if err := s.db.QueryRow(r.Context(), `
      SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)
    `, body.Username).Scan(&exists); err != nil {
		log.Printf("jukebox-service: setup-admin check: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	avatar := "https://api.dicebear.com/7.x/avataaars/svg?seed=" + body.Username
	user, err := scanUser(s.db.QueryRow(r.Context(), `
      INSERT INTO users (name, username, password_hash, avatar_url, is_admin, session_id)
      VALUES ($1, $2, $3, $4, TRUE, $5)
      RETURNING `+userColumns,
		body.Name, body.Username, string(hash), avatar, uuid.NewString(),
	))
	if err != nil {
		log.Printf("jukebox-service: setup-admin insert: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    map[string]any{"username": user.Username, "isAdmin": user.IsAdmin},
	})
}

// GET /users (admin only)
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(r.Context(), `
      SELECT `+userColumns+` FROM users ORDER BY created_at DESC
    `)
	if err != nil {
		log.Printf("jukebox-service: list users: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			log.Printf("jukebox-service: scan user: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
