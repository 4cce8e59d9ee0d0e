package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server owns user identity: participant registration, cookie
// sessions, admin login, and avatar upload.
type Server struct {
	db            DB
	jwtSecret     []byte
	adminTTL      time.Duration
	sessionTTL    time.Duration
	avatarDir     string
	secureCookies bool
}

func NewServer(db DB, jwtSecret []byte, avatarDir string, secureCookies bool) *Server {
	return &Server{
		db:            db,
		jwtSecret:     jwtSecret,
		adminTTL:      24 * time.Hour,
		sessionTTL:    30 * 24 * time.Hour,
		avatarDir:     avatarDir,
		secureCookies: secureCookies,
	}
}

// Routes attaches the identity routes to r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/users", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Get("/auth/me", s.handleMe)
	r.Get("/auth/admin-check", s.handleAdminCheck)
	r.Post("/setup-admin", s.handleSetupAdmin)

	r.Group(func(r chi.Router) {
		r.Use(s.RequireUser)
		r.Post("/upload", s.handleUploadAvatar)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAdmin)
		r.Get("/users", s.handleListUsers)
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}
