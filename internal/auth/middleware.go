package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"
)

const (
	sessionCookie      = "sessionId"
	adminSessionCookie = "adminSessionId"
)

type ctxUserKey struct{}
type ctxAdminKey struct{}

// ContextWithUser returns ctx carrying u as the current participant.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

// UserFromContext returns the participant resolved by RequireUser.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ctxUserKey{}).(*User)
	return u, ok && u != nil
}

// ContextWithAdmin returns ctx carrying claims as the current admin.
func ContextWithAdmin(ctx context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(ctx, ctxAdminKey{}, claims)
}

// AdminFromContext returns the admin claims resolved by RequireAdmin.
func AdminFromContext(ctx context.Context) (*TokenClaims, bool) {
	c, ok := ctx.Value(ctxAdminKey{}).(*TokenClaims)
	return c, ok && c != nil
}

// RequireUser resolves the session cookie to a user row and rejects
// requests without one.
func (s *Server) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.userFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// RequireAdmin verifies the admin session token cookie.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.adminFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated as admin")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithAdmin(r.Context(), claims)))
	})
}

func (s *Server) userFromRequest(r *http.Request) (*User, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, ErrUserNotFound
	}
	user, err := scanUser(s.db.QueryRow(r.Context(), `
      SELECT `+userColumns+` FROM users WHERE session_id = $1
    `, c.Value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		log.Printf("jukebox-service: session lookup: %v", err)
		return nil, err
	}
	return &user, nil
}

func (s *Server) adminFromRequest(r *http.Request) (*TokenClaims, error) {
	c, err := r.Cookie(adminSessionCookie)
	if err != nil || c.Value == "" {
		return nil, errors.New("missing admin session")
	}
	return VerifyAdminToken(c.Value, s.jwtSecret)
}
