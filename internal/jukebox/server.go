package jukebox

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// Advance policies. Some deployments gate skipping behind the
// distinguished super admin account, others behind any admin.
const (
	PolicyAdmin      = "admin"
	PolicySuperAdmin = "superadmin"
)

// SuperAdminUsername is the distinguished admin account that the
// superadmin policy requires for queue advancement.
const SuperAdminUsername = "admin"

// Resolver turns a free-form submission into a validated video
// reference. Implementations live in the provider package.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (VideoRef, error)
}

// Server exposes the queue, playback, history and settings routes.
type Server struct {
	db            DB
	rdb           *redis.Client
	engine        *Engine
	settings      *SettingsStore
	resolver      Resolver
	advancePolicy string
}

func NewServer(db DB, rdb *redis.Client, resolver Resolver, advancePolicy string) *Server {
	if advancePolicy != PolicySuperAdmin {
		advancePolicy = PolicyAdmin
	}
	return &Server{
		db:            db,
		rdb:           rdb,
		engine:        NewEngine(db),
		settings:      NewSettingsStore(db),
		resolver:      resolver,
		advancePolicy: advancePolicy,
	}
}

// Routes attaches the jukebox routes to r. Identity middleware comes
// from the auth package; it is injected so this package stays
// testable with plain context values.
func (s *Server) Routes(r chi.Router, requireUser, requireAdmin func(http.Handler) http.Handler) {
	// History and theme are public: both render on the welcome page
	// before a session exists.
	r.Get("/settings/theme", s.handleGetTheme)
	r.Get("/songs/history", s.handleHistory)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/songs", s.handleListQueue)
		r.Post("/songs", s.handleEnqueue)
		r.Get("/settings", s.handleGetSettings)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/songs/next", s.handleAdvance)
		r.Put("/songs/reorder", s.handleReorder)
		r.Delete("/songs", s.handleClearQueue)
		r.Delete("/songs/history", s.handleClearHistory)
		r.Delete("/songs/{id}", s.handleDeleteSong)
		r.Post("/settings", s.handleUpdateSettings)
		r.Post("/settings/theme", s.handleSetTheme)
	})
}
