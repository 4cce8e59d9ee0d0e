package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"jukebox-service/internal/auth"
	"jukebox-service/internal/jukebox"
	"jukebox-service/internal/provider"
)

func main() {
	cfg, err := loadConfigFromEnv()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("jukebox-service: pg: %v", err)
	}
	defer pool.Close()

	if err := jukebox.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("jukebox-service: migrate: %v", err)
	}
	if err := auth.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("jukebox-service: migrate: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("jukebox-service: redis: %v", err)
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
	}

	authSrv := auth.NewServer(pool, cfg.JWTSecret, cfg.AvatarDir, cfg.SecureCookies)
	yt := provider.NewYouTubeClient(cfg.YouTubeKeys, rdb)
	jbSrv := jukebox.NewServer(pool, rdb, yt, cfg.AdvancePolicy)
	providerSrv := provider.NewServer(yt)

	r := chi.NewRouter()
	r.Use(requestLogMiddleware)
	r.Use(corsMiddleware(cfg.AllowedOrigin))
	r.Use(bodySizeLimitMiddleware(6 * 1024 * 1024))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","service":"jukebox-service"}`))
	})

	r.Route("/api", func(api chi.Router) {
		authSrv.Routes(api)
		jbSrv.Routes(api, authSrv.RequireUser, authSrv.RequireAdmin)
		providerSrv.Routes(api, authSrv.RequireUser)
	})

	r.Handle("/avatars/*", http.StripPrefix("/avatars/", http.FileServer(http.Dir(cfg.AvatarDir))))

	log.Printf("jukebox-service on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("jukebox-service: serve: %v", err)
	}
}
