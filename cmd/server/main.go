package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vedran77/chirp/internal/config"
	"github.com/vedran77/chirp/internal/database"
	"github.com/vedran77/chirp/internal/directory/clerk"
	"github.com/vedran77/chirp/internal/ratelimit"
	memorylimiter "github.com/vedran77/chirp/internal/ratelimit/memory"
	redislimiter "github.com/vedran77/chirp/internal/ratelimit/redis"
	"github.com/vedran77/chirp/internal/repository"
	memoryrepo "github.com/vedran77/chirp/internal/repository/memory"
	postgresrepo "github.com/vedran77/chirp/internal/repository/postgres"
	"github.com/vedran77/chirp/internal/service"
	"github.com/vedran77/chirp/internal/transport/http/handlers"
	"github.com/vedran77/chirp/internal/transport/ws"
	"github.com/vedran77/chirp/pkg/logger"
)

// Creation policy: at most 3 posts per rolling minute per author.
const (
	postRateLimit  = 3
	postRateWindow = time.Minute
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)

	// Post store
	var postRepo repository.PostRepository
	if cfg.Storage == "memory" {
		postRepo = memoryrepo.NewPostRepo()
		log.Info().Msg("Using in-memory post store")
	} else {
		pool, err := database.Connect(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("database connect")
		}
		defer pool.Close()

		if err := database.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("database migrate")
		}
		postRepo = postgresrepo.NewPostRepo(pool)
		log.Info().Msg("Connected to database")
	}

	// Rate limiter
	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisURL})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("redis connect")
		}
		limiter = redislimiter.NewLimiter(client, postRateLimit, postRateWindow)
		log.Info().Msg("Using redis rate limiter")
	} else {
		limiter = memorylimiter.NewLimiter(postRateLimit, postRateWindow)
		log.Info().Msg("Using in-memory rate limiter")
	}

	// User directory
	dir := clerk.NewClient(cfg.DirectoryURL, cfg.DirectoryToken)

	// Services
	postService := service.NewPostService(postRepo, dir, limiter)

	// Live feed stream
	hub := ws.NewHub()
	go hub.Run()
	postService.SetNotifier(ws.NewHubNotifier(hub))

	// Handlers + routes
	postHandler := handlers.NewPostHandler(postService)
	router := handlers.NewRouter(postHandler, ws.ServeWS(hub, cfg.JWTSecret), cfg.JWTSecret)

	// No server-wide write timeout: /ws/feed connections are long-lived.
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("Server stopped")
}
