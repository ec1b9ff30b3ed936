// Package main is the entry point for the blog service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GunarsK-portfolio/blog-service/internal/config"
	"github.com/GunarsK-portfolio/blog-service/internal/database"
	"github.com/GunarsK-portfolio/blog-service/internal/handlers"
	"github.com/GunarsK-portfolio/blog-service/internal/logger"
	"github.com/GunarsK-portfolio/blog-service/internal/metrics"
	"github.com/GunarsK-portfolio/blog-service/internal/pagination"
	"github.com/GunarsK-portfolio/blog-service/internal/repository"
	"github.com/GunarsK-portfolio/blog-service/internal/routes"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/GunarsK-portfolio/blog-service/pkg/redis"
	"github.com/gin-gonic/gin"
)

// @title Blog Service API
// @version 1.0
// @description Users, posts and follows for a small social blog
// @host localhost:8085
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New("blog-service", cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL, database.Options{MaxOpenConns: cfg.DBMaxOpenConns, Logger: log})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	store := repository.NewStore(db)
	m := metrics.New("blog")

	jwtService := service.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	if jwtService == nil {
		log.Error("invalid JWT configuration")
		os.Exit(1)
	}
	authService := service.NewAuthService(store.Users, jwtService, redisClient)
	userService := service.NewUserService(store, log)
	followService := service.NewFollowService(store)
	postService := service.NewPostService(store)

	limits := pagination.Limits{DefaultPerPage: cfg.DefaultPerPage, MaxPerPage: cfg.MaxPerPage}
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, userService, handlers.NewCookieHelper(cfg.Cookie), jwtService, m),
		Users:    handlers.NewUserHandler(authService, userService, limits, m),
		Profiles: handlers.NewProfileHandler(userService, followService, postService, limits),
		Posts:    handlers.NewPostHandler(postService, limits, m),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": store.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.Setup(router, cfg, h, authService, userService, m, log)

	addr := net.JoinHostPort("", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("blog service starting", "addr", addr, "environment", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("blog service stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
