// Package routes defines HTTP routes for the blog service.
package routes

import (
	"log/slog"
	"net/http"

	"github.com/GunarsK-portfolio/blog-service/internal/config"
	"github.com/GunarsK-portfolio/blog-service/internal/handlers"
	"github.com/GunarsK-portfolio/blog-service/internal/metrics"
	"github.com/GunarsK-portfolio/blog-service/internal/middleware"
	"github.com/GunarsK-portfolio/blog-service/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Users    *handlers.UserHandler
	Profiles *handlers.ProfileHandler
	Posts    *handlers.PostHandler
	Health   *handlers.HealthHandler
}

// Setup configures all HTTP routes for the application.
func Setup(router *gin.Engine, cfg *config.Config, h Handlers, authService service.AuthService, userService service.UserService, m *metrics.Metrics, log *slog.Logger) {
	router.Use(
		middleware.RequestLogger(log),
		middleware.Recovery(),
		middleware.CORS(cfg.AllowedOrigins),
		m.Middleware(),
		middleware.CSRF(middleware.CSRFConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			CookieNames:    []string{handlers.AccessTokenCookie, handlers.RefreshTokenCookie},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusNotFound, "not found")
	})
	router.NoMethod(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.GET("/health", h.Health.Check)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	requireAuth := middleware.Auth(authService, middleware.AuthOptions{
		AccessCookie: handlers.AccessTokenCookie,
		Touch:        userService.TouchLastSeen,
	})

	v1 := router.Group("/api/v1")

	// JSON user API
	users := v1.Group("/users")
	{
		users.POST("/login", h.Users.Login)
		users.GET("", h.Users.List)
		users.POST("", h.Users.Create)
		users.GET("/:id", requireAuth, h.Users.Get)
		users.PUT("/:id", requireAuth, h.Users.Update)
	}

	// Browser sessions
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
		auth.PUT("/password", requireAuth, h.Auth.ChangePassword)
	}

	profiles := v1.Group("/profiles/:username")
	{
		profiles.GET("", requireAuth, h.Profiles.Show)
		profiles.POST("/follow", requireAuth, h.Profiles.Follow)
		profiles.POST("/unfollow", requireAuth, h.Profiles.Unfollow)
		profiles.GET("/followers", h.Profiles.Followers)
		profiles.GET("/following", h.Profiles.Following)
	}

	v1.GET("/posts", h.Posts.Explore)
	v1.POST("/posts", requireAuth, h.Posts.Create)
	v1.GET("/timeline", requireAuth, h.Posts.Timeline)
}
