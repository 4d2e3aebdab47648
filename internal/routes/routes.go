package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/family-album/internal/auth"
	"github.com/BradenHooton/family-album/internal/handlers"
	"github.com/BradenHooton/family-album/internal/middleware"
	"github.com/BradenHooton/family-album/internal/models"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Auth     *handlers.AuthHandler
	Posts    *handlers.PostHandler
	Children *handlers.ChildHandler
}

// Config carries the route-level settings
type Config struct {
	LoginRateLimit middleware.RateLimitConfig
	WriteRateLimit middleware.RateLimitConfig
	Revocation     auth.RevocationConfig
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokenManager *auth.TokenManager,
	revokeChecker auth.TokenRevocationChecker,
	cfg Config,
	logger *slog.Logger,
) {
	// Public routes - no session required
	router.With(middleware.RateLimitByIP(cfg.LoginRateLimit)).Post("/auth/login", h.Auth.Login)
	router.Get("/auth/status", h.Auth.Status)

	// Protected routes - session required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddlewareWithRevocation(tokenManager, revokeChecker, cfg.Revocation, logger))

		r.Get("/auth/session", h.Auth.Session)
		r.Post("/auth/logout", h.Auth.Logout)

		// Viewer routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleViewer))

			r.Get("/posts", h.Posts.ListPosts)
			r.Get("/posts/calendar", h.Posts.Calendar)
			r.Get("/posts/hashtags", h.Posts.Hashtags)
			r.Get("/posts/{id}", h.Posts.GetPost)

			r.Get("/children", h.Children.ListChildren)
			r.Get("/children/{id}/skills", h.Children.ListSkills)
		})

		// Editor routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleEditor))
			r.Use(middleware.RateLimitBySession(cfg.WriteRateLimit))

			r.Post("/posts", h.Posts.CreatePost)
			r.Put("/posts/{id}", h.Posts.UpdatePost)
			r.Delete("/posts/{id}", h.Posts.DeletePost)
			r.Put("/posts/{id}/photos/order", h.Posts.ReorderPhotos)
			r.Put("/posts/{id}/photos/cover", h.Posts.SetCoverPhoto)

			r.Post("/children", h.Children.CreateChild)
			r.Put("/children/{id}", h.Children.UpdateChild)
			r.Delete("/children/{id}", h.Children.DeleteChild)
			r.Post("/children/{id}/skills", h.Children.CreateSkill)

			r.Put("/skills/{id}", h.Children.UpdateSkill)
			r.Patch("/skills/{id}/progress", h.Children.UpdateSkillProgress)
			r.Delete("/skills/{id}", h.Children.DeleteSkill)
		})
	})
}
