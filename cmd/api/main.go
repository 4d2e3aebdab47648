package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/family-album/internal/auth"
	"github.com/BradenHooton/family-album/internal/background"
	"github.com/BradenHooton/family-album/internal/config"
	"github.com/BradenHooton/family-album/internal/database"
	"github.com/BradenHooton/family-album/internal/handlers"
	middlewareCustom "github.com/BradenHooton/family-album/internal/middleware"
	"github.com/BradenHooton/family-album/internal/repositories"
	"github.com/BradenHooton/family-album/internal/routes"
	"github.com/BradenHooton/family-album/internal/services"
	pkghttp "github.com/BradenHooton/family-album/pkg/http"
	pkglogger "github.com/BradenHooton/family-album/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	familyRepo := repositories.NewFamilyRepository(db)
	revokeRepo := repositories.NewTokenRevocationRepository(db)
	postRepo := repositories.NewPostRepository(db)
	childRepo := repositories.NewChildRepository(db)
	skillRepo := repositories.NewSkillRepository(db)

	auditLogger := pkglogger.NewAuditLogger(logger)
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Lockout state is in-memory and shared by every login request
	lockoutService := services.NewLockoutService(services.LockoutConfig{
		MaxAttemptsLevel1: cfg.Lockout.MaxAttemptsLevel1,
		CooldownLevel1:    cfg.Lockout.CooldownLevel1,
		MaxAttemptsLevel2: cfg.Lockout.MaxAttemptsLevel2,
		CooldownLevel2:    cfg.Lockout.CooldownLevel2,
		CleanupInterval:   cfg.Lockout.CleanupInterval,
	}, ipConfig, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionExpiry)

	// Timing delay for auth security
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	notifier := newAlertNotifier(cfg.Alert, logger)

	// Initialize services
	authService := services.NewAuthService(familyRepo, revokeRepo, tokenManager, lockoutService, timingDelay, notifier, logger, auditLogger)
	postService := services.NewPostService(postRepo, childRepo, logger, auditLogger)
	childService := services.NewChildService(childRepo, skillRepo, logger, auditLogger)

	// Initialize handlers
	cookieConfig := auth.CookieConfig{
		Domain:   cfg.Auth.CookieDomain,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
	}
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, lockoutService, ipConfig, cookieConfig),
		Posts:    handlers.NewPostHandler(postService),
		Children: handlers.NewChildHandler(childService),
	}

	// Bootstrap the family PINs if configured
	if cfg.Family.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := ensureFamily(ctx, authService, cfg.Family, cfg.Server.Env, logger); err != nil {
			logger.Error("failed to ensure family access", slog.Any("error", err))
		}
		cancel()
	} else {
		logger.Info("no FAMILY_VIEWER_PIN or FAMILY_EDITOR_PIN set, skipping family bootstrap")
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Both limiters key on the same client address as the lockout
	loginRateLimit := middlewareCustom.DefaultAuthRateLimit()
	loginRateLimit.IPConfig = ipConfig
	if cfg.Auth.LoginRequestsPerMin > 0 {
		loginRateLimit.RequestsPerMinute = cfg.Auth.LoginRequestsPerMin
	}
	writeRateLimit := middlewareCustom.DefaultWriteRateLimit()
	writeRateLimit.IPConfig = ipConfig

	// Register routes
	routes.RegisterRoutes(router, h, tokenManager, revokeRepo, routes.Config{
		LoginRateLimit: loginRateLimit,
		WriteRateLimit: writeRateLimit,
		Revocation:     auth.RevocationConfig{FailClosed: cfg.Auth.RevocationFailClosed},
	}, logger)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{"status": "unhealthy", "database": "down"})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "database": "up", "pool": db.Stats()})
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupManager := background.NewCleanupManager(lockoutService, revokeRepo, logger, cfg.Lockout.CleanupInterval)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// newAlertNotifier sends lockout alerts through SES when a recipient is
// configured and drops them otherwise
func newAlertNotifier(cfg config.AlertConfig, logger *slog.Logger) services.AlertNotifier {
	if cfg.ToAddress == "" || cfg.FromAddress == "" {
		logger.Info("no ALERT_TO_ADDRESS or ALERT_FROM_ADDRESS set, lockout alerts disabled")
		return services.NoopAlertNotifier{}
	}

	notifier, err := services.NewSESAlertNotifier(cfg.AWSRegion, cfg.FromAddress, cfg.ToAddress, logger)
	if err != nil {
		logger.Error("failed to initialize SES alert notifier, lockout alerts disabled", slog.Any("error", err))
		return services.NoopAlertNotifier{}
	}
	return notifier
}

// ensureFamily stores the configured PINs, replacing any previous ones
func ensureFamily(ctx context.Context, authService *services.AuthService, cfg config.FamilyConfig, env string, logger *slog.Logger) error {
	family, err := authService.EnsureFamily(ctx, cfg.Name, cfg.Phone, cfg.ViewerPIN, cfg.EditorPIN)
	if err != nil {
		return err
	}

	logger.Info("family access ready",
		slog.String("family_id", family.ID),
		pkglogger.RedactedAttr("phone", family.Phone, env),
	)
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
