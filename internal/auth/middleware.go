package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/family-album/internal/models"
	pkghttp "github.com/BradenHooton/family-album/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing session claims in context
	SessionContextKey contextKey = "session"
)

// TokenRevocationChecker defines the interface for checking if tokens are revoked
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// RevocationConfig holds configuration for token revocation behavior
type RevocationConfig struct {
	FailClosed bool // deny access when the revocation lookup fails
}

// AuthMiddleware validates session tokens without a revocation check
func AuthMiddleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return AuthMiddlewareWithRevocation(tm, nil, RevocationConfig{}, slog.Default())
}

// AuthMiddlewareWithRevocation validates the session token from the
// Authorization header or the session cookie, rejects revoked tokens and
// injects the claims into the request context
func AuthMiddlewareWithRevocation(tm *TokenManager, revocationChecker TokenRevocationChecker, revocationConfig RevocationConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractToken(r)
			if !ok {
				pkghttp.WriteUnauthorized(w, "missing session token")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired session")
				return
			}

			if revocationChecker != nil && claims.ID != "" {
				revoked, err := revocationChecker.IsTokenRevoked(r.Context(), claims.ID)
				if err != nil {
					if revocationConfig.FailClosed {
						pkghttp.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "unable to verify session status")
						return
					}
					logger.Warn("token revocation check failed, allowing request",
						slog.String("jti", claims.ID),
						slog.String("error", err.Error()))
				}
				if revoked {
					pkghttp.WriteUnauthorized(w, "session has been revoked")
					return
				}
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects sessions whose role does not grant role.
// Must be mounted after AuthMiddleware.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetSessionFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			if !models.HasRole(claims.Role, role) {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts session claims from request context
func GetSessionFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(SessionContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithSession returns a copy of ctx carrying claims
func WithSession(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, SessionContextKey, claims)
}

// extractToken prefers the Authorization header over the cookie
func extractToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	token, err := GetSessionCookie(r)
	if err != nil {
		return "", false
	}
	return token, true
}
