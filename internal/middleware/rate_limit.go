package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/BradenHooton/family-album/internal/auth"
	pkghttp "github.com/BradenHooton/family-album/pkg/http"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	// IPConfig decides which forwarding headers are trusted when keying by
	// client IP. Nil keys on the peer address only.
	IPConfig *pkghttp.IPConfig
}

// DefaultAuthRateLimit caps raw login traffic per IP. It sits in front of
// the PIN lockout and only stops floods; wrong PINs are handled by the
// lockout service.
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
	}
}

// DefaultWriteRateLimit caps content changes per family session
func DefaultWriteRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 60,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(clientIPKey(config.IPConfig)),
		httprate.WithLimitHandler(writeRateLimited),
	)
}

// RateLimitBySession limits requests per family session. Requests without a
// session fall back to the client IP.
func RateLimitBySession(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(sessionKey(config.IPConfig)),
		httprate.WithLimitHandler(writeRateLimited),
	)
}

// clientIPKey keys on the same address the lockout uses. Forwarding headers
// from untrusted peers are ignored.
func clientIPKey(ipConfig *pkghttp.IPConfig) httprate.KeyFunc {
	return func(r *http.Request) (string, error) {
		return pkghttp.ExtractClientIP(r, ipConfig), nil
	}
}

func sessionKey(ipConfig *pkghttp.IPConfig) httprate.KeyFunc {
	byIP := clientIPKey(ipConfig)
	return func(r *http.Request) (string, error) {
		if claims := auth.GetSessionFromContext(r); claims != nil && claims.FamilyID != "" {
			return "family:" + claims.FamilyID + ":" + claims.Role, nil
		}
		return byIP(r)
	}
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
}
