package auth

import (
	"fmt"
	"time"

	"github.com/BradenHooton/family-album/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager handles session token generation and validation
type TokenManager struct {
	secret        string
	sessionExpiry time.Duration
	now           func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, sessionExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:        secret,
		sessionExpiry: sessionExpiry,
		now:           time.Now,
	}
}

// SessionExpiry returns how long issued sessions stay valid
func (tm *TokenManager) SessionExpiry() time.Duration {
	return tm.sessionExpiry
}

// GenerateSessionToken signs a session token for role within familyID.
// It returns the token, its expiry and its JTI.
func (tm *TokenManager) GenerateSessionToken(familyID, role string) (string, time.Time, string, error) {
	if !models.IsValidRole(role) {
		return "", time.Time{}, "", fmt.Errorf("unknown role %q", role)
	}

	now := tm.now()
	expiresAt := now.Add(tm.sessionExpiry)
	jti := uuid.New().String()

	claims := &models.TokenClaims{
		Type:     models.TokenTypeSession,
		Role:     role,
		FamilyID: familyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   familyID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", time.Time{}, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, expiresAt, jti, nil
}

// ValidateToken verifies a token and returns its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	}, jwt.WithTimeFunc(tm.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Type != models.TokenTypeSession {
		return nil, fmt.Errorf("invalid token type %q", claims.Type)
	}
	if !models.IsValidRole(claims.Role) || claims.FamilyID == "" {
		return nil, fmt.Errorf("invalid token: missing role or family")
	}

	return claims, nil
}
