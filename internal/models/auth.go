package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeSession is the only token type issued by the album API
const TokenTypeSession = "session"

// TokenClaims are the JWT claims carried by a session token
type TokenClaims struct {
	Type     string `json:"type"`
	Role     string `json:"role"`
	FamilyID string `json:"family_id"`
	jwt.RegisteredClaims
}

// FamilyAccess holds the PIN credentials for one family album.
// Phone is empty for the default (single-family) deployment.
type FamilyAccess struct {
	ID            string
	Name          string
	Phone         string
	ViewerPINHash string
	EditorPINHash string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
