package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/BradenHooton/family-album/internal/auth"
	"github.com/BradenHooton/family-album/internal/models"
	"github.com/BradenHooton/family-album/internal/services"
	pkghttp "github.com/BradenHooton/family-album/pkg/http"
)

// AuthServiceInterface defines the interface for PIN authentication
type AuthServiceInterface interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	Logout(ctx context.Context, claims *models.TokenClaims) error
	Status(clientID string) models.LockoutStatus
}

// ClientIdentifier derives the lockout identifier of a request
type ClientIdentifier interface {
	Identify(r *http.Request, phone string) string
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service    AuthServiceInterface
	identifier ClientIdentifier
	ipConfig   *pkghttp.IPConfig
	cookies    auth.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, identifier ClientIdentifier, ipConfig *pkghttp.IPConfig, cookies auth.CookieConfig) *AuthHandler {
	return &AuthHandler{
		service:    service,
		identifier: identifier,
		ipConfig:   ipConfig,
		cookies:    cookies,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	PIN   string `json:"pin" validate:"required,pin"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

// LoginResponse is returned on a successful sign-in
type LoginResponse struct {
	Success     bool      `json:"success"`
	Role        string    `json:"role"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// StatusResponse is the lockout state of the calling client
type StatusResponse struct {
	models.LockoutStatus
	TimeRemaining int64 `json:"time_remaining"` // milliseconds
}

// SessionResponse describes the current session
type SessionResponse struct {
	Authenticated bool      `json:"authenticated"`
	Role          string    `json:"role"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Login handles PIN login.
// Malformed input is rejected before the lockout state is consulted, so it
// never counts as an attempt.
// @Summary PIN login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} pkghttp.InvalidCredentialsResponse
// @Failure 429 {object} pkghttp.LockoutResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.Login(r.Context(), services.LoginRequest{
		PIN:       req.PIN,
		Phone:     req.Phone,
		ClientID:  h.identifier.Identify(r, req.Phone),
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
	})
	if err != nil {
		var locked *models.LockoutError
		var invalid *models.InvalidPINError
		switch {
		case errors.As(err, &locked):
			pkghttp.WriteLockedOut(w, lockoutMessage(locked.TimeRemaining), locked.Level, locked.TimeRemaining, locked.BlockedUntil)
		case errors.As(err, &invalid):
			pkghttp.WriteInvalidCredentials(w, invalidPINMessage(invalid.AttemptsRemaining), invalid.AttemptsRemaining)
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetSessionCookie(w, result.AccessToken, result.ExpiresAt, h.cookies)

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:     true,
		Role:        result.Role,
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
	})
}

// Status reports the caller's lockout state without recording anything
// @Summary Lockout status
// @Param phone query string false "Family phone number"
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /auth/status [get]
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	status := h.service.Status(h.identifier.Identify(r, phone))

	pkghttp.WriteJSON(w, http.StatusOK, StatusResponse{
		LockoutStatus: status,
		TimeRemaining: status.TimeRemaining.Milliseconds(),
	})
}

// Logout revokes the session token and clears the session cookie
// @Summary Logout
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Invalid token")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	auth.ClearSessionCookie(w, h.cookies)
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the role carried by the current session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	resp := SessionResponse{Authenticated: true, Role: claims.Role}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

func lockoutMessage(remaining time.Duration) string {
	return fmt.Sprintf("Too many incorrect attempts. Try again in %s", services.FormatDuration(remaining))
}

// invalidPINMessage gets more explicit as the client nears a lockout
func invalidPINMessage(attemptsRemaining int) string {
	if attemptsRemaining == 1 {
		return "Incorrect PIN. 1 attempt remaining before a temporary lockout"
	}
	return "Incorrect PIN"
}
