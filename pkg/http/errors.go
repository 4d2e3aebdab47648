package http

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error   string `json:"error"`            // Machine-readable error code
	Message string `json:"message"`          // Human-readable message
	Details string `json:"details,omitempty"` // Optional additional context
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorWithDetails(w, statusCode, errorCode, message, "")
}

// WriteErrorWithDetails writes a JSON error response with additional details
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, errorCode, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   errorCode,
		Message: message,
		Details: details,
	}

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(resp)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}

// LockoutResponse is the error body returned while a client is locked out
type LockoutResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	RateLimited   bool   `json:"rate_limited"`
	Level         int    `json:"level"`
	TimeRemaining int64  `json:"time_remaining"` // milliseconds
	BlockedUntil  string `json:"blocked_until"`
}

// InvalidCredentialsResponse is the error body for a wrong PIN that did not trigger a lockout
type InvalidCredentialsResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	RateLimited       bool   `json:"rate_limited"`
	AttemptsRemaining int    `json:"attempts_remaining"`
}

// WriteJSON writes v as a JSON body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteLockedOut writes a 429 with the lockout level and remaining cooldown
func WriteLockedOut(w http.ResponseWriter, message string, level int, timeRemaining time.Duration, blockedUntil time.Time) {
	retryAfter := int64(math.Ceil(timeRemaining.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))

	WriteJSON(w, http.StatusTooManyRequests, LockoutResponse{
		Error:         "rate_limit_exceeded",
		Message:       message,
		RateLimited:   true,
		Level:         level,
		TimeRemaining: timeRemaining.Milliseconds(),
		BlockedUntil:  blockedUntil.UTC().Format(time.RFC3339),
	})
}

// WriteInvalidCredentials writes a 401 carrying the attempts left before a lockout
func WriteInvalidCredentials(w http.ResponseWriter, message string, attemptsRemaining int) {
	WriteJSON(w, http.StatusUnauthorized, InvalidCredentialsResponse{
		Error:             "unauthorized",
		Message:           message,
		RateLimited:       false,
		AttemptsRemaining: attemptsRemaining,
	})
}
