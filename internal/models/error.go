package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication state errors
	ErrRateLimitExceeded = errors.New("too many failed attempts")
	ErrInvalidPIN        = errors.New("invalid pin")

	// Photo set errors
	ErrInvalidPhotoOrder = errors.New("photo order must be a permutation of the current photo set")
	ErrPhotoNotInSet     = errors.New("photo is not part of the post's photo set")
)

// LockoutError is returned when a client identifier is inside a cooldown window.
// errors.Is(err, ErrRateLimitExceeded) holds for every LockoutError.
type LockoutError struct {
	Level         int
	TimeRemaining time.Duration
	BlockedUntil  time.Time
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("locked out (level %d) for %s", e.Level, e.TimeRemaining)
}

func (e *LockoutError) Unwrap() error {
	return ErrRateLimitExceeded
}

// InvalidPINError is returned for a wrong PIN that did not trigger a lockout.
type InvalidPINError struct {
	AttemptsRemaining int
}

func (e *InvalidPINError) Error() string {
	return fmt.Sprintf("invalid pin, %d attempts remaining", e.AttemptsRemaining)
}

func (e *InvalidPINError) Is(target error) bool {
	return target == ErrUnauthorized || target == ErrInvalidPIN
}
