package models

import "time"

// AttemptRecord tracks failed PIN attempts for one client identifier
// that is not currently promoted to a level-2 block.
type AttemptRecord struct {
	Count          int
	FirstAttempt   time.Time
	LastAttempt    time.Time
	DistinctPINs   map[string]struct{}
	DistinctPhones map[string]struct{}
}

// BlockRecord marks a client identifier as locked out until BlockedUntil
type BlockRecord struct {
	Level          int       // 1 = short cooldown, 2 = long cooldown
	BlockedUntil   time.Time
	Attempts       int       // failure count that triggered the block
	FirstViolation time.Time // first failure of the sequence that led here
}

// LockoutStatus is the read-only view of a client identifier's lockout state
type LockoutStatus struct {
	Blocked           bool          `json:"blocked"`
	Level             int           `json:"level,omitempty"`
	TimeRemaining     time.Duration `json:"-"`
	BlockedUntil      *time.Time    `json:"blocked_until,omitempty"`
	Attempts          int           `json:"attempts"`
	AttemptsRemaining int           `json:"attempts_remaining"`
}

// FailureOutcome is the result of recording a failed attempt
type FailureOutcome struct {
	Blocked           bool
	Level             int
	CooldownTime      time.Duration
	TimeRemaining     time.Duration
	BlockedUntil      time.Time
	AttemptsRemaining int
	TotalAttempts     int
	// Analysis of the window as of this failure, taken before a level-2
	// block discards the attempt record
	Analysis SecurityAnalysis
}

// SecurityAnalysis summarizes how a client identifier has been probing PINs.
// It is used for logging and alerting only, never for gating.
type SecurityAnalysis struct {
	UniquePINs         int           `json:"unique_pins"`
	UniquePhones       int           `json:"unique_phones"`
	TotalAttempts      int           `json:"total_attempts"`
	TimeSpan           time.Duration `json:"-"`
	IsLikelyBruteForce bool          `json:"is_likely_brute_force"`
}
