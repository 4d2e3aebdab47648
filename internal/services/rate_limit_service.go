package services

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/BradenHooton/family-album/internal/models"
	pkgauth "github.com/BradenHooton/family-album/pkg/auth"
	pkghttp "github.com/BradenHooton/family-album/pkg/http"
)

const (
	userAgentPrefixLen = 20
	phoneHashLen       = 16
	bruteForcePINs     = 5
	bruteForcePhones   = 3
)

// LockoutConfig holds the thresholds of the two-level progressive lockout
type LockoutConfig struct {
	MaxAttemptsLevel1 int           // failures before the short cooldown
	CooldownLevel1    time.Duration
	MaxAttemptsLevel2 int           // total failures before the long cooldown
	CooldownLevel2    time.Duration
	CleanupInterval   time.Duration
}

// DefaultLockoutConfig returns 3 failures -> 10 minutes, 6 failures -> 24 hours
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttemptsLevel1: 3,
		CooldownLevel1:    10 * time.Minute,
		MaxAttemptsLevel2: 6,
		CooldownLevel2:    24 * time.Hour,
		CleanupInterval:   1 * time.Hour,
	}
}

// LockoutService gates PIN attempts per client identifier.
// All state lives in process memory and is lost on restart.
type LockoutService struct {
	mu       sync.Mutex
	attempts map[string]*models.AttemptRecord
	blocks   map[string]*models.BlockRecord

	config   LockoutConfig
	ipConfig *pkghttp.IPConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewLockoutService creates a LockoutService with empty state
func NewLockoutService(config LockoutConfig, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *LockoutService {
	return &LockoutService{
		attempts: make(map[string]*models.AttemptRecord),
		blocks:   make(map[string]*models.BlockRecord),
		config:   config,
		ipConfig: ipConfig,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *LockoutService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Config returns the active lockout thresholds
func (s *LockoutService) Config() LockoutConfig {
	return s.config
}

// Identify derives the client identifier from request metadata.
// The phone, when present, scopes the identifier so that different phones
// behind one network address are tracked independently.
func (s *LockoutService) Identify(r *http.Request, phone string) string {
	ip := pkghttp.ExtractClientIP(r, s.ipConfig)

	ua := "unknown"
	if raw := r.Header.Get("User-Agent"); raw != "" {
		ua = base64.RawURLEncoding.EncodeToString([]byte(raw))
		if len(ua) > userAgentPrefixLen {
			ua = ua[:userAgentPrefixLen]
		}
	}

	id := ip + "_" + ua
	if normalized := pkgauth.NormalizePhone(phone); normalized != "" {
		id += "_" + fingerprint(normalized)[:phoneHashLen]
	}
	return id
}

// CheckBlocked reports whether id is inside a cooldown window.
// An expired block is removed as a side effect.
func (s *LockoutService) CheckBlocked(id string) models.LockoutStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blockStatusLocked(id, s.now())
}

// RecordFailure registers a failed credential check for id. The increment
// and the threshold check run under one lock.
func (s *LockoutService) RecordFailure(id, pin, phone string) models.FailureOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	rec, ok := s.attempts[id]
	if !ok {
		rec = &models.AttemptRecord{
			FirstAttempt:   now,
			DistinctPINs:   make(map[string]struct{}),
			DistinctPhones: make(map[string]struct{}),
		}
		s.attempts[id] = rec
	}

	rec.Count++
	rec.LastAttempt = now
	if pin != "" {
		rec.DistinctPINs[fingerprint(pin)] = struct{}{}
	}
	// Phones are kept hashed like PINs. Identify already scopes ids by
	// phone, so more than bruteForcePhones distinct phones on one id only
	// happens when a caller records phones outside the identifier.
	if normalized := pkgauth.NormalizePhone(phone); normalized != "" {
		rec.DistinctPhones[fingerprint(normalized)] = struct{}{}
	}
	analysis := analyzeRecord(rec)

	if rec.Count >= s.config.MaxAttemptsLevel2 {
		blockedUntil := now.Add(s.config.CooldownLevel2)
		s.blocks[id] = &models.BlockRecord{
			Level:          2,
			BlockedUntil:   blockedUntil,
			Attempts:       rec.Count,
			FirstViolation: rec.FirstAttempt,
		}
		// Level 2 closes the tracked window.
		delete(s.attempts, id)

		s.logger.Warn("client locked out",
			slog.String("client_id", id),
			slog.Int("level", 2),
			slog.Int("attempts", rec.Count),
			slog.Duration("cooldown", s.config.CooldownLevel2))

		return models.FailureOutcome{
			Blocked:       true,
			Level:         2,
			CooldownTime:  s.config.CooldownLevel2,
			TimeRemaining: s.config.CooldownLevel2,
			BlockedUntil:  blockedUntil,
			TotalAttempts: rec.Count,
			Analysis:      analysis,
		}
	}

	if rec.Count >= s.config.MaxAttemptsLevel1 {
		blockedUntil := now.Add(s.config.CooldownLevel1)
		s.blocks[id] = &models.BlockRecord{
			Level:          1,
			BlockedUntil:   blockedUntil,
			Attempts:       rec.Count,
			FirstViolation: rec.FirstAttempt,
		}
		// The attempt record stays so the count keeps climbing toward level 2
		// once this cooldown has passed.

		s.logger.Warn("client locked out",
			slog.String("client_id", id),
			slog.Int("level", 1),
			slog.Int("attempts", rec.Count),
			slog.Duration("cooldown", s.config.CooldownLevel1))

		return models.FailureOutcome{
			Blocked:       true,
			Level:         1,
			CooldownTime:  s.config.CooldownLevel1,
			TimeRemaining: s.config.CooldownLevel1,
			BlockedUntil:  blockedUntil,
			TotalAttempts: rec.Count,
			Analysis:      analysis,
		}
	}

	return models.FailureOutcome{
		AttemptsRemaining: s.config.MaxAttemptsLevel1 - rec.Count,
		TotalAttempts:     rec.Count,
		Analysis:          analysis,
	}
}

// RecordSuccess clears all lockout state for id
func (s *LockoutService) RecordSuccess(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.attempts, id)
	delete(s.blocks, id)
}

// Status returns the block view when id is blocked, otherwise an attempt
// summary. Counts are never mutated.
func (s *LockoutService) Status(id string) models.LockoutStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.blockStatusLocked(id, s.now())
	if status.Blocked {
		return status
	}

	status.AttemptsRemaining = s.config.MaxAttemptsLevel1
	if rec, ok := s.attempts[id]; ok {
		status.Attempts = rec.Count
		status.AttemptsRemaining = max(s.config.MaxAttemptsLevel1-rec.Count, 0)
	}
	return status
}

// Analyze summarizes the tracked window for id
func (s *LockoutService) Analyze(id string) models.SecurityAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.attempts[id]
	if !ok {
		return models.SecurityAnalysis{}
	}
	return analyzeRecord(rec)
}

func analyzeRecord(rec *models.AttemptRecord) models.SecurityAnalysis {
	analysis := models.SecurityAnalysis{
		UniquePINs:    len(rec.DistinctPINs),
		UniquePhones:  len(rec.DistinctPhones),
		TotalAttempts: rec.Count,
		TimeSpan:      rec.LastAttempt.Sub(rec.FirstAttempt),
	}
	analysis.IsLikelyBruteForce = analysis.UniquePINs > bruteForcePINs ||
		analysis.UniquePhones > bruteForcePhones
	return analysis
}

// Cleanup drops attempt records whose window started more than twice the
// long cooldown ago, and blocks that have expired. It returns how many of
// each were removed.
func (s *LockoutService) Cleanup() (attemptsRemoved, blocksRemoved int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	maxAge := 2 * s.config.CooldownLevel2

	for id, rec := range s.attempts {
		if now.Sub(rec.FirstAttempt) > maxAge {
			delete(s.attempts, id)
			attemptsRemoved++
		}
	}

	for id, block := range s.blocks {
		if !now.Before(block.BlockedUntil) {
			delete(s.blocks, id)
			blocksRemoved++
		}
	}

	return attemptsRemoved, blocksRemoved
}

// blockStatusLocked must be called with s.mu held
func (s *LockoutService) blockStatusLocked(id string, now time.Time) models.LockoutStatus {
	block, ok := s.blocks[id]
	if !ok {
		return models.LockoutStatus{}
	}

	if !now.Before(block.BlockedUntil) {
		delete(s.blocks, id)
		return models.LockoutStatus{}
	}

	blockedUntil := block.BlockedUntil
	return models.LockoutStatus{
		Blocked:       true,
		Level:         block.Level,
		TimeRemaining: blockedUntil.Sub(now),
		BlockedUntil:  &blockedUntil,
		Attempts:      block.Attempts,
	}
}

// FormatDuration renders d with its two largest units: "1h 0m", "1m 30s" or "5s"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	seconds := int((d % time.Minute) / time.Second)

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// fingerprint hashes values that must not be kept in memory verbatim
func fingerprint(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:])
}
