package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/BradenHooton/family-album/internal/auth"
	"github.com/BradenHooton/family-album/internal/models"
	pkgauth "github.com/BradenHooton/family-album/pkg/auth"
	pkglogger "github.com/BradenHooton/family-album/pkg/logger"
)

const alertTimeout = 5 * time.Second

// FamilyRepository loads and stores family PIN credentials
type FamilyRepository interface {
	GetByPhone(ctx context.Context, phone string) (*models.FamilyAccess, error)
	Upsert(ctx context.Context, family *models.FamilyAccess) (*models.FamilyAccess, error)
}

// TokenRevocationRepository defines the interface for token revocation operations
type TokenRevocationRepository interface {
	RevokeToken(ctx context.Context, jti, familyID string, expiresAt time.Time, reason string) error
}

// AuthService runs PIN sign-in behind the lockout gate
type AuthService struct {
	families    FamilyRepository
	revokeRepo  TokenRevocationRepository
	tm          *auth.TokenManager
	lockout     *LockoutService
	timing      *auth.TimingDelay
	notifier    AlertNotifier
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	families FamilyRepository,
	revokeRepo TokenRevocationRepository,
	tm *auth.TokenManager,
	lockout *LockoutService,
	timing *auth.TimingDelay,
	notifier AlertNotifier,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	if notifier == nil {
		notifier = NoopAlertNotifier{}
	}
	return &AuthService{
		families:    families,
		revokeRepo:  revokeRepo,
		tm:          tm,
		lockout:     lockout,
		timing:      timing,
		notifier:    notifier,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// LoginRequest is a PIN submission that has already passed format validation
type LoginRequest struct {
	PIN       string
	Phone     string
	ClientID  string
	IPAddress string
}

// LoginResult is a successful sign-in
type LoginResult struct {
	Role        string    `json:"role"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	FamilyID    string    `json:"-"`
}

// Login checks the lockout gate, verifies the PIN and records the outcome.
// It returns *models.LockoutError while the client is cooling down and
// *models.InvalidPINError for a wrong PIN that did not trigger a lockout.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if status := s.lockout.CheckBlocked(req.ClientID); status.Blocked {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_blocked",
			ClientID:      req.ClientID,
			IPAddress:     req.IPAddress,
			Phone:         req.Phone,
			FailureReason: "locked_out",
			Metadata:      map[string]string{"level": strconv.Itoa(status.Level)},
		})
		return nil, &models.LockoutError{
			Level:         status.Level,
			TimeRemaining: status.TimeRemaining,
			BlockedUntil:  *status.BlockedUntil,
		}
	}

	start := time.Now()
	phone := pkgauth.NormalizePhone(req.Phone)

	family, err := s.families.GetByPhone(ctx, phone)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to load family credentials", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	role := matchPIN(family, req.PIN)
	if role != "" {
		return s.loginSucceeded(req, family, role)
	}

	return nil, s.loginFailed(ctx, req, phone, family, start)
}

// matchPIN returns the role granted by pin, trying the editor PIN first
func matchPIN(family *models.FamilyAccess, pin string) string {
	if family == nil {
		return ""
	}
	if pkgauth.ComparePIN(family.EditorPINHash, pin) == nil {
		return models.RoleEditor
	}
	if pkgauth.ComparePIN(family.ViewerPINHash, pin) == nil {
		return models.RoleViewer
	}
	return ""
}

func (s *AuthService) loginSucceeded(req LoginRequest, family *models.FamilyAccess, role string) (*LoginResult, error) {
	s.lockout.RecordSuccess(req.ClientID)

	token, expiresAt, _, err := s.tm.GenerateSessionToken(family.ID, role)
	if err != nil {
		s.logger.Error("failed to issue session token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		FamilyID:  family.ID,
		Role:      role,
		ClientID:  req.ClientID,
		IPAddress: req.IPAddress,
		Phone:     req.Phone,
		Success:   true,
	})

	return &LoginResult{
		Role:        role,
		AccessToken: token,
		ExpiresAt:   expiresAt,
		FamilyID:    family.ID,
	}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, req LoginRequest, phone string, family *models.FamilyAccess, start time.Time) error {
	outcome := s.lockout.RecordFailure(req.ClientID, req.PIN, phone)

	reason := "invalid_pin"
	familyID := ""
	if family == nil {
		reason = "unknown_family"
	} else {
		familyID = family.ID
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		FamilyID:      familyID,
		ClientID:      req.ClientID,
		IPAddress:     req.IPAddress,
		Phone:         req.Phone,
		FailureReason: reason,
		Metadata: map[string]string{
			"attempts":    strconv.Itoa(outcome.TotalAttempts),
			"unique_pins": strconv.Itoa(outcome.Analysis.UniquePINs),
			"brute_force": strconv.FormatBool(outcome.Analysis.IsLikelyBruteForce),
		},
	})

	if outcome.Analysis.IsLikelyBruteForce {
		s.logger.Warn("likely PIN brute force",
			slog.String("client_id", req.ClientID),
			slog.Int("unique_pins", outcome.Analysis.UniquePINs),
			slog.Int("unique_phones", outcome.Analysis.UniquePhones),
			slog.Int("attempts", outcome.Analysis.TotalAttempts))
	}

	if outcome.Blocked {
		s.auditLogger.LogLockout(pkglogger.LockoutEvent{
			ClientID:           req.ClientID,
			IPAddress:          req.IPAddress,
			Level:              outcome.Level,
			Attempts:           outcome.TotalAttempts,
			Cooldown:           outcome.CooldownTime,
			UniquePINs:         outcome.Analysis.UniquePINs,
			UniquePhones:       outcome.Analysis.UniquePhones,
			IsLikelyBruteForce: outcome.Analysis.IsLikelyBruteForce,
		})
		s.sendAlert(ctx, req, outcome)
	}

	s.timing.WaitFrom(ctx, start, false)

	if outcome.Blocked {
		return &models.LockoutError{
			Level:         outcome.Level,
			TimeRemaining: outcome.TimeRemaining,
			BlockedUntil:  outcome.BlockedUntil,
		}
	}
	return &models.InvalidPINError{AttemptsRemaining: outcome.AttemptsRemaining}
}

// sendAlert never fails the login; delivery errors are only logged
func (s *AuthService) sendAlert(ctx context.Context, req LoginRequest, outcome models.FailureOutcome) {
	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()

	err := s.notifier.NotifyLockout(alertCtx, SecurityAlert{
		ClientID:     req.ClientID,
		IPAddress:    req.IPAddress,
		Level:        outcome.Level,
		Attempts:     outcome.TotalAttempts,
		Cooldown:     outcome.CooldownTime,
		BlockedUntil: outcome.BlockedUntil,
		Analysis:     outcome.Analysis,
	})
	if err != nil {
		s.logger.Warn("security alert not delivered", slog.Any("error", err))
	}
}

// Status reports the lockout state for a client without recording anything
func (s *AuthService) Status(clientID string) models.LockoutStatus {
	return s.lockout.Status(clientID)
}

// Logout revokes the session so the token stops working before it expires
func (s *AuthService) Logout(ctx context.Context, claims *models.TokenClaims) error {
	if claims == nil || claims.ID == "" {
		return models.ErrUnauthorized
	}

	expiresAt := time.Now().Add(s.tm.SessionExpiry())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revokeRepo.RevokeToken(ctx, claims.ID, claims.FamilyID, expiresAt, "logout"); err != nil {
		s.logger.Error("failed to revoke session", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "logout",
		FamilyID:  claims.FamilyID,
		Role:      claims.Role,
		Success:   true,
	})
	return nil
}

// EnsureFamily creates or updates the family row for phone with the given PINs
func (s *AuthService) EnsureFamily(ctx context.Context, name, phone, viewerPIN, editorPIN string) (*models.FamilyAccess, error) {
	if viewerPIN == editorPIN {
		return nil, fmt.Errorf("viewer and editor PINs must differ")
	}
	for label, pin := range map[string]string{"viewer": viewerPIN, "editor": editorPIN} {
		if err := pkgauth.ValidateNewPIN(pin); err != nil {
			return nil, fmt.Errorf("%s PIN: %w", label, err)
		}
	}

	viewerHash, err := pkgauth.HashPIN(viewerPIN)
	if err != nil {
		return nil, err
	}
	editorHash, err := pkgauth.HashPIN(editorPIN)
	if err != nil {
		return nil, err
	}

	return s.families.Upsert(ctx, &models.FamilyAccess{
		Name:          name,
		Phone:         pkgauth.NormalizePhone(phone),
		ViewerPINHash: viewerHash,
		EditorPINHash: editorHash,
	})
}
