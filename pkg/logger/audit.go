package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	FamilyID      string
	Role          string
	ClientID      string
	IPAddress     string
	Phone         string // masked before it is written
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// LockoutEvent describes a lockout that was just imposed on a client
type LockoutEvent struct {
	ClientID           string
	IPAddress          string
	Level              int
	Attempts           int
	Cooldown           time.Duration
	UniquePINs         int
	UniquePhones       int
	IsLikelyBruteForce bool
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogAuthAttempt logs PIN authentication attempts
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.FamilyID != "" {
		attrs = append(attrs, slog.String("family_id", event.FamilyID))
	}
	if event.Role != "" {
		attrs = append(attrs, slog.String("role", event.Role))
	}
	if event.ClientID != "" {
		attrs = append(attrs, slog.String("client_id", event.ClientID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.Phone != "" {
		attrs = append(attrs, slog.String("phone", MaskPhone(event.Phone)))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogLockout logs a lockout with the brute-force heuristics that accompanied it
func (al *AuditLogger) LogLockout(event LockoutEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "lockout"),
		slog.String("event_type", "client_locked_out"),
		slog.String("client_id", event.ClientID),
		slog.Int("level", event.Level),
		slog.Int("attempts", event.Attempts),
		slog.String("cooldown", event.Cooldown.String()),
		slog.Int("unique_pins", event.UniquePINs),
		slog.Int("unique_phones", event.UniquePhones),
		slog.Bool("likely_brute_force", event.IsLikelyBruteForce),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
}

// LogContentChange logs create/update/delete of album content by an editor
func (al *AuditLogger) LogContentChange(eventType, familyID, resourceID string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "content"),
		slog.String("event_type", eventType),
		slog.String("family_id", familyID),
		slog.String("resource_id", resourceID),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
