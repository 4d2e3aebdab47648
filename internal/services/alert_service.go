package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/BradenHooton/family-album/internal/models"
)

// SecurityAlert describes a lockout worth telling the family about
type SecurityAlert struct {
	ClientID     string
	IPAddress    string
	Level        int
	Attempts     int
	Cooldown     time.Duration
	BlockedUntil time.Time
	Analysis     models.SecurityAnalysis
}

// AlertNotifier delivers security alerts out of band
type AlertNotifier interface {
	NotifyLockout(ctx context.Context, alert SecurityAlert) error
}

// NoopAlertNotifier drops alerts. Used when no recipient is configured.
type NoopAlertNotifier struct{}

func (NoopAlertNotifier) NotifyLockout(ctx context.Context, alert SecurityAlert) error {
	return nil
}

// sesSender is the subset of the SES client used for alerts
type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESAlertNotifier emails security alerts through AWS SES
type SESAlertNotifier struct {
	client      sesSender
	fromAddress string
	toAddress   string
	logger      *slog.Logger
}

// NewSESAlertNotifier creates an SES notifier using the default AWS credential chain
func NewSESAlertNotifier(region, fromAddress, toAddress string, logger *slog.Logger) (*SESAlertNotifier, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSESAlertNotifier(ses.NewFromConfig(cfg), fromAddress, toAddress, logger), nil
}

func newSESAlertNotifier(client sesSender, fromAddress, toAddress string, logger *slog.Logger) *SESAlertNotifier {
	return &SESAlertNotifier{
		client:      client,
		fromAddress: fromAddress,
		toAddress:   toAddress,
		logger:      logger,
	}
}

// NotifyLockout sends a plain-text alert describing the lockout
func (n *SESAlertNotifier) NotifyLockout(ctx context.Context, alert SecurityAlert) error {
	subject := fmt.Sprintf("Family album: sign-in locked (level %d)", alert.Level)

	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{n.toAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(alertBody(alert))},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		n.logger.Error("failed to send security alert via SES",
			slog.Int("level", alert.Level),
			slog.Any("error", err))
		return fmt.Errorf("failed to send alert: %w", err)
	}

	n.logger.Info("security alert sent",
		slog.Int("level", alert.Level),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

func alertBody(alert SecurityAlert) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Repeated incorrect PINs were entered for your family album.\n\n")
	fmt.Fprintf(&b, "Lockout level:   %d\n", alert.Level)
	fmt.Fprintf(&b, "Failed attempts: %d\n", alert.Attempts)
	fmt.Fprintf(&b, "Locked for:      %s\n", FormatDuration(alert.Cooldown))
	fmt.Fprintf(&b, "Locked until:    %s\n", alert.BlockedUntil.UTC().Format(time.RFC1123))
	if alert.IPAddress != "" {
		fmt.Fprintf(&b, "Network address: %s\n", alert.IPAddress)
	}
	fmt.Fprintf(&b, "Distinct PINs:   %d\n", alert.Analysis.UniquePINs)
	fmt.Fprintf(&b, "Distinct phones: %d\n", alert.Analysis.UniquePhones)

	if alert.Analysis.IsLikelyBruteForce {
		b.WriteString("\nThe pattern looks like someone guessing PINs. Consider changing your PINs.\n")
	} else {
		b.WriteString("\nIf this was you, wait for the lockout to expire and try again.\n")
	}

	return b.String()
}
