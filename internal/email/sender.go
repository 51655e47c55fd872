// Package email provides transactional email delivery over SMTP.
package email

import (
	"context"

	"rental_portal_backend/platform/config"
)

// Sender delivers the application's transactional emails.
type Sender interface {
	// SendWelcomeEmail greets a user after their first profile is created.
	SendWelcomeEmail(ctx context.Context, toEmail, firstName string) error

	// SendSavedSearchMatchEmail alerts a user that a new listing matches one
	// of their saved searches.
	SendSavedSearchMatchEmail(ctx context.Context, toEmail, searchName, listingURL string) error

	// SendTrustScoreChangedEmail informs a user their trust score moved.
	SendTrustScoreChangedEmail(ctx context.Context, toEmail string, score, previousScore int) error
}

// NewSender returns an SMTP-backed sender, or a NoopSender when email
// delivery is disabled in the configuration.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

// NoopSender drops all emails. Used in development and tests.
type NoopSender struct{}

var _ Sender = NoopSender{}

func (NoopSender) SendWelcomeEmail(context.Context, string, string) error { return nil }

func (NoopSender) SendSavedSearchMatchEmail(context.Context, string, string, string) error {
	return nil
}

func (NoopSender) SendTrustScoreChangedEmail(context.Context, string, int, int) error { return nil }
