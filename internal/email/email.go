// Package email delivers outbound notification emails over SMTP.
package email

import (
	"context"

	"legalintake_backend/platform/config"
)

// Sender delivers the application's notification emails.
type Sender interface {
	SendAssignmentEmail(ctx context.Context, toEmail string, data AssignmentData) error
}

// AssignmentData is the content of an attorney assignment notification.
type AssignmentData struct {
	AttorneyName string
	LeadID       int64
	LeadName     string
	LeadPhone    string
	CaseType     string
}

// NoopSender is used when email delivery is disabled or unconfigured.
type NoopSender struct{}

func (NoopSender) SendAssignmentEmail(_ context.Context, _ string, _ AssignmentData) error {
	return nil
}

// NewSender returns the configured sender, or a NoopSender when email is
// disabled.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
