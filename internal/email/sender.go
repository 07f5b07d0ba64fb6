// Package email delivers notification emails over the tenant's SMTP server.
package email

import "context"

// Sender delivers funnel notification emails.
type Sender interface {
	// SendLeadRepliedEmail notifies the organization owner that a lead
	// replied and left the automated cadence.
	SendLeadRepliedEmail(ctx context.Context, toEmail, leadName, leadURL string) error
	// SendLeadQualifiedEmail notifies the organization owner that a lead
	// was qualified.
	SendLeadQualifiedEmail(ctx context.Context, toEmail, leadName, leadURL string) error
}

// NoopSender satisfies Sender when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendLeadRepliedEmail(context.Context, string, string, string) error {
	return nil
}

func (NoopSender) SendLeadQualifiedEmail(context.Context, string, string, string) error {
	return nil
}
