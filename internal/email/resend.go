package email

import (
	"context"
	"fmt"
	"html"

	"thavon_backend/platform/config"

	"github.com/resend/resend-go/v3"
)

// ResendSender sends transactional emails via Resend.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a Resend-backed sender.
func NewResendSender(cfg config.EmailConfig) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(cfg.GetResendAPIKey()),
		from:   fmt.Sprintf("%s <%s>", cfg.GetEmailFromName(), cfg.GetEmailFromAddress()),
	}
}

// NewSender returns the configured Sender: Resend when enabled with an API
// key, a no-op otherwise.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() || cfg.GetResendAPIKey() == "" {
		return NoopSender{}
	}
	return NewResendSender(cfg)
}

// SendCallSummaryEmail delivers the post-call report to an agency contact.
func (s *ResendSender) SendCallSummaryEmail(ctx context.Context, toEmail, toName, leadName, summary string, durationSeconds int) error {
	if summary == "" {
		summary = "No summary available."
	}

	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">AI call completed</h2>
  <p>Hi %s,</p>
  <p>The AI assistant just finished a call with <strong>%s</strong> (%d seconds).</p>
  <div style="background: #f9f9f9; padding: 16px; border-radius: 8px;">
    <p style="margin: 0;">%s</p>
  </div>
  <p style="color: #999; font-size: 12px;">The full transcript and recording are available in your dashboard.</p>
</div>`,
		html.EscapeString(toName),
		html.EscapeString(leadName),
		durationSeconds,
		html.EscapeString(summary),
	)

	return s.send(ctx, toEmail, fmt.Sprintf("Call summary: %s", leadName), body)
}

// SendAppointmentEmail tells an agent about a new booking.
func (s *ResendSender) SendAppointmentEmail(ctx context.Context, toEmail, toName, leadName, scheduledAt, notes string) error {
	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">New appointment booked</h2>
  <p>Hi %s,</p>
  <p>The AI assistant booked an appointment with <strong>%s</strong> for <strong>%s</strong>.</p>
  <p>%s</p>
</div>`,
		html.EscapeString(toName),
		html.EscapeString(leadName),
		html.EscapeString(scheduledAt),
		html.EscapeString(notes),
	)

	return s.send(ctx, toEmail, fmt.Sprintf("New appointment: %s", leadName), body)
}

func (s *ResendSender) send(ctx context.Context, toEmail, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlBody,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	return nil
}

var _ Sender = (*ResendSender)(nil)
