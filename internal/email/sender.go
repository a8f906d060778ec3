// Package email sends transactional email for call and booking
// notifications.
package email

import "context"

type Sender interface {
	SendCallSummaryEmail(ctx context.Context, toEmail, toName, leadName, summary string, durationSeconds int) error
	SendAppointmentEmail(ctx context.Context, toEmail, toName, leadName, scheduledAt, notes string) error
}

// NoopSender is used when email is disabled; every send silently succeeds.
type NoopSender struct{}

func (NoopSender) SendCallSummaryEmail(ctx context.Context, toEmail, toName, leadName, summary string, durationSeconds int) error {
	return nil
}

func (NoopSender) SendAppointmentEmail(ctx context.Context, toEmail, toName, leadName, scheduledAt, notes string) error {
	return nil
}

var _ Sender = NoopSender{}
