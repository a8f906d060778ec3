package notification

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"thavon_backend/internal/email"
	"thavon_backend/internal/events"
	"thavon_backend/internal/whatsapp"
	"thavon_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// WhatsAppSender sends WhatsApp messages.
type WhatsAppSender interface {
	SendMessage(ctx context.Context, phoneNumber string, message string) error
}

// contactReader resolves notification recipients.
type contactReader interface {
	GetOwnerContact(ctx context.Context, agencyID uuid.UUID) (*Contact, error)
	GetAgentContact(ctx context.Context, agentID, agencyID uuid.UUID) (*Contact, error)
	GetLeadName(ctx context.Context, leadID, agencyID uuid.UUID) (string, error)
}

// Dispatcher fans call and booking notifications out to the agency owner and
// the assigned agent over email and WhatsApp. Delivery is best effort:
// failures are counted and logged, never retried and never propagated.
type Dispatcher struct {
	contacts contactReader
	email    email.Sender
	whatsapp WhatsAppSender
	log      *logger.Logger
}

// NewDispatcher creates the notification dispatcher.
func NewDispatcher(contacts contactReader, sender email.Sender, wa WhatsAppSender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		contacts: contacts,
		email:    sender,
		whatsapp: wa,
		log:      log,
	}
}

// NotifyCallCompleted sends the post-call summary to the agency owner and,
// when a lead was handed off, the assigned agent.
func (d *Dispatcher) NotifyCallCompleted(ctx context.Context, e events.CallCompleted) {
	leadName := d.leadName(ctx, e.LeadID, e.AgencyID)
	recipients := d.recipients(ctx, e.AgencyID, e.AgentID)
	if len(recipients) == 0 {
		d.log.Info("no notification recipients", "agency_id", e.AgencyID.String())
		return
	}

	message := whatsapp.CallSummaryMessage(leadName, e.Summary, e.DurationSeconds)

	var attempted, failed int64
	g, gctx := errgroup.WithContext(ctx)
	for _, contact := range recipients {
		if contact.Email != "" {
			atomic.AddInt64(&attempted, 1)
			g.Go(func() error {
				if err := d.email.SendCallSummaryEmail(gctx, contact.Email, contact.Name, leadName, e.Summary, e.DurationSeconds); err != nil {
					atomic.AddInt64(&failed, 1)
					d.log.DispatchError("email", err)
				}
				return nil
			})
		}
		if contact.Phone != "" {
			atomic.AddInt64(&attempted, 1)
			g.Go(func() error {
				if err := d.whatsapp.SendMessage(gctx, contact.Phone, message); err != nil {
					atomic.AddInt64(&failed, 1)
					d.log.DispatchError("whatsapp", err)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	d.log.Info("call notifications dispatched",
		"agency_id", e.AgencyID.String(),
		"attempted", attempted,
		"failed", failed,
	)
}

// NotifyAppointmentBooked tells the assigned agent and the owner about a new
// booking.
func (d *Dispatcher) NotifyAppointmentBooked(ctx context.Context, e events.AppointmentBooked) {
	leadName := d.leadName(ctx, &e.LeadID, e.AgencyID)
	recipients := d.recipients(ctx, e.AgencyID, &e.AgentID)
	if len(recipients) == 0 {
		return
	}

	when := e.ScheduledAt.Format(time.RFC1123)
	message := whatsapp.AppointmentMessage(leadName, when, e.Notes)

	g, gctx := errgroup.WithContext(ctx)
	for _, contact := range recipients {
		if contact.Email != "" {
			g.Go(func() error {
				if err := d.email.SendAppointmentEmail(gctx, contact.Email, contact.Name, leadName, when, e.Notes); err != nil {
					d.log.DispatchError("email", err)
				}
				return nil
			})
		}
		if contact.Phone != "" {
			g.Go(func() error {
				if err := d.whatsapp.SendMessage(gctx, contact.Phone, message); err != nil {
					d.log.DispatchError("whatsapp", err)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
}

// recipients resolves the owner and the optional agent, deduplicating
// channels so a solo operator who is both owner and agent gets one message,
// not two.
func (d *Dispatcher) recipients(ctx context.Context, agencyID uuid.UUID, agentID *uuid.UUID) []Contact {
	var recipients []Contact

	owner, err := d.contacts.GetOwnerContact(ctx, agencyID)
	if err != nil {
		d.log.Error("failed to resolve owner contact", "error", err, "agency_id", agencyID.String())
	} else {
		recipients = append(recipients, *owner)
	}

	if agentID != nil {
		agent, err := d.contacts.GetAgentContact(ctx, *agentID, agencyID)
		if err != nil {
			d.log.Error("failed to resolve agent contact", "error", err, "agent_id", agentID.String())
		} else {
			recipients = append(recipients, *agent)
		}
	}

	return dedupeContacts(recipients)
}

func (d *Dispatcher) leadName(ctx context.Context, leadID *uuid.UUID, agencyID uuid.UUID) string {
	if leadID == nil {
		return "a lead"
	}
	name, err := d.contacts.GetLeadName(ctx, *leadID, agencyID)
	if err != nil || name == "" {
		return "a lead"
	}
	return name
}

func dedupeContacts(contacts []Contact) []Contact {
	seenEmail := make(map[string]bool)
	seenPhone := make(map[string]bool)

	var out []Contact
	for _, c := range contacts {
		emailKey := strings.ToLower(strings.TrimSpace(c.Email))
		phoneKey := strings.TrimSpace(c.Phone)

		if emailKey != "" && seenEmail[emailKey] {
			c.Email = ""
		}
		if phoneKey != "" && seenPhone[phoneKey] {
			c.Phone = ""
		}
		if c.Email == "" && c.Phone == "" {
			continue
		}

		if emailKey != "" {
			seenEmail[emailKey] = true
		}
		if phoneKey != "" {
			seenPhone[phoneKey] = true
		}
		out = append(out, c)
	}

	return out
}
