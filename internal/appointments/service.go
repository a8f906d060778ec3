package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"thavon_backend/internal/events"
	"thavon_backend/internal/leads"
	"thavon_backend/internal/voice"
	"thavon_backend/platform/apperr"
	"thavon_backend/platform/logger"

	"github.com/google/uuid"
)

// bookingTimeLayouts are the formats the AI agent has been observed to emit
// for the appointment time parameter, most specific first.
var bookingTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// fallbackBookingHour is when an appointment lands if the AI produced an
// unparseable time: next day at 10:00 UTC, with the raw phrase kept in the
// notes so a human can correct it.
const fallbackBookingHour = 10

// appointmentStore is the persistence surface the service needs.
type appointmentStore interface {
	Create(ctx context.Context, appt *Appointment) error
}

// leadReader looks up lead details for agent assignment.
type leadReader interface {
	GetByID(ctx context.Context, id, agencyID uuid.UUID) (*leads.Lead, error)
}

// agentAssigner picks an agent for a booking.
type agentAssigner interface {
	AssignAgent(ctx context.Context, agencyID uuid.UUID, address string, scheduledAt time.Time) (*uuid.UUID, error)
}

// Service books appointments collected by the AI agent mid-call.
type Service struct {
	store    appointmentStore
	leads    leadReader
	assigner agentAssigner
	bus      events.Bus
	log      *logger.Logger
}

// NewService creates the appointments service.
func NewService(store appointmentStore, leads leadReader, assigner agentAssigner, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		leads:    leads,
		assigner: assigner,
		bus:      bus,
		log:      log,
	}
}

// BookFromCall books an appointment from a mid-call function invocation.
// The call log row does not exist yet at this point; the voice module links
// it to the appointment once the end-of-call report arrives.
func (s *Service) BookFromCall(ctx context.Context, req voice.BookingRequest) error {
	if req.LeadID == nil {
		return apperr.BadRequest("booking without a lead cannot be recorded")
	}

	scheduledAt, parsed := parseBookingTime(req.TimeRaw)
	notes := req.Notes
	if !parsed && strings.TrimSpace(req.TimeRaw) != "" {
		notes = strings.TrimSpace(fmt.Sprintf("Requested time: %q. %s", req.TimeRaw, notes))
	}

	agentID := req.AgentID
	if agentID == nil {
		address := ""
		if lead, err := s.leads.GetByID(ctx, *req.LeadID, req.AgencyID); err == nil {
			address = lead.Address
		}

		assigned, err := s.assigner.AssignAgent(ctx, req.AgencyID, address, scheduledAt)
		if err != nil {
			s.log.Error("agent assignment failed, booking unassigned",
				"error", err,
				"agency_id", req.AgencyID.String(),
			)
		}
		agentID = assigned
	}

	appt := &Appointment{
		AgencyID:    req.AgencyID,
		LeadID:      *req.LeadID,
		AgentID:     agentID,
		ScheduledAt: scheduledAt,
		Notes:       notes,
		Status:      StatusScheduled,
	}

	if err := s.store.Create(ctx, appt); err != nil {
		return fmt.Errorf("persist booking: %w", err)
	}

	if agentID == nil {
		s.log.Info("appointment booked without agent",
			"appointment_id", appt.ID.String(),
			"agency_id", req.AgencyID.String(),
		)
		return nil
	}

	s.bus.Publish(ctx, events.AppointmentBooked{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appt.ID,
		AgencyID:      req.AgencyID,
		LeadID:        *req.LeadID,
		AgentID:       *agentID,
		ScheduledAt:   scheduledAt,
		Notes:         notes,
	})

	return nil
}

// parseBookingTime interprets the free-form time string from the AI. The
// second return reports whether parsing succeeded or the fallback was used.
func parseBookingTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range bookingTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}

	next := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), fallbackBookingHour, 0, 0, 0, time.UTC), false
}
