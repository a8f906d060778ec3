// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"thavon_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadReceived is published when an inbound lead lands on the webhook and a
// call has been queued for dispatch.
type LeadReceived struct {
	BaseEvent
	LeadID   *uuid.UUID `json:"leadId,omitempty"`
	AgencyID uuid.UUID  `json:"agencyId"`
	Name     string     `json:"name"`
	Phone    string     `json:"phone"`
	Source   string     `json:"source"`
}

func (e LeadReceived) EventName() string { return "leads.lead.received" }

// =============================================================================
// Voice Domain Events
// =============================================================================

// CallCompleted is published after a completed call's log has been upserted.
// Notification fan-out and CRM fulfillment subscribe to it.
type CallCompleted struct {
	BaseEvent
	AgencyID        uuid.UUID  `json:"agencyId"`
	VapiCallID      string     `json:"vapiCallId"`
	LeadID          *uuid.UUID `json:"leadId,omitempty"`
	AgentID         *uuid.UUID `json:"agentId,omitempty"`
	Summary         string     `json:"summary"`
	Transcript      string     `json:"transcript"`
	DurationSeconds int        `json:"durationSeconds"`
}

func (e CallCompleted) EventName() string { return "voice.call.completed" }

// CallRetryScheduled is published when an unanswered call gets a new retry
// row. The scheduler module enqueues the delayed re-dial task.
type CallRetryScheduled struct {
	BaseEvent
	RetryID     uuid.UUID `json:"retryId"`
	AgencyID    uuid.UUID `json:"agencyId"`
	VapiCallID  string    `json:"vapiCallId"`
	LeadID      uuid.UUID `json:"leadId"`
	RetryCount  int       `json:"retryCount"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

func (e CallRetryScheduled) EventName() string { return "voice.call_retry.scheduled" }

// =============================================================================
// Appointments Domain Events
// =============================================================================

// AppointmentBooked is published when the voice agent books an appointment
// mid-call via the bookAppointment function.
type AppointmentBooked struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	AgencyID      uuid.UUID `json:"agencyId"`
	LeadID        uuid.UUID `json:"leadId"`
	AgentID       uuid.UUID `json:"agentId"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	Notes         string    `json:"notes,omitempty"`
}

func (e AppointmentBooked) EventName() string { return "appointments.booked" }
