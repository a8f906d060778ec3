package voice

import (
	"context"
	"fmt"
	"time"

	"thavon_backend/internal/events"
	"thavon_backend/platform/apperr"
	"thavon_backend/platform/logger"

	"github.com/google/uuid"
)

// maxRetries caps re-attempts per call.
const maxRetries = 3

// retryBackoff is the delay before the nth re-attempt (1-based).
var retryBackoff = []time.Duration{
	2 * time.Hour,
	24 * time.Hour,
	72 * time.Hour,
}

// callStore is the persistence surface the service needs.
type callStore interface {
	UpsertCallLog(ctx context.Context, log *CallLog) (uuid.UUID, error)
	MaxRetryCount(ctx context.Context, callID, agencyID uuid.UUID) (int, error)
	InsertRetry(ctx context.Context, retry *CallRetry) error
	LinkPendingAppointment(ctx context.Context, callLogID, agencyID, leadID, agentID uuid.UUID) error
}

// LeadStatusWriter updates a lead's pipeline status after a call outcome.
// Implemented by the leads repository.
type LeadStatusWriter interface {
	UpdateStatus(ctx context.Context, leadID, agencyID uuid.UUID, status string) error
}

// BookingRequest carries what the AI collected mid-call for an appointment.
type BookingRequest struct {
	AgencyID uuid.UUID
	LeadID   *uuid.UUID
	AgentID  *uuid.UUID
	TimeRaw  string
	Notes    string
}

// AppointmentBooker books an appointment from a mid-call function invocation.
// Implemented by the appointments service.
type AppointmentBooker interface {
	BookFromCall(ctx context.Context, req BookingRequest) error
}

// Service processes provider webhook events: it persists call outcomes,
// schedules retries, updates leads and hands bookings to the appointments
// module.
type Service struct {
	store  callStore
	leads  LeadStatusWriter
	booker AppointmentBooker
	bus    events.Bus
	log    *logger.Logger
}

// NewService creates the voice webhook service.
func NewService(store callStore, leads LeadStatusWriter, booker AppointmentBooker, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		leads:  leads,
		booker: booker,
		bus:    bus,
		log:    log,
	}
}

// HandleEvent routes one parsed webhook event. Unknown kinds are ignored
// without error so new provider event types never break the webhook.
func (s *Service) HandleEvent(ctx context.Context, event CallEvent) error {
	switch {
	case event.Kind.IsCallUpdate():
		return s.processCallUpdate(ctx, event)
	case event.Kind == EventFunctionCall:
		return s.processFunctionCall(ctx, event)
	default:
		s.log.Info("ignoring webhook event", "kind", string(event.Kind))
		return nil
	}
}

// processCallUpdate persists the call outcome and triggers follow-up work.
// Without agency_id in the metadata the event cannot be attributed to any
// tenant, so processing aborts before any write.
func (s *Service) processCallUpdate(ctx context.Context, event CallEvent) error {
	if event.Metadata.AgencyID == uuid.Nil {
		return apperr.BadRequest("call event missing agency correlation")
	}
	if event.CallID == "" {
		return apperr.BadRequest("call event missing call id")
	}

	status := FromProviderStatus(event.ProviderStatus)

	log := &CallLog{
		ID:              uuid.New(),
		AgencyID:        event.Metadata.AgencyID,
		VapiCallID:      event.CallID,
		LeadID:          event.Metadata.LeadID,
		AgentID:         event.Metadata.AgentID,
		Status:          status,
		DurationSeconds: event.DurationSeconds,
		Metadata:        metadataStrings(event.Metadata),
	}
	if event.RecordingURL != "" {
		log.RecordingURL = &event.RecordingURL
	}
	if event.Transcript != "" {
		log.Transcript = &event.Transcript
	}
	if event.Summary != "" {
		log.Summary = &event.Summary
	}
	if event.Language != "" {
		log.Language = &event.Language
	}

	callLogID, err := s.store.UpsertCallLog(ctx, log)
	if err != nil {
		return fmt.Errorf("persist call outcome: %w", err)
	}

	if event.Metadata.LeadID != nil && event.Metadata.AgentID != nil {
		if err := s.store.LinkPendingAppointment(ctx, callLogID, event.Metadata.AgencyID, *event.Metadata.LeadID, *event.Metadata.AgentID); err != nil {
			s.log.Error("failed to link appointment to call", "error", err, "call_id", event.CallID)
		}
	}

	s.updateLeadStatus(ctx, event.Metadata, status)

	// Only unanswered calls get a re-attempt. Busy and failed outcomes are
	// recorded but stay terminal.
	if status == StatusNoAnswer && event.Metadata.LeadID != nil {
		s.scheduleRetry(ctx, callLogID, event.Metadata.AgencyID, *event.Metadata.LeadID)
	}

	if status == StatusCompleted {
		s.bus.Publish(ctx, events.CallCompleted{
			BaseEvent:       events.NewBaseEvent(),
			AgencyID:        event.Metadata.AgencyID,
			VapiCallID:      event.CallID,
			LeadID:          event.Metadata.LeadID,
			AgentID:         event.Metadata.AgentID,
			Summary:         event.Summary,
			Transcript:      event.Transcript,
			DurationSeconds: event.DurationSeconds,
		})
	}

	return nil
}

// processFunctionCall handles mid-call tool invocations from the assistant.
// Only bookAppointment is known today.
func (s *Service) processFunctionCall(ctx context.Context, event CallEvent) error {
	if event.Function == nil || event.Function.Name != "bookAppointment" {
		return nil
	}
	if event.Metadata.AgencyID == uuid.Nil {
		return apperr.BadRequest("function call missing agency correlation")
	}

	return s.booker.BookFromCall(ctx, BookingRequest{
		AgencyID: event.Metadata.AgencyID,
		LeadID:   event.Metadata.LeadID,
		AgentID:  event.Metadata.AgentID,
		TimeRaw:  event.Function.Time,
		Notes:    event.Function.Notes,
	})
}

// updateLeadStatus moves the lead through the pipeline based on the call
// outcome. Best effort: a failure here never fails the webhook.
func (s *Service) updateLeadStatus(ctx context.Context, meta CallMetadata, status CallStatus) {
	if meta.LeadID == nil {
		return
	}

	var leadStatus string
	switch status {
	case StatusCompleted:
		leadStatus = "called"
	case StatusNoAnswer:
		leadStatus = "no_answer"
	case StatusBusy:
		leadStatus = "busy"
	default:
		return
	}

	if err := s.leads.UpdateStatus(ctx, *meta.LeadID, meta.AgencyID, leadStatus); err != nil {
		s.log.Error("failed to update lead status after call",
			"error", err,
			"lead_id", meta.LeadID.String(),
			"status", leadStatus,
		)
	}
}

// scheduleRetry records the next re-attempt with escalating backoff. Once a
// call has hit the cap no further rows are written.
func (s *Service) scheduleRetry(ctx context.Context, callLogID, agencyID, leadID uuid.UUID) {
	attempts, err := s.store.MaxRetryCount(ctx, callLogID, agencyID)
	if err != nil {
		s.log.Error("failed to count call retries", "error", err, "call_log_id", callLogID.String())
		return
	}
	if attempts >= maxRetries {
		s.log.Info("retry cap reached, not rescheduling", "call_log_id", callLogID.String())
		return
	}

	retry := &CallRetry{
		ID:          uuid.New(),
		CallID:      callLogID,
		LeadID:      leadID,
		AgencyID:    agencyID,
		RetryCount:  attempts + 1,
		ScheduledAt: time.Now().UTC().Add(retryBackoff[attempts]),
		Status:      RetryPending,
	}

	if err := s.store.InsertRetry(ctx, retry); err != nil {
		s.log.Error("failed to schedule call retry", "error", err, "call_log_id", callLogID.String())
		return
	}

	s.bus.Publish(ctx, events.CallRetryScheduled{
		BaseEvent:   events.NewBaseEvent(),
		RetryID:     retry.ID,
		AgencyID:    agencyID,
		VapiCallID:  callLogID.String(),
		LeadID:      leadID,
		RetryCount:  retry.RetryCount,
		ScheduledAt: retry.ScheduledAt,
	})
}

func metadataStrings(meta CallMetadata) map[string]string {
	out := map[string]string{"agency_id": meta.AgencyID.String()}
	if meta.LeadID != nil {
		out["lead_id"] = meta.LeadID.String()
	}
	if meta.AgentID != nil {
		out["agent_id"] = meta.AgentID.String()
	}
	return out
}
