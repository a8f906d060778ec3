package leads

import (
	"context"

	"thavon_backend/internal/events"
	"thavon_backend/internal/voice"
	"thavon_backend/platform/apperr"
	"thavon_backend/platform/logger"

	"github.com/google/uuid"
)

// SubscriptionGate checks whether an agency may trigger billable calls.
// Implemented by the billing gate.
type SubscriptionGate interface {
	Check(ctx context.Context, agencyID uuid.UUID) error
}

// leadStore is the persistence surface the service needs.
type leadStore interface {
	Create(ctx context.Context, lead *Lead) error
}

// Service ingests inbound leads: subscription gate, persist, then queue the
// speed-to-lead call.
type Service struct {
	store      leadStore
	gate       SubscriptionGate
	dispatcher voice.Dispatcher
	voiceReady bool
	bus        events.Bus
	log        *logger.Logger
}

// NewService creates the lead ingestion service. voiceReady reflects whether
// the voice provider is configured; ingestion refuses to accept leads it
// cannot act on.
func NewService(store leadStore, gate SubscriptionGate, dispatcher voice.Dispatcher, voiceReady bool, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:      store,
		gate:       gate,
		dispatcher: dispatcher,
		voiceReady: voiceReady,
		bus:        bus,
		log:        log,
	}
}

// Ingest runs the speed-to-lead pipeline for one inbound lead. The lead
// insert is best effort: if the write fails the call still goes out, because
// a dropped row is recoverable and a missed first-minute call is not.
func (s *Service) Ingest(ctx context.Context, agencyID uuid.UUID, inbound InboundLead) (*Lead, error) {
	if err := s.gate.Check(ctx, agencyID); err != nil {
		return nil, err
	}
	if !s.voiceReady {
		return nil, apperr.Internal("voice calling is not configured")
	}

	lead := &Lead{
		AgencyID: agencyID,
		Name:     inbound.Name,
		Phone:    inbound.Phone,
		Address:  inbound.Address,
		Source:   inbound.Source,
		Status:   StatusCallingInbound,
	}

	var leadID *uuid.UUID
	if err := s.store.Create(ctx, lead); err != nil {
		s.log.Error("failed to persist inbound lead, dispatching anyway",
			"error", err,
			"agency_id", agencyID.String(),
		)
	} else {
		leadID = &lead.ID
	}

	systemPrompt, firstMessage := voice.InboundCallScript(lead.Name, lead.Address)
	queued := s.dispatcher.Enqueue(voice.CallRequest{
		AgencyID:     agencyID,
		LeadID:       leadID,
		Phone:        lead.Phone,
		Name:         lead.Name,
		SystemPrompt: systemPrompt,
		FirstMessage: firstMessage,
	})
	if !queued {
		s.log.Error("dispatch queue refused lead call", "agency_id", agencyID.String())
	}

	s.bus.Publish(ctx, events.LeadReceived{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		AgencyID:  agencyID,
		Name:      lead.Name,
		Phone:     lead.Phone,
		Source:    lead.Source,
	})

	return lead, nil
}
