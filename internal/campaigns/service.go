package campaigns

import (
	"context"

	"thavon_backend/internal/leads"
	"thavon_backend/internal/voice"
	"thavon_backend/platform/apperr"
	"thavon_backend/platform/logger"

	"github.com/google/uuid"
)

// batchSize caps how many leads one campaign run dials. Keeps a single
// request from flooding the dispatch queue and the agency's phone line pool.
const batchSize = 5

// leadStore is the persistence surface the service needs.
type leadStore interface {
	ListNewByAgency(ctx context.Context, agencyID uuid.UUID, limit int) ([]leads.Lead, error)
	UpdateStatus(ctx context.Context, leadID, agencyID uuid.UUID, status string) error
}

// subscriptionGate checks whether an agency may trigger billable calls.
type subscriptionGate interface {
	Check(ctx context.Context, agencyID uuid.UUID) error
}

// Service runs outbound calling campaigns over leads still in status "new".
type Service struct {
	store      leadStore
	gate       subscriptionGate
	dispatcher voice.Dispatcher
	voiceReady bool
	log        *logger.Logger
}

// NewService creates the campaigns service.
func NewService(store leadStore, gate subscriptionGate, dispatcher voice.Dispatcher, voiceReady bool, log *logger.Logger) *Service {
	return &Service{
		store:      store,
		gate:       gate,
		dispatcher: dispatcher,
		voiceReady: voiceReady,
		log:        log,
	}
}

// Start queues calls for the agency's oldest unworked leads and returns how
// many were queued. Each dialed lead leaves status "new" immediately so the
// next campaign run never re-dials it.
func (s *Service) Start(ctx context.Context, agencyID uuid.UUID) (int, error) {
	if err := s.gate.Check(ctx, agencyID); err != nil {
		return 0, err
	}
	if !s.voiceReady {
		return 0, apperr.Internal("voice calling is not configured")
	}

	batch, err := s.store.ListNewByAgency(ctx, agencyID, batchSize)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, lead := range batch {
		leadID := lead.ID
		systemPrompt, firstMessage := voice.CampaignCallScript(lead.Name, lead.Address)

		if !s.dispatcher.Enqueue(voice.CallRequest{
			AgencyID:     agencyID,
			LeadID:       &leadID,
			Phone:        lead.Phone,
			Name:         lead.Name,
			SystemPrompt: systemPrompt,
			FirstMessage: firstMessage,
		}) {
			s.log.Error("dispatch queue refused campaign call", "lead_id", leadID.String())
			continue
		}

		if err := s.store.UpdateStatus(ctx, leadID, agencyID, leads.StatusCalled); err != nil {
			s.log.Error("failed to mark campaign lead", "error", err, "lead_id", leadID.String())
		}
		queued++
	}

	return queued, nil
}
