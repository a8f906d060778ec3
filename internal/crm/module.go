package crm

import (
	"context"

	"thavon_backend/internal/events"
	"thavon_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module pushes completed calls into the agency's CRM. Push failures are
// logged and dropped; the CRM is a mirror, not the system of record.
type Module struct {
	client *FollowUpBossClient
	repo   *Repository
	log    *logger.Logger
}

// NewModule creates the crm module and subscribes it to call completions.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, log *logger.Logger) *Module {
	m := &Module{
		client: NewFollowUpBossClient(),
		repo:   NewRepository(pool),
		log:    log,
	}

	eventBus.Subscribe(events.CallCompleted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.CallCompleted)
		if !ok {
			return nil
		}
		m.pushCallNote(ctx, e)
		return nil
	}))

	return m
}

func (m *Module) pushCallNote(ctx context.Context, e events.CallCompleted) {
	if e.LeadID == nil {
		return
	}

	apiKey, err := m.repo.GetFollowUpBossKey(ctx, e.AgencyID)
	if err != nil {
		m.log.Error("failed to load crm settings", "error", err, "agency_id", e.AgencyID.String())
		return
	}
	if apiKey == "" {
		return
	}

	name, phone, err := m.repo.GetLeadContact(ctx, *e.LeadID, e.AgencyID)
	if err != nil {
		m.log.Error("failed to load lead for crm push", "error", err, "lead_id", e.LeadID.String())
		return
	}

	note := CallNote{LeadName: name, LeadPhone: phone, Summary: e.Summary}
	if err := m.client.PushCallNote(ctx, apiKey, note); err != nil {
		m.log.DispatchError("followupboss", err)
		return
	}

	m.log.Info("call pushed to crm", "agency_id", e.AgencyID.String(), "lead_id", e.LeadID.String())
}
