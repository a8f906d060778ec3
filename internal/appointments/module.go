// Package appointments provides the booking bounded context: appointments
// created by the AI agent mid-call, with agent assignment on booking.
package appointments

import (
	"thavon_backend/internal/events"
	"thavon_backend/internal/leads"
	"thavon_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the appointments service for composition. It registers no
// routes; bookings only arrive through the voice webhook.
type Module struct {
	service *Service
}

// NewModule creates and initializes the appointments module.
func NewModule(pool *pgxpool.Pool, leadsRepo *leads.Repository, assigner agentAssigner, eventBus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{service: NewService(repo, leadsRepo, assigner, eventBus, log)}
}

// Service returns the appointments service; the voice module uses it as its
// booking port.
func (m *Module) Service() *Service {
	return m.service
}
