// Package leads provides the lead ingestion bounded context: per-agency
// inbound webhooks that gate on subscription, persist the lead and queue
// the immediate AI call.
package leads

import (
	"thavon_backend/internal/events"
	apphttp "thavon_backend/internal/http"
	"thavon_backend/internal/voice"
	"thavon_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, gate SubscriptionGate, dispatcher voice.Dispatcher, voiceReady bool, eventBus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, gate, dispatcher, voiceReady, eventBus, log)
	h := NewHandler(service, log)

	return &Module{handler: h, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository returns the leads repository for cross-module wiring; the voice
// module uses it to update lead statuses from call outcomes.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts the per-agency inbound webhook.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Webhooks.POST("/inbound/:agencyId", m.handler.HandleInbound)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
