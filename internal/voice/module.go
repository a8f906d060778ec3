// Package voice provides the AI calling bounded context: outbound call
// dispatch to the voice provider and the webhook that receives call
// lifecycle events back.
package voice

import (
	"thavon_backend/internal/events"
	apphttp "thavon_backend/internal/http"
	"thavon_backend/platform/config"
	"thavon_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the voice bounded context module implementing http.Module.
type Module struct {
	handler    *Handler
	service    *Service
	dispatcher *QueueDispatcher
	client     *VapiClient
}

// NewModule creates and initializes the voice module with all its dependencies.
// The returned dispatcher's Run must be started by the composition root.
func NewModule(pool *pgxpool.Pool, cfg config.VapiConfig, leads LeadStatusWriter, booker AppointmentBooker, eventBus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	client := NewVapiClient(cfg)
	dispatcher := NewQueueDispatcher(client, cfg.GetDispatchTimeout(), log)
	service := NewService(repo, leads, booker, eventBus, log)
	h := NewHandler(service, cfg.GetVapiWebhookSecret(), log)

	return &Module{
		handler:    h,
		service:    service,
		dispatcher: dispatcher,
		client:     client,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "voice"
}

// Dispatcher returns the outbound call dispatcher for other modules.
func (m *Module) Dispatcher() *QueueDispatcher {
	return m.dispatcher
}

// Client returns the provider client, nil when not configured.
func (m *Module) Client() *VapiClient {
	return m.client
}

// RegisterRoutes mounts the provider webhook on the public webhooks group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Webhooks.POST("/vapi", m.handler.HandleVapiWebhook)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
