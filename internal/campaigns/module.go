// Package campaigns provides batch outbound dialing over leads that have
// not been worked yet.
package campaigns

import (
	apphttp "thavon_backend/internal/http"
	"thavon_backend/internal/leads"
	"thavon_backend/internal/voice"
	"thavon_backend/platform/logger"
	"thavon_backend/platform/validator"
)

// Module is the campaigns bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the campaigns module.
func NewModule(leadsRepo *leads.Repository, gate subscriptionGate, dispatcher voice.Dispatcher, voiceReady bool, val *validator.Validator, log *logger.Logger) *Module {
	service := NewService(leadsRepo, gate, dispatcher, voiceReady, log)
	return &Module{handler: NewHandler(service, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaigns"
}

// RegisterRoutes mounts the campaign trigger endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.POST("/campaigns/start", m.handler.HandleStart)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
