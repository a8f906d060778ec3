package leads

import (
	"io"
	"net/http"

	"thavon_backend/platform/httpkit"
	"thavon_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxInboundBody = 256 << 10

// Handler exposes the inbound lead webhook.
type Handler struct {
	service *Service
	log     *logger.Logger
}

// NewHandler creates the leads webhook handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// HandleInbound receives a lead from a form builder or CRM integration and
// kicks off the immediate AI call. The agency id lives in the URL so each
// tenant gets its own webhook address to paste into their integrations.
func (h *Handler) HandleInbound(c *gin.Context) {
	agencyID, err := uuid.Parse(c.Param("agencyId"))
	if err != nil {
		httpkit.Error(c, http.StatusNotFound, "agency not found", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInboundBody))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to read request body", nil)
		return
	}

	inbound, err := NormalizeInbound(body)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	h.log.WebhookEvent("inbound", "lead.received", agencyID.String())

	lead, err := h.service.Ingest(c.Request.Context(), agencyID, inbound)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"status": "calling", "lead": lead.Name})
}
