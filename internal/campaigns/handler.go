package campaigns

import (
	"net/http"

	"thavon_backend/platform/httpkit"
	"thavon_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the campaign trigger endpoint.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates the campaigns handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

type startCampaignRequest struct {
	AgencyID string `json:"agency_id" validate:"required,uuid"`
}

// HandleStart queues calls for the agency's oldest unworked leads.
func (h *Handler) HandleStart(c *gin.Context) {
	var req startCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid JSON payload", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "agency_id is required", err.Error())
		return
	}

	agencyID, err := uuid.Parse(req.AgencyID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid agency_id", nil)
		return
	}

	queued, err := h.service.Start(c.Request.Context(), agencyID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"status": "campaign started", "leads_called": queued})
}
