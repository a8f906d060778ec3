package voice

import (
	"errors"
	"io"
	"net/http"

	"thavon_backend/platform/httpkit"
	"thavon_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody caps provider webhook payloads; transcripts can be long but
// not megabytes long.
const maxWebhookBody = 1 << 20

// Handler exposes the provider webhook endpoint.
type Handler struct {
	service       *Service
	webhookSecret string
	log           *logger.Logger
}

// NewHandler creates the voice webhook handler.
func NewHandler(service *Service, webhookSecret string, log *logger.Logger) *Handler {
	return &Handler{
		service:       service,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// HandleVapiWebhook receives call lifecycle events from the voice provider.
//
// The provider retries non-2xx responses, so after the signature gate every
// processing failure answers 200: a replayed event cannot fix a database
// error and the failure is already in the logs.
func (h *Handler) HandleVapiWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to read request body", nil)
		return
	}

	if !VerifySignature(h.webhookSecret, body, c.GetHeader(SignatureHeader)) {
		h.log.Error("webhook signature verification failed", "source", "vapi")
		httpkit.Error(c, http.StatusUnauthorized, "invalid signature", nil)
		return
	}

	event, err := ParseCallEvent(body)
	if err != nil {
		if !errors.Is(err, ErrNoEventType) {
			h.log.Error("failed to parse webhook payload", "error", err)
		}
		httpkit.OK(c, gin.H{"status": "ok"})
		return
	}

	h.log.WebhookEvent("vapi", string(event.Kind), event.Metadata.AgencyID.String())

	if err := h.service.HandleEvent(c.Request.Context(), event); err != nil {
		h.log.Error("failed to process call event",
			"error", err,
			"kind", string(event.Kind),
			"call_id", event.CallID,
		)
		httpkit.OK(c, gin.H{"status": "ok"})
		return
	}

	httpkit.OK(c, gin.H{"status": "ok"})
}
