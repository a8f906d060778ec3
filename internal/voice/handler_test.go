package voice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"thavon_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type erroringStore struct {
	fakeCallStore
}

func (s *erroringStore) UpsertCallLog(context.Context, *CallLog) (uuid.UUID, error) {
	return uuid.Nil, errors.New("connection refused")
}

func newWebhookRouter(store callStore, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(store, &fakeLeadWriter{}, &fakeBooker{}, &fakeBus{}, logger.New("test"))
	h := NewHandler(svc, secret, logger.New("test"))

	engine := gin.New()
	engine.POST("/webhooks/vapi", h.HandleVapiWebhook)
	return engine
}

func postWebhook(engine *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/vapi", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func webhookBody(agencyID uuid.UUID) string {
	return `{"type": "end-of-call-report", "call": {"id": "call-1", "metadata": {"agency_id": "` + agencyID.String() + `"}}, "status": "completed"}`
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	engine := newWebhookRouter(&fakeCallStore{upsertID: uuid.New()}, "whsec_test")

	rec := postWebhook(engine, webhookBody(uuid.New()), "deadbeef")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	store := &fakeCallStore{upsertID: uuid.New()}
	engine := newWebhookRouter(store, "whsec_test")

	body := webhookBody(uuid.New())
	rec := postWebhook(engine, body, sign("whsec_test", []byte(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Errorf("body = %s, want {\"status\":\"ok\"}", got)
	}
	if len(store.upserted) != 1 {
		t.Error("event not processed")
	}
}

func TestWebhookReturns200OnDatabaseError(t *testing.T) {
	engine := newWebhookRouter(&erroringStore{}, "")

	rec := postWebhook(engine, webhookBody(uuid.New()), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 so the provider stops retrying", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Errorf("body = %s, a processing failure still answers ok", got)
	}
}

func TestWebhookIgnoresUnknownEnvelopes(t *testing.T) {
	engine := newWebhookRouter(&fakeCallStore{}, "")

	rec := postWebhook(engine, `{"hello": "world"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Errorf("body = %s, want {\"status\":\"ok\"}", got)
	}
}
