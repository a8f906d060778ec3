package leads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"thavon_backend/internal/events"
	"thavon_backend/internal/voice"
	"thavon_backend/platform/apperr"
	"thavon_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeGate struct {
	err error
}

func (g *fakeGate) Check(context.Context, uuid.UUID) error { return g.err }

type fakeLeadStore struct {
	created []*Lead
	err     error
}

func (s *fakeLeadStore) Create(_ context.Context, lead *Lead) error {
	if s.err != nil {
		return s.err
	}
	lead.ID = uuid.New()
	s.created = append(s.created, lead)
	return nil
}

type fakeDispatcher struct {
	requests []voice.CallRequest
	full     bool
}

func (d *fakeDispatcher) Enqueue(req voice.CallRequest) bool {
	if d.full {
		return false
	}
	d.requests = append(d.requests, req)
	return true
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)          {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

func newTestRouter(gate *fakeGate, store *fakeLeadStore, dispatcher *fakeDispatcher, voiceReady bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(store, gate, dispatcher, voiceReady, nopBus{}, logger.New("test"))
	h := NewHandler(svc, logger.New("test"))

	engine := gin.New()
	engine.POST("/webhooks/inbound/:agencyId", h.HandleInbound)
	return engine
}

func postInbound(engine *gin.Engine, agencyID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/inbound/"+agencyID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleInboundSuccess(t *testing.T) {
	gate := &fakeGate{}
	store := &fakeLeadStore{}
	dispatcher := &fakeDispatcher{}
	engine := newTestRouter(gate, store, dispatcher, true)

	rec := postInbound(engine, uuid.NewString(), `{"name": "Jane", "phone": "+14155550100", "address": "80014 Denver"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["status"] != "calling" || resp["lead"] != "Jane" {
		t.Errorf("response = %v", resp)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 lead persisted, got %d", len(store.created))
	}
	if store.created[0].Status != StatusCallingInbound {
		t.Errorf("lead status = %q", store.created[0].Status)
	}

	if len(dispatcher.requests) != 1 {
		t.Fatalf("expected 1 dispatched call, got %d", len(dispatcher.requests))
	}
	call := dispatcher.requests[0]
	if call.LeadID == nil || *call.LeadID != store.created[0].ID {
		t.Error("dispatched call not linked to the persisted lead")
	}
	if call.SystemPrompt == "" || call.FirstMessage == "" {
		t.Error("dispatched call missing prompt")
	}
}

func TestHandleInboundMissingPhone(t *testing.T) {
	engine := newTestRouter(&fakeGate{}, &fakeLeadStore{}, &fakeDispatcher{}, true)

	rec := postInbound(engine, uuid.NewString(), `{"name": "No Phone"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleInboundUnknownAgency(t *testing.T) {
	gate := &fakeGate{err: apperr.NotFound("agency not found")}
	engine := newTestRouter(gate, &fakeLeadStore{}, &fakeDispatcher{}, true)

	rec := postInbound(engine, uuid.NewString(), `{"phone": "+14155550100"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleInboundInactiveSubscription(t *testing.T) {
	gate := &fakeGate{err: apperr.Forbidden("subscription inactive")}
	store := &fakeLeadStore{}
	dispatcher := &fakeDispatcher{}
	engine := newTestRouter(gate, store, dispatcher, true)

	rec := postInbound(engine, uuid.NewString(), `{"phone": "+14155550100"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(store.created) != 0 || len(dispatcher.requests) != 0 {
		t.Error("gated request must not persist or dispatch")
	}
}

func TestHandleInboundVoiceNotConfigured(t *testing.T) {
	engine := newTestRouter(&fakeGate{}, &fakeLeadStore{}, &fakeDispatcher{}, false)

	rec := postInbound(engine, uuid.NewString(), `{"phone": "+14155550100"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHandleInboundInvalidAgencyID(t *testing.T) {
	engine := newTestRouter(&fakeGate{}, &fakeLeadStore{}, &fakeDispatcher{}, true)

	rec := postInbound(engine, "not-a-uuid", `{"phone": "+14155550100"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleInboundPersistFailureStillDials(t *testing.T) {
	store := &fakeLeadStore{err: context.DeadlineExceeded}
	dispatcher := &fakeDispatcher{}
	engine := newTestRouter(&fakeGate{}, store, dispatcher, true)

	rec := postInbound(engine, uuid.NewString(), `{"name": "Jane", "phone": "+14155550100"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(dispatcher.requests) != 1 {
		t.Fatal("call must be dispatched even when the insert fails")
	}
	if dispatcher.requests[0].LeadID != nil {
		t.Error("dispatched call must not reference an unpersisted lead")
	}
}
