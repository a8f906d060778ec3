package campaigns

import (
	"context"
	"testing"

	"thavon_backend/internal/leads"
	"thavon_backend/internal/voice"
	"thavon_backend/platform/apperr"
	"thavon_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadStore struct {
	batch    []leads.Lead
	statuses map[uuid.UUID]string
}

func (s *fakeLeadStore) ListNewByAgency(_ context.Context, _ uuid.UUID, limit int) ([]leads.Lead, error) {
	if len(s.batch) > limit {
		return s.batch[:limit], nil
	}
	return s.batch, nil
}

func (s *fakeLeadStore) UpdateStatus(_ context.Context, leadID, _ uuid.UUID, status string) error {
	if s.statuses == nil {
		s.statuses = make(map[uuid.UUID]string)
	}
	s.statuses[leadID] = status
	return nil
}

type fakeGate struct {
	err error
}

func (g *fakeGate) Check(context.Context, uuid.UUID) error { return g.err }

type fakeDispatcher struct {
	requests []voice.CallRequest
}

func (d *fakeDispatcher) Enqueue(req voice.CallRequest) bool {
	d.requests = append(d.requests, req)
	return true
}

func newLeads(n int) []leads.Lead {
	out := make([]leads.Lead, n)
	for i := range out {
		out[i] = leads.Lead{ID: uuid.New(), Name: "Lead", Phone: "+14155550100", Status: leads.StatusNew}
	}
	return out
}

func TestStartCampaignDialsBatch(t *testing.T) {
	store := &fakeLeadStore{batch: newLeads(3)}
	dispatcher := &fakeDispatcher{}
	svc := NewService(store, &fakeGate{}, dispatcher, true, logger.New("test"))

	queued, err := svc.Start(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if queued != 3 {
		t.Errorf("queued = %d, want 3", queued)
	}
	if len(dispatcher.requests) != 3 {
		t.Errorf("dispatched = %d, want 3", len(dispatcher.requests))
	}

	for _, lead := range store.batch {
		if store.statuses[lead.ID] != leads.StatusCalled {
			t.Errorf("lead %s status = %q, want called", lead.ID, store.statuses[lead.ID])
		}
	}
}

func TestStartCampaignCapsBatchSize(t *testing.T) {
	store := &fakeLeadStore{batch: newLeads(12)}
	dispatcher := &fakeDispatcher{}
	svc := NewService(store, &fakeGate{}, dispatcher, true, logger.New("test"))

	queued, err := svc.Start(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if queued != batchSize {
		t.Errorf("queued = %d, want %d", queued, batchSize)
	}
}

func TestStartCampaignGateDenied(t *testing.T) {
	store := &fakeLeadStore{batch: newLeads(2)}
	dispatcher := &fakeDispatcher{}
	svc := NewService(store, &fakeGate{err: apperr.Forbidden("subscription inactive")}, dispatcher, true, logger.New("test"))

	if _, err := svc.Start(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected gate error")
	}
	if len(dispatcher.requests) != 0 {
		t.Error("gated campaign must not dispatch")
	}
}

func TestStartCampaignVoiceNotConfigured(t *testing.T) {
	svc := NewService(&fakeLeadStore{}, &fakeGate{}, &fakeDispatcher{}, false, logger.New("test"))

	_, err := svc.Start(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("err = %v, want internal", err)
	}
}
