package voice

import (
	"context"
	"testing"
	"time"

	"thavon_backend/internal/events"
	"thavon_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeCallStore struct {
	upserted      []*CallLog
	upsertID      uuid.UUID
	retries       []*CallRetry
	maxRetryCount int
	linked        int
}

func (s *fakeCallStore) UpsertCallLog(_ context.Context, log *CallLog) (uuid.UUID, error) {
	s.upserted = append(s.upserted, log)
	return s.upsertID, nil
}

func (s *fakeCallStore) MaxRetryCount(_ context.Context, _, _ uuid.UUID) (int, error) {
	return s.maxRetryCount, nil
}

func (s *fakeCallStore) InsertRetry(_ context.Context, retry *CallRetry) error {
	s.retries = append(s.retries, retry)
	return nil
}

func (s *fakeCallStore) LinkPendingAppointment(_ context.Context, _, _, _, _ uuid.UUID) error {
	s.linked++
	return nil
}

type fakeLeadWriter struct {
	statuses map[uuid.UUID]string
}

func (w *fakeLeadWriter) UpdateStatus(_ context.Context, leadID, _ uuid.UUID, status string) error {
	if w.statuses == nil {
		w.statuses = make(map[uuid.UUID]string)
	}
	w.statuses[leadID] = status
	return nil
}

type fakeBooker struct {
	bookings []BookingRequest
}

func (b *fakeBooker) BookFromCall(_ context.Context, req BookingRequest) error {
	b.bookings = append(b.bookings, req)
	return nil
}

type fakeBus struct {
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

func newTestService() (*Service, *fakeCallStore, *fakeLeadWriter, *fakeBooker, *fakeBus) {
	store := &fakeCallStore{upsertID: uuid.New()}
	leadWriter := &fakeLeadWriter{}
	booker := &fakeBooker{}
	bus := &fakeBus{}
	svc := NewService(store, leadWriter, booker, bus, logger.New("test"))
	return svc, store, leadWriter, booker, bus
}

func completedEvent(agencyID uuid.UUID, leadID *uuid.UUID) CallEvent {
	return CallEvent{
		Kind:            EventEndOfCallReport,
		CallID:          "call-abc",
		ProviderStatus:  "completed",
		DurationSeconds: 60,
		Summary:         "went well",
		Metadata:        CallMetadata{AgencyID: agencyID, LeadID: leadID},
	}
}

func TestHandleEventCompletedCall(t *testing.T) {
	svc, store, leadWriter, _, bus := newTestService()
	agencyID := uuid.New()
	leadID := uuid.New()

	if err := svc.HandleEvent(context.Background(), completedEvent(agencyID, &leadID)); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}

	if len(store.upserted) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(store.upserted))
	}
	log := store.upserted[0]
	if log.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", log.Status)
	}
	if log.VapiCallID != "call-abc" {
		t.Errorf("vapi call id = %q", log.VapiCallID)
	}

	if leadWriter.statuses[leadID] != "called" {
		t.Errorf("lead status = %q, want called", leadWriter.statuses[leadID])
	}

	if len(store.retries) != 0 {
		t.Error("completed call should not schedule a retry")
	}

	var found bool
	for _, e := range bus.published {
		if completed, ok := e.(events.CallCompleted); ok {
			found = true
			if completed.AgencyID != agencyID {
				t.Error("published event has wrong agency")
			}
			if completed.Summary != "went well" {
				t.Error("published event missing summary")
			}
		}
	}
	if !found {
		t.Error("CallCompleted event not published")
	}
}

func TestHandleEventNoAnswerSchedulesRetry(t *testing.T) {
	svc, store, leadWriter, _, bus := newTestService()
	agencyID := uuid.New()
	leadID := uuid.New()

	event := completedEvent(agencyID, &leadID)
	event.ProviderStatus = "no-answer"

	before := time.Now().UTC()
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}

	if len(store.retries) != 1 {
		t.Fatalf("expected 1 retry, got %d", len(store.retries))
	}
	retry := store.retries[0]
	if retry.RetryCount != 1 {
		t.Errorf("retry count = %d, want 1", retry.RetryCount)
	}
	wantAt := before.Add(2 * time.Hour)
	if retry.ScheduledAt.Before(wantAt.Add(-time.Minute)) || retry.ScheduledAt.After(wantAt.Add(time.Minute)) {
		t.Errorf("first retry scheduled at %v, want ~2h out", retry.ScheduledAt)
	}

	if leadWriter.statuses[leadID] != "no_answer" {
		t.Errorf("lead status = %q, want no_answer", leadWriter.statuses[leadID])
	}

	var scheduled, completed bool
	for _, e := range bus.published {
		switch e.(type) {
		case events.CallRetryScheduled:
			scheduled = true
		case events.CallCompleted:
			completed = true
		}
	}
	if !scheduled {
		t.Error("CallRetryScheduled event not published")
	}
	if completed {
		t.Error("no-answer call should not publish CallCompleted")
	}
}

func TestHandleEventRetryCapReached(t *testing.T) {
	svc, store, _, _, _ := newTestService()
	store.maxRetryCount = 3
	leadID := uuid.New()

	event := completedEvent(uuid.New(), &leadID)
	event.ProviderStatus = "no-answer"

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}

	if len(store.retries) != 0 {
		t.Fatalf("expected no retries past the cap, got %d", len(store.retries))
	}
}

func TestHandleEventBusyAndFailedAreTerminal(t *testing.T) {
	for _, providerStatus := range []string{"busy", "failed"} {
		svc, store, _, _, bus := newTestService()
		leadID := uuid.New()

		event := completedEvent(uuid.New(), &leadID)
		event.ProviderStatus = providerStatus

		if err := svc.HandleEvent(context.Background(), event); err != nil {
			t.Fatalf("HandleEvent(%s) returned error: %v", providerStatus, err)
		}

		if len(store.upserted) != 1 {
			t.Errorf("%s outcome must still be recorded", providerStatus)
		}
		if len(store.retries) != 0 {
			t.Errorf("%s outcome scheduled %d retries, want 0", providerStatus, len(store.retries))
		}
		for _, e := range bus.published {
			if _, ok := e.(events.CallRetryScheduled); ok {
				t.Errorf("%s outcome published CallRetryScheduled", providerStatus)
			}
		}
	}
}

func TestHandleEventMissingAgencyAborts(t *testing.T) {
	svc, store, _, _, _ := newTestService()

	event := completedEvent(uuid.Nil, nil)
	event.Metadata = CallMetadata{}

	if err := svc.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("expected error for missing agency correlation")
	}
	if len(store.upserted) != 0 {
		t.Error("nothing should be written without a tenant")
	}
}

func TestHandleEventBookAppointment(t *testing.T) {
	svc, _, _, booker, _ := newTestService()
	agencyID := uuid.New()
	leadID := uuid.New()

	event := CallEvent{
		Kind:     EventFunctionCall,
		CallID:   "call-fn",
		Metadata: CallMetadata{AgencyID: agencyID, LeadID: &leadID},
		Function: &FunctionCall{Name: "bookAppointment", Time: "2026-09-03T14:00:00Z", Notes: "gate code 4411"},
	}

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}

	if len(booker.bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(booker.bookings))
	}
	booking := booker.bookings[0]
	if booking.AgencyID != agencyID || booking.LeadID == nil || *booking.LeadID != leadID {
		t.Error("booking request missing correlation")
	}
	if booking.TimeRaw != "2026-09-03T14:00:00Z" {
		t.Errorf("booking time = %q", booking.TimeRaw)
	}
}

func TestHandleEventUnknownFunctionIgnored(t *testing.T) {
	svc, _, _, booker, _ := newTestService()

	event := CallEvent{
		Kind:     EventFunctionCall,
		Metadata: CallMetadata{AgencyID: uuid.New()},
		Function: &FunctionCall{Name: "transferCall"},
	}

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}
	if len(booker.bookings) != 0 {
		t.Error("unknown functions must not create bookings")
	}
}

func TestHandleEventUnknownKindIgnored(t *testing.T) {
	svc, store, _, _, _ := newTestService()

	event := CallEvent{Kind: EventKind("speech-update"), Metadata: CallMetadata{AgencyID: uuid.New()}}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}
	if len(store.upserted) != 0 {
		t.Error("unknown kinds must not persist anything")
	}
}
