package voice

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestParseCallEventEndOfCallReport(t *testing.T) {
	agencyID := uuid.New()
	leadID := uuid.New()

	body := []byte(`{
		"type": "end-of-call-report",
		"call": {
			"id": "call-123",
			"metadata": {"agency_id": "` + agencyID.String() + `", "lead_id": "` + leadID.String() + `"}
		},
		"endedReason": "customer-ended-call",
		"durationSeconds": 95,
		"recordingUrl": "https://storage.example.com/rec.mp3",
		"transcript": "hello",
		"summary": "Lead wants to sell in spring."
	}`)

	event, err := ParseCallEvent(body)
	if err != nil {
		t.Fatalf("ParseCallEvent returned error: %v", err)
	}

	if event.Kind != EventEndOfCallReport {
		t.Errorf("kind = %q, want end-of-call-report", event.Kind)
	}
	if event.CallID != "call-123" {
		t.Errorf("call id = %q", event.CallID)
	}
	if event.ProviderStatus != "customer-ended-call" {
		t.Errorf("provider status = %q", event.ProviderStatus)
	}
	if event.DurationSeconds != 95 {
		t.Errorf("duration = %d", event.DurationSeconds)
	}
	if event.Metadata.AgencyID != agencyID {
		t.Errorf("agency id = %s, want %s", event.Metadata.AgencyID, agencyID)
	}
	if event.Metadata.LeadID == nil || *event.Metadata.LeadID != leadID {
		t.Errorf("lead id not parsed from call metadata")
	}
	if event.Metadata.AgentID != nil {
		t.Error("agent id should be nil when absent")
	}
}

func TestParseCallEventRootLevelMetadata(t *testing.T) {
	agencyID := uuid.New()

	body := []byte(`{
		"event": "call-status-update",
		"call": {"id": "call-9"},
		"status": "no-answer",
		"metadata": {"agency_id": "` + agencyID.String() + `"}
	}`)

	event, err := ParseCallEvent(body)
	if err != nil {
		t.Fatalf("ParseCallEvent returned error: %v", err)
	}

	if event.Kind != EventCallStatusUpdate {
		t.Errorf("kind = %q, want call-status-update", event.Kind)
	}
	if event.ProviderStatus != "no-answer" {
		t.Errorf("provider status = %q", event.ProviderStatus)
	}
	if event.Metadata.AgencyID != agencyID {
		t.Error("agency id should fall back to root metadata")
	}
}

func TestParseCallEventFunctionCall(t *testing.T) {
	agencyID := uuid.New()

	body := []byte(`{
		"type": "function-call",
		"call": {"id": "call-5", "metadata": {"agency_id": "` + agencyID.String() + `"}},
		"functionCall": {
			"name": "bookAppointment",
			"parameters": {"time": "2026-09-03T14:00:00Z", "notes": "prefers afternoon"}
		}
	}`)

	event, err := ParseCallEvent(body)
	if err != nil {
		t.Fatalf("ParseCallEvent returned error: %v", err)
	}

	if event.Function == nil {
		t.Fatal("function call not parsed")
	}
	if event.Function.Name != "bookAppointment" {
		t.Errorf("function name = %q", event.Function.Name)
	}
	if event.Function.Time != "2026-09-03T14:00:00Z" {
		t.Errorf("function time = %q", event.Function.Time)
	}
	if event.Function.Notes != "prefers afternoon" {
		t.Errorf("function notes = %q", event.Function.Notes)
	}
}

func TestParseCallEventNoEventType(t *testing.T) {
	_, err := ParseCallEvent([]byte(`{"call": {"id": "call-1"}}`))
	if !errors.Is(err, ErrNoEventType) {
		t.Fatalf("err = %v, want ErrNoEventType", err)
	}
}

func TestParseCallEventInvalidJSON(t *testing.T) {
	if _, err := ParseCallEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseCallEventBadMetadataUUIDs(t *testing.T) {
	body := []byte(`{
		"type": "call-status-update",
		"call": {"id": "call-2", "metadata": {"agency_id": "not-a-uuid"}}
	}`)

	event, err := ParseCallEvent(body)
	if err != nil {
		t.Fatalf("ParseCallEvent returned error: %v", err)
	}
	if event.Metadata.AgencyID != uuid.Nil {
		t.Error("unparseable agency id should stay nil")
	}
}
