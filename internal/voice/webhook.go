package voice

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CallMetadata is the validated form of the correlation bag we attached to
// the original dispatch and the provider echoes back on every event.
type CallMetadata struct {
	AgencyID uuid.UUID
	LeadID   *uuid.UUID
	AgentID  *uuid.UUID
}

// FunctionCall is a mid-call function invocation by the AI agent.
type FunctionCall struct {
	Name  string
	Time  string
	Notes string
}

// CallEvent is the parsed, typed form of one provider webhook delivery.
// Parsing happens once at the edge; business logic never touches raw JSON.
type CallEvent struct {
	Kind            EventKind
	CallID          string
	ProviderStatus  string
	DurationSeconds int
	RecordingURL    string
	Transcript      string
	Summary         string
	Language        string
	Metadata        CallMetadata
	Function        *FunctionCall
}

type rawMetadata struct {
	AgencyID string `json:"agency_id"`
	LeadID   string `json:"lead_id"`
	AgentID  string `json:"agent_id"`
}

type rawEnvelope struct {
	Type  string `json:"type"`
	Event string `json:"event"`
	Call  struct {
		ID       string      `json:"id"`
		Status   string      `json:"status"`
		Metadata rawMetadata `json:"metadata"`
	} `json:"call"`
	Status          string      `json:"status"`
	EndedReason     string      `json:"endedReason"`
	DurationSeconds int         `json:"durationSeconds"`
	RecordingURL    string      `json:"recordingUrl"`
	Transcript      string      `json:"transcript"`
	Summary         string      `json:"summary"`
	Language        string      `json:"language"`
	Metadata        rawMetadata `json:"metadata"`
	FunctionCall    *struct {
		Name       string `json:"name"`
		Parameters struct {
			Time  string `json:"time"`
			Notes string `json:"notes"`
		} `json:"parameters"`
	} `json:"functionCall"`
}

// ErrNoEventType is returned for envelopes without a recognizable
// discriminator; the webhook answers 200 and ignores them.
var ErrNoEventType = fmt.Errorf("webhook envelope has no event type")

// ParseCallEvent converts a raw webhook body into a typed CallEvent.
// Correlation metadata is accepted from either the call object or the
// envelope root, whichever the provider populated.
func ParseCallEvent(body []byte) (CallEvent, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return CallEvent{}, fmt.Errorf("decode webhook envelope: %w", err)
	}

	kind := raw.Type
	if kind == "" {
		kind = raw.Event
	}
	if kind == "" {
		return CallEvent{}, ErrNoEventType
	}

	event := CallEvent{
		Kind:            EventKind(kind),
		CallID:          raw.Call.ID,
		ProviderStatus:  firstNonEmpty(raw.Call.Status, raw.Status, raw.EndedReason),
		DurationSeconds: raw.DurationSeconds,
		RecordingURL:    raw.RecordingURL,
		Transcript:      raw.Transcript,
		Summary:         raw.Summary,
		Language:        raw.Language,
		Metadata:        parseMetadata(raw.Call.Metadata, raw.Metadata),
	}

	if raw.FunctionCall != nil {
		event.Function = &FunctionCall{
			Name:  raw.FunctionCall.Name,
			Time:  raw.FunctionCall.Parameters.Time,
			Notes: raw.FunctionCall.Parameters.Notes,
		}
	}

	return event, nil
}

func parseMetadata(candidates ...rawMetadata) CallMetadata {
	var meta CallMetadata
	for _, raw := range candidates {
		if meta.AgencyID == uuid.Nil {
			if id, err := uuid.Parse(raw.AgencyID); err == nil {
				meta.AgencyID = id
			}
		}
		if meta.LeadID == nil {
			if id, err := uuid.Parse(raw.LeadID); err == nil {
				meta.LeadID = &id
			}
		}
		if meta.AgentID == nil {
			if id, err := uuid.Parse(raw.AgentID); err == nil {
				meta.AgentID = &id
			}
		}
	}
	return meta
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
