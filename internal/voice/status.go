package voice

import "strings"

// CallStatus is the canonical, provider-agnostic status of a call.
type CallStatus string

const (
	StatusCompleted CallStatus = "completed"
	StatusNoAnswer  CallStatus = "no_answer"
	StatusBusy      CallStatus = "busy"
	StatusFailed    CallStatus = "failed"
	StatusCancelled CallStatus = "cancelled"
)

// FromProviderStatus maps the provider's status vocabulary onto the internal
// one. Unrecognized statuses resolve to completed on purpose: a status we
// have never seen must be treated as a finished call, not left pending.
func FromProviderStatus(raw string) CallStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "no-answer", "no_answer":
		return StatusNoAnswer
	case "busy":
		return StatusBusy
	case "failed", "error":
		return StatusFailed
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusCompleted
	}
}

// EventKind discriminates the webhook event types delivered by the provider.
type EventKind string

const (
	EventEndOfCallReport  EventKind = "end-of-call-report"
	EventCallStatusUpdate EventKind = "call-status-update"
	EventFunctionCall     EventKind = "function-call"
)

// IsCallUpdate reports whether the event carries a call status to persist.
func (k EventKind) IsCallUpdate() bool {
	return k == EventEndOfCallReport || k == EventCallStatusUpdate
}
