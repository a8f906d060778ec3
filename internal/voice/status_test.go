package voice

import "testing"

func TestFromProviderStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want CallStatus
	}{
		{"completed", StatusCompleted},
		{"ended", StatusCompleted},
		{"no-answer", StatusNoAnswer},
		{"no_answer", StatusNoAnswer},
		{"NO-ANSWER", StatusNoAnswer},
		{"  busy  ", StatusBusy},
		{"failed", StatusFailed},
		{"error", StatusFailed},
		{"cancelled", StatusCancelled},
		{"canceled", StatusCancelled},
		{"", StatusCompleted},
		{"some-future-status", StatusCompleted},
	}

	for _, tc := range cases {
		if got := FromProviderStatus(tc.raw); got != tc.want {
			t.Errorf("FromProviderStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestEventKindIsCallUpdate(t *testing.T) {
	if !EventEndOfCallReport.IsCallUpdate() {
		t.Error("end-of-call-report should be a call update")
	}
	if !EventCallStatusUpdate.IsCallUpdate() {
		t.Error("call-status-update should be a call update")
	}
	if EventFunctionCall.IsCallUpdate() {
		t.Error("function-call should not be a call update")
	}
	if EventKind("speech-update").IsCallUpdate() {
		t.Error("unknown kinds should not be call updates")
	}
}
