package whatsapp

import (
	"fmt"
	"strings"
)

// CallSummaryMessage formats the post-call notification text.
func CallSummaryMessage(leadName, summary string, durationSeconds int) string {
	if summary == "" {
		summary = "No summary available."
	}

	return fmt.Sprintf(
		"✅ AI call with %s finished (%ds).\n\n%s",
		leadName, durationSeconds, strings.TrimSpace(summary),
	)
}

// AppointmentMessage formats the new-booking notification text.
func AppointmentMessage(leadName, scheduledAt, notes string) string {
	msg := fmt.Sprintf("📅 New appointment with %s on %s.", leadName, scheduledAt)
	if notes = strings.TrimSpace(notes); notes != "" {
		msg += "\n\n" + notes
	}
	return msg
}
