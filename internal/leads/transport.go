package leads

import (
	"encoding/json"
	"strings"

	"thavon_backend/platform/apperr"
	"thavon_backend/platform/phone"
)

// DefaultLeadName labels leads whose source never sent a name.
const DefaultLeadName = "New Lead"

// InboundLead is the normalized form of an inbound webhook payload.
type InboundLead struct {
	Name    string
	Phone   string
	Address string
	Source  string
}

// NormalizeInbound parses a lead payload from any of the form builders and
// CRMs agencies connect. Field names vary per source (name / first_name /
// Name, phone / phone_number / Phone), so extraction is alias-tolerant
// rather than schema-strict. Only the phone number is mandatory.
func NormalizeInbound(body []byte) (InboundLead, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return InboundLead{}, apperr.BadRequest("invalid JSON payload")
	}

	lead := InboundLead{
		Name:    firstString(fields, "name", "first_name", "Name"),
		Phone:   firstString(fields, "phone", "phone_number", "Phone"),
		Address: firstString(fields, "address", "Address"),
		Source:  firstString(fields, "source", "Source"),
	}

	if lead.Name == "" {
		lead.Name = DefaultLeadName
	}
	if lead.Phone == "" {
		return InboundLead{}, apperr.BadRequest("phone number is required")
	}
	if lead.Source == "" {
		lead.Source = "webhook"
	}

	lead.Phone = phone.NormalizeE164(lead.Phone)

	return lead, nil
}

func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
