package leads

import (
	"testing"

	"thavon_backend/platform/apperr"
)

func TestNormalizeInboundAliases(t *testing.T) {
	cases := []struct {
		name string
		body string
		want InboundLead
	}{
		{
			name: "lowercase fields",
			body: `{"name": "Jane Doe", "phone": "+14155550100", "address": "123 Main St, Denver CO 80014"}`,
			want: InboundLead{Name: "Jane Doe", Phone: "+14155550100", Address: "123 Main St, Denver CO 80014", Source: "webhook"},
		},
		{
			name: "first_name and phone_number",
			body: `{"first_name": "Bob", "phone_number": "+14155550101", "source": "zillow"}`,
			want: InboundLead{Name: "Bob", Phone: "+14155550101", Source: "zillow"},
		},
		{
			name: "capitalized fields",
			body: `{"Name": "Carol", "Phone": "+14155550102", "Address": "9 Elm St"}`,
			want: InboundLead{Name: "Carol", Phone: "+14155550102", Address: "9 Elm St", Source: "webhook"},
		},
		{
			name: "missing name gets default",
			body: `{"phone": "+14155550103"}`,
			want: InboundLead{Name: DefaultLeadName, Phone: "+14155550103", Source: "webhook"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeInbound([]byte(tc.body))
			if err != nil {
				t.Fatalf("NormalizeInbound returned error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestNormalizeInboundMissingPhone(t *testing.T) {
	_, err := NormalizeInbound([]byte(`{"name": "No Phone"}`))
	if err == nil {
		t.Fatal("expected error for missing phone")
	}
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Errorf("kind = %v, want bad request", apperr.GetKind(err))
	}
}

func TestNormalizeInboundInvalidJSON(t *testing.T) {
	if _, err := NormalizeInbound([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected error for non-object payload")
	}
}

func TestNormalizeInboundPhoneE164(t *testing.T) {
	got, err := NormalizeInbound([]byte(`{"phone": "(415) 555-0100"}`))
	if err != nil {
		t.Fatalf("NormalizeInbound returned error: %v", err)
	}
	if got.Phone != "+14155550100" {
		t.Errorf("phone = %q, want E.164", got.Phone)
	}
}

func TestNormalizeInboundIgnoresNonStringValues(t *testing.T) {
	got, err := NormalizeInbound([]byte(`{"name": 42, "first_name": "Eve", "phone": "+14155550104"}`))
	if err != nil {
		t.Fatalf("NormalizeInbound returned error: %v", err)
	}
	if got.Name != "Eve" {
		t.Errorf("name = %q, want fallback to first_name", got.Name)
	}
}
