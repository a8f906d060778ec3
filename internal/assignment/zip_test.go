package assignment

import "testing"

func TestExtractPostalCode(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"123 Main St, Denver CO 80014", "80014"},
		{"500 Oak Ave, Austin TX 78701-3218", "78701-3218"},
		{"Keizersgracht 12, 1015 Amsterdam", "1015"},
		{"10 Downing Street, London SW1A 2AA", "SW1A2AA"},
		{"  80014  ", "80014"},
		{"no numbers here", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := ExtractPostalCode(tc.address); got != tc.want {
			t.Errorf("ExtractPostalCode(%q) = %q, want %q", tc.address, got, tc.want)
		}
	}
}
