// Package crm pushes call outcomes into the agency's CRM. Follow Up Boss is
// the only integration today.
package crm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const fubEventsURL = "https://api.followupboss.com/v1/events"

// FollowUpBossClient talks to the Follow Up Boss events API. Authentication
// is HTTP Basic with the agency's API key as username and no password.
type FollowUpBossClient struct {
	http *http.Client
}

// NewFollowUpBossClient creates a Follow Up Boss client.
func NewFollowUpBossClient() *FollowUpBossClient {
	return &FollowUpBossClient{
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type fubPhone struct {
	Value string `json:"value"`
}

type fubPerson struct {
	FirstName string     `json:"firstName,omitempty"`
	Phones    []fubPhone `json:"phones,omitempty"`
}

type fubEvent struct {
	Source      string    `json:"source"`
	System      string    `json:"system"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Person      fubPerson `json:"person"`
}

// CallNote is one completed call pushed to the CRM.
type CallNote struct {
	LeadName  string
	LeadPhone string
	Summary   string
}

// PushCallNote records a completed AI call against the matching person in
// Follow Up Boss. The API creates the person if the phone is unknown.
func (c *FollowUpBossClient) PushCallNote(ctx context.Context, apiKey string, note CallNote) error {
	if apiKey == "" {
		return fmt.Errorf("follow up boss api key not set")
	}

	description := strings.TrimSpace(note.Summary)
	if description == "" {
		description = "AI call completed."
	}

	event := fubEvent{
		Source:      "Thavon AI",
		System:      "Thavon",
		Type:        "Note",
		Description: description,
		Person: fubPerson{
			FirstName: note.LeadName,
			Phones:    []fubPhone{{Value: note.LeadPhone}},
		},
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal crm event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fubEventsURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(apiKey+":")))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("follow up boss returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return nil
}
