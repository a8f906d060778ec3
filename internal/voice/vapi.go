package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"thavon_backend/platform/config"
)

// VapiClient talks to the Vapi phone-call API.
type VapiClient struct {
	baseURL       string
	apiKey        string
	phoneNumberID string
	http          *http.Client
}

// NewVapiClient creates a Vapi API client. Returns nil when credentials are
// not configured; callers treat a nil client as "voice disabled".
func NewVapiClient(cfg config.VapiConfig) *VapiClient {
	if !cfg.IsVapiConfigured() {
		return nil
	}

	return &VapiClient{
		baseURL:       strings.TrimRight(cfg.GetVapiBaseURL(), "/"),
		apiKey:        cfg.GetVapiAPIKey(),
		phoneNumberID: cfg.GetVapiPhoneNumberID(),
		http:          &http.Client{Timeout: 30 * time.Second},
	}
}

type vapiCustomer struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

type vapiFunctionParam struct {
	Type string `json:"type"`
}

type vapiFunction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  struct {
		Type       string                       `json:"type"`
		Properties map[string]vapiFunctionParam `json:"properties"`
	} `json:"parameters"`
}

type vapiModel struct {
	Provider     string         `json:"provider"`
	Model        string         `json:"model"`
	SystemPrompt string         `json:"systemPrompt"`
	Functions    []vapiFunction `json:"functions,omitempty"`
}

type vapiVoice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

type vapiAssistant struct {
	Model        vapiModel `json:"model"`
	Voice        vapiVoice `json:"voice"`
	FirstMessage string    `json:"firstMessage,omitempty"`
}

type vapiCallRequest struct {
	PhoneNumberID string            `json:"phoneNumberId"`
	Customer      vapiCustomer      `json:"customer"`
	Assistant     vapiAssistant     `json:"assistant"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// bookAppointmentFunction declares the callable the AI agent can invoke
// mid-call to signal a booking intent. The resulting function-call webhook
// is handled by the outcome service.
func bookAppointmentFunction() vapiFunction {
	fn := vapiFunction{
		Name:        "bookAppointment",
		Description: "Book the meeting.",
	}
	fn.Parameters.Type = "object"
	fn.Parameters.Properties = map[string]vapiFunctionParam{
		"time":  {Type: "string"},
		"notes": {Type: "string"},
	}
	return fn
}

// CreateCall fires a phone call request at the provider. The call's outcome
// is reported asynchronously via webhook, never through this response.
func (c *VapiClient) CreateCall(ctx context.Context, req CallRequest) error {
	if c == nil {
		return fmt.Errorf("vapi client not configured")
	}

	payload := vapiCallRequest{
		PhoneNumberID: c.phoneNumberID,
		Customer: vapiCustomer{
			Number: req.Phone,
			Name:   req.Name,
		},
		Assistant: vapiAssistant{
			Model: vapiModel{
				Provider:     "openai",
				Model:        "gpt-4o",
				SystemPrompt: req.SystemPrompt,
				Functions:    []vapiFunction{bookAppointmentFunction()},
			},
			Voice: vapiVoice{
				Provider: "cartesia",
				VoiceID:  "248be419-c632-4f23-adf1-5324ed7dbf1d",
			},
			FirstMessage: req.FirstMessage,
		},
		Metadata: req.correlationMetadata(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal vapi payload: %w", err)
	}

	url := c.baseURL + "/call/phone"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("vapi request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vapi returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return nil
}
