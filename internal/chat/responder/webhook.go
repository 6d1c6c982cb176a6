package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"roofchat_backend/internal/chat/domain"
	"roofchat_backend/platform/validator"
)

// webhookPayload is the wire shape the automation workflow expects.
type webhookPayload struct {
	SessionID   string `json:"session_id"`
	Message     string `json:"message"`
	PageContext string `json:"page_context,omitempty"`
	UserData    struct {
		Name        string `json:"name,omitempty"`
		Email       string `json:"email,omitempty"`
		Phone       string `json:"phone,omitempty"`
		ProjectType string `json:"project_type,omitempty"`
	} `json:"user_data"`
	Timestamp string `json:"timestamp"`
	IPAddress string `json:"ip_address,omitempty"`
}

type webhookResponse struct {
	Response      string               `json:"response" validate:"required"`
	LeadScore     *int                 `json:"lead_score,omitempty" validate:"omitempty,min=0,max=100"`
	IsHotLead     *bool                `json:"is_hot_lead,omitempty"`
	IsEmergency   *bool                `json:"is_emergency,omitempty"`
	RequiresHuman *bool                `json:"requires_human,omitempty"`
	QuickActions  []quickActionPayload `json:"quick_actions,omitempty"`
}

type quickActionPayload struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
}

// WebhookResponder calls the external automation workflow over HTTP. Every
// failure mode, network, non-2xx status, or an unusable body, surfaces as an
// error so the caller can fall back.
type WebhookResponder struct {
	url        string
	httpClient *http.Client
	validate   *validator.Validator
}

func NewWebhookResponder(url string, timeout time.Duration) *WebhookResponder {
	return &WebhookResponder{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
	}
}

func (w *WebhookResponder) Respond(ctx context.Context, req Request) (Reply, error) {
	payload := webhookPayload{
		SessionID:   req.SessionID,
		Message:     req.Message,
		PageContext: req.PageContext,
		Timestamp:   req.Timestamp.UTC().Format(time.RFC3339),
		IPAddress:   req.IPAddress,
	}
	payload.UserData.Name = req.UserInfo.Name
	payload.UserData.Email = req.UserInfo.Email
	payload.UserData.Phone = req.UserInfo.Phone
	payload.UserData.ProjectType = string(req.UserInfo.ProjectType)

	body, err := json.Marshal(payload)
	if err != nil {
		return Reply{}, fmt.Errorf("marshal webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("call responder webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reply{}, fmt.Errorf("responder webhook returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Reply{}, fmt.Errorf("read webhook response: %w", err)
	}

	var parsed webhookResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Reply{}, fmt.Errorf("decode webhook response: %w", err)
	}
	parsed.Response = strings.TrimSpace(parsed.Response)
	if err := w.validate.Struct(parsed); err != nil {
		return Reply{}, fmt.Errorf("invalid webhook response: %w", err)
	}

	return toReply(parsed), nil
}

func toReply(parsed webhookResponse) Reply {
	reply := Reply{
		Text:          parsed.Response,
		LeadScore:     parsed.LeadScore,
		IsHotLead:     parsed.IsHotLead,
		IsEmergency:   parsed.IsEmergency,
		RequiresHuman: parsed.RequiresHuman,
	}
	for _, qa := range parsed.QuickActions {
		kind := domain.QuickActionKind(qa.Action)
		if !kind.Valid() {
			continue
		}
		reply.QuickActions = append(reply.QuickActions, domain.QuickAction{
			ID:     qa.ID,
			Label:  qa.Label,
			Action: kind,
			Value:  qa.Value,
		})
	}
	return reply
}
