package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// localPayload is the trimmed shape the built-in respond endpoint accepts.
type localPayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Context   struct {
		Page        string `json:"page,omitempty"`
		Name        string `json:"name,omitempty"`
		ProjectType string `json:"project_type,omitempty"`
		Urgency     int    `json:"urgency,omitempty"`
	} `json:"context"`
}

// LocalHTTPResponder calls a rule-based respond endpoint, typically another
// instance of this service. It exists so the fallback can live on a separate
// host; in a single-node deployment the in-process RuleResponder is wired
// instead.
type LocalHTTPResponder struct {
	url        string
	httpClient *http.Client
}

func NewLocalHTTPResponder(url string, timeout time.Duration) *LocalHTTPResponder {
	return &LocalHTTPResponder{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (l *LocalHTTPResponder) Respond(ctx context.Context, req Request) (Reply, error) {
	payload := localPayload{SessionID: req.SessionID, Message: req.Message}
	payload.Context.Page = req.PageContext
	payload.Context.Name = req.UserInfo.Name
	payload.Context.ProjectType = string(req.UserInfo.ProjectType)
	payload.Context.Urgency = req.UserInfo.UrgencyLevel

	body, err := json.Marshal(payload)
	if err != nil {
		return Reply{}, fmt.Errorf("marshal local payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("build local request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("call local responder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reply{}, fmt.Errorf("local responder returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Reply{}, fmt.Errorf("read local response: %w", err)
	}

	var parsed webhookResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Reply{}, fmt.Errorf("decode local response: %w", err)
	}
	if parsed.Response == "" {
		return Reply{}, fmt.Errorf("local responder returned empty response text")
	}
	return toReply(parsed), nil
}
