package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"roofchat_backend/platform/logger"
)

// AnalysisHandler delivers file analysis jobs to the external analysis
// webhook. It runs inside the worker process, never the request path.
type AnalysisHandler struct {
	webhookURL string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewAnalysisHandler(webhookURL string, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}
}

func (h *AnalysisHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeFileAnalysis, h.HandleFileAnalysis)
}

func (h *AnalysisHandler) HandleFileAnalysis(ctx context.Context, task *asynq.Task) error {
	var payload FileAnalysisPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// A payload we cannot parse will never parse; do not retry.
		return fmt.Errorf("unmarshal file analysis payload: %w: %w", err, asynq.SkipRetry)
	}
	if h.webhookURL == "" {
		h.logger.Debug("file analysis webhook not configured, dropping task",
			"session_id", payload.SessionID)
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal analysis request: %w: %w", err, asynq.SkipRetry)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call analysis webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("analysis webhook returned status %d", resp.StatusCode)
	}

	h.logger.Info("file analysis delivered",
		"session_id", payload.SessionID,
		"file_url", payload.FileURL,
	)
	return nil
}
