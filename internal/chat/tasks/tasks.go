// Package tasks defines the detached background jobs and their asynq client.
package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names. The worker registers a handler per type.
const (
	TypeFileAnalysis = "chat:file_analysis"
)

// FileAnalysisPayload identifies an uploaded image for the analysis webhook.
type FileAnalysisPayload struct {
	SessionID   string `json:"session_id"`
	FileURL     string `json:"file_url"`
	ContentType string `json:"content_type"`
	UploadedAt  string `json:"uploaded_at"`
}

func NewFileAnalysisTask(sessionID, fileURL, contentType string) (*asynq.Task, error) {
	payload, err := json.Marshal(FileAnalysisPayload{
		SessionID:   sessionID,
		FileURL:     fileURL,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal file analysis payload: %w", err)
	}
	return asynq.NewTask(TypeFileAnalysis, payload,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	), nil
}
