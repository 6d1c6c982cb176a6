// Package uploads accepts files from the chat widget, validates them before
// any network work, and stores them for later analysis.
package uploads

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"roofchat_backend/internal/events"
	"roofchat_backend/platform/logger"
)

// ObjectStore is the blob backend. The MinIO adapter implements it in
// production; tests substitute a fake.
type ObjectStore interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) (url string, err error)
}

// AnalysisEnqueuer hands an uploaded image off for detached analysis. Enqueue
// failures are logged, never surfaced to the uploader.
type AnalysisEnqueuer interface {
	EnqueueFileAnalysis(sessionID, fileURL, contentType string) error
}

// Result describes a stored upload.
type Result struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type Service struct {
	store       ObjectStore
	enqueuer    AnalysisEnqueuer
	bus         events.Bus
	maxFileSize int64
	logger      *logger.Logger
}

func NewService(store ObjectStore, enqueuer AnalysisEnqueuer, bus events.Bus, maxFileSize int64, log *logger.Logger) *Service {
	return &Service{
		store:       store,
		enqueuer:    enqueuer,
		bus:         bus,
		maxFileSize: maxFileSize,
		logger:      log,
	}
}

// Upload validates, optionally recompresses, and stores one file. Validation
// happens on the declared size and type before the body is read, so an
// oversized or unsupported file is rejected without touching the network.
func (s *Service) Upload(ctx context.Context, sessionID, filename, contentType string, size int64, body io.Reader) (Result, error) {
	if err := ValidateFileSize(size, s.maxFileSize); err != nil {
		return Result{}, err
	}
	if err := ValidateContentType(contentType); err != nil {
		return Result{}, err
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxFileSize+1))
	if err != nil {
		return Result{}, fmt.Errorf("read upload body: %w", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return Result{}, fmt.Errorf("upload body larger than declared size")
	}

	storedType := contentType
	if IsImage(contentType) && int64(len(data)) > recompressThreshold {
		if compressed, newType := recompressImage(data); newType != "" {
			data = compressed
			storedType = newType
			filename = strings.TrimSuffix(filename, path.Ext(filename)) + ".jpg"
		}
	}

	uploadID := uuid.NewString()
	key := objectName(sessionID, time.Now().UTC(), path.Ext(filename))
	url, err := s.store.Put(ctx, key, data, storedType)
	if err != nil {
		return Result{}, fmt.Errorf("store upload: %w", err)
	}

	if IsImage(storedType) && s.enqueuer != nil {
		if err := s.enqueuer.EnqueueFileAnalysis(sessionID, url, storedType); err != nil {
			s.logger.Warn("file analysis enqueue failed", "session_id", sessionID, "error", err)
		}
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.AttachmentUploaded{
			BaseEvent:   events.NewBaseEvent(),
			SessionID:   sessionID,
			FileKey:     key,
			FileURL:     url,
			ContentType: storedType,
			SizeBytes:   int64(len(data)),
		})
	}

	s.logger.Info("file uploaded",
		"session_id", sessionID,
		"upload_id", uploadID,
		"content_type", storedType,
		"size", len(data),
	)
	return Result{
		ID:          uploadID,
		URL:         url,
		ContentType: storedType,
		Size:        int64(len(data)),
	}, nil
}
