package uploads

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"roofchat_backend/platform/apperr"
	"roofchat_backend/platform/logger"
)

var storageKeyPattern = regexp.MustCompile(`^s-1/\d+\.jpg$`)

type fakeStore struct {
	puts        int
	lastName    string
	lastType    string
	lastSize    int
	failWithErr error
}

func (f *fakeStore) Put(_ context.Context, objectName string, data []byte, contentType string) (string, error) {
	if f.failWithErr != nil {
		return "", f.failWithErr
	}
	f.puts++
	f.lastName = objectName
	f.lastType = contentType
	f.lastSize = len(data)
	return "https://files.example.com/" + objectName, nil
}

type fakeEnqueuer struct {
	calls []string
}

func (f *fakeEnqueuer) EnqueueFileAnalysis(sessionID, fileURL, contentType string) error {
	f.calls = append(f.calls, fileURL)
	return nil
}

func newTestService(store *fakeStore, enq *fakeEnqueuer) *Service {
	return NewService(store, enq, nil, 10*1024*1024, logger.New("test"))
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	// Noisy pixels keep the encoder from compressing the image away.
	rnd := rand.New(rand.NewSource(42))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestUploadOversizedRejectedBeforeStorage(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeEnqueuer{})

	_, err := svc.Upload(context.Background(), "s-1", "huge.jpg", "image/jpeg",
		11*1024*1024, strings.NewReader("irrelevant"))
	if err == nil {
		t.Fatal("expected rejection")
	}
	if apperr.GetKind(err) != apperr.KindTooLarge {
		t.Fatalf("expected too-large kind, got %v", apperr.GetKind(err))
	}
	if store.puts != 0 {
		t.Fatalf("storage should not be touched, saw %d puts", store.puts)
	}
}

func TestUploadUnsupportedTypeRejected(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeEnqueuer{})

	_, err := svc.Upload(context.Background(), "s-1", "script.sh", "application/x-sh",
		100, strings.NewReader("#!/bin/sh"))
	if apperr.GetKind(err) != apperr.KindUnsupported {
		t.Fatalf("expected unsupported kind, got %v", err)
	}
	if store.puts != 0 {
		t.Fatal("storage should not be touched")
	}
}

func TestUploadSmallImageStoredAsIs(t *testing.T) {
	store := &fakeStore{}
	enq := &fakeEnqueuer{}
	svc := newTestService(store, enq)

	data := jpegBytes(t, 100, 100)
	result, err := svc.Upload(context.Background(), "s-1", "roof.jpg", "image/jpeg",
		int64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if store.puts != 1 || store.lastSize != len(data) {
		t.Fatalf("expected untouched store of %d bytes, got %d", len(data), store.lastSize)
	}
	if result.URL == "" || result.ID == "" {
		t.Fatalf("incomplete result: %+v", result)
	}
	if len(enq.calls) != 1 {
		t.Fatalf("expected one analysis enqueue, got %d", len(enq.calls))
	}
	if !storageKeyPattern.MatchString(store.lastName) {
		t.Fatalf("storage key %q does not match sessionId/timestamp.ext", store.lastName)
	}
}

func TestUploadLargeImageRecompressed(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeEnqueuer{})

	data := jpegBytes(t, 1500, 1500)
	if len(data) <= recompressThreshold {
		t.Fatalf("test image too small to exercise recompression: %d bytes", len(data))
	}

	result, err := svc.Upload(context.Background(), "s-1", "roof.png", "image/jpeg",
		int64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.Size >= int64(len(data)) {
		t.Fatalf("expected recompressed size below %d, got %d", len(data), result.Size)
	}
	if result.ContentType != "image/jpeg" {
		t.Fatalf("expected jpeg after recompression, got %s", result.ContentType)
	}
}

func TestUploadPDFSkipsAnalysis(t *testing.T) {
	store := &fakeStore{}
	enq := &fakeEnqueuer{}
	svc := newTestService(store, enq)

	body := "%PDF-1.4 fake"
	_, err := svc.Upload(context.Background(), "s-1", "claim.pdf", "application/pdf",
		int64(len(body)), strings.NewReader(body))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(enq.calls) != 0 {
		t.Fatalf("pdf should not be analyzed, got %d enqueues", len(enq.calls))
	}
}
