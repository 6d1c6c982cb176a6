package uploads

import (
	"fmt"
	"strings"

	"roofchat_backend/platform/apperr"
)

// AllowedContentTypes is the upload allow-list. Photos of roof damage are the
// main use case; PDFs cover insurance paperwork.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/heic":      true,
	"application/pdf": true,
}

// ValidateContentType checks the declared MIME type against the allow-list.
func ValidateContentType(contentType string) error {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(normalized, ";"); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	if !AllowedContentTypes[normalized] {
		return apperr.Unsupported(fmt.Sprintf("file type %s is not allowed", contentType))
	}
	return nil
}

// ValidateFileSize rejects files over the configured limit.
func ValidateFileSize(size, maxSize int64) error {
	if size <= 0 {
		return apperr.Validation("file is empty")
	}
	if size > maxSize {
		return apperr.TooLarge(fmt.Sprintf("file size %d exceeds the %d byte limit", size, maxSize))
	}
	return nil
}

// IsImage reports whether the content type is an image, which decides both
// recompression and whether the analysis task is enqueued.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}
