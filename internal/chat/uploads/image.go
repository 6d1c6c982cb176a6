package uploads

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"time"
)

const (
	// recompressThreshold is the size above which images are re-encoded
	// before storage.
	recompressThreshold = 1 << 20

	maxDimension = 1200
	jpegQuality  = 80
)

// recompressImage decodes the image, scales it down so neither side exceeds
// maxDimension, and re-encodes it as JPEG. Formats the decoder cannot handle
// are returned unchanged; a photo we cannot shrink is still worth keeping.
func recompressImage(data []byte) ([]byte, string) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, ""
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > maxDimension || height > maxDimension {
		img = scaleDown(img, maxDimension)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return data, ""
	}
	if buf.Len() >= len(data) {
		// Re-encoding made it bigger, keep the original.
		return data, ""
	}
	return buf.Bytes(), "image/jpeg"
}

// scaleDown resizes with nearest-neighbour sampling, which is plenty for
// damage photos headed to an analysis pipeline.
func scaleDown(img image.Image, limit int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	scale := float64(limit) / float64(width)
	if height > width {
		scale = float64(limit) / float64(height)
	}
	newW := int(float64(width) * scale)
	newH := int(float64(height) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	for y := 0; y < newH; y++ {
		srcY := bounds.Min.Y + y*height/newH
		for x := 0; x < newW; x++ {
			srcX := bounds.Min.X + x*width/newW
			dst.Set(x, y, img.At(srcX, srcY))
		}
	}
	return dst
}

// objectName builds the storage key for an upload, sessionId/timestamp.ext.
// Nanosecond precision keeps rapid uploads from the same session distinct.
func objectName(sessionID string, now time.Time, ext string) string {
	return fmt.Sprintf("%s/%d%s", sessionID, now.UnixNano(), ext)
}
