// Package embedding converts face photos into fixed-length float vectors and
// scores their similarity. Two extraction backends share one contract: a
// remote neural face-embedding server and a deterministic pixel fallback.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrInvalidImage means the input bytes could not be decoded as an image.
	ErrInvalidImage = errors.New("invalid image")

	// ErrNoFaceDetected means the image decoded fine but the backend found no usable face.
	ErrNoFaceDetected = errors.New("no face detected")
)

// Extractor computes a face embedding from raw image bytes.
// Extraction is a potentially expensive, blocking operation; callers on a
// request path should go through Pool rather than calling a backend directly.
type Extractor interface {
	// Extract returns the embedding for the primary face in the image.
	// Fails with ErrInvalidImage or ErrNoFaceDetected.
	Extract(ctx context.Context, image []byte) ([]float32, error)
	// Dim returns the fixed embedding dimension of this backend.
	// Embeddings produced by backends with different dimensions must never be compared.
	Dim() int
	// Name identifies the backend for logging.
	Name() string
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
