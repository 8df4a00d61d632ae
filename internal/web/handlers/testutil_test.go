package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"faceauth/internal/biometric"
	"faceauth/internal/embedding"
	"faceauth/internal/registry"
	"faceauth/internal/web/middleware"
)

func newTestService(t *testing.T) *biometric.Service {
	t.Helper()
	return biometric.NewService(embedding.NewPixelExtractor(), registry.NewMemoryStore(), 0.5)
}

// halfPNG renders a 32x32 image with one half white and the other
// black. Two opposite halves produce near-orthogonal pixel
// embeddings, which is handy for forcing a non-match.
func halfPNG(t *testing.T, topWhite bool) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		c := color.RGBA{A: 255}
		if (y < 16) == topWhite {
			c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

// multipartImageRequest builds an authenticated multipart upload
// carrying the image in the "file" field.
func multipartImageRequest(t *testing.T, target, userID string, image []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "face.png")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(image); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req.WithContext(middleware.SetIdentityInContext(req.Context(), userID))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return payload
}
