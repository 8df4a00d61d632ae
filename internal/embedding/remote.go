package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
)

const defaultRemoteURL = "http://localhost:8000"

// RemoteExtractor is the neural backend: it sends the image to a face
// embedding server which detects faces, crops the primary region and runs it
// through a pretrained embedding network. The returned vector is raw model
// output, not normalized here.
type RemoteExtractor struct {
	baseURL string
	dim     int
	client  *http.Client
}

// NewRemoteExtractor creates a client for the face embedding server.
// dim is the embedding dimension the server's model is expected to produce;
// responses with a different dimension are rejected as a configuration error.
func NewRemoteExtractor(baseURL string, dim int) *RemoteExtractor {
	if baseURL == "" {
		baseURL = defaultRemoteURL
	}
	return &RemoteExtractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dim:     dim,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *RemoteExtractor) Name() string { return "neural" }

func (e *RemoteExtractor) Dim() int { return e.dim }

// faceDetection represents a single detected face in the server response
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// faceResponse represents the response from the face embedding endpoint
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// Extract posts the image to the embedding server and returns the embedding
// of the highest-confidence face.
func (e *RemoteExtractor) Extract(ctx context.Context, data []byte) ([]float32, error) {
	// Reject undecodable input locally so both backends agree on what
	// ErrInvalidImage means, without a round trip.
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	body, err := e.postMultipartImage(ctx, "/embed/face", data)
	if err != nil {
		return nil, err
	}

	var resp faceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.FacesCount == 0 || len(resp.Faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	best := resp.Faces[0]
	for _, face := range resp.Faces[1:] {
		if face.DetScore > best.DetScore {
			best = face
		}
	}

	if len(best.Embedding) == 0 {
		return nil, fmt.Errorf("embedding server returned empty embedding")
	}
	if len(best.Embedding) != e.dim {
		return nil, fmt.Errorf("%w: embedding server returned dim %d, configured for %d",
			ErrDimensionMismatch, len(best.Embedding), e.dim)
	}

	return best.Embedding, nil
}

// postMultipartImage constructs a multipart form with the image data and posts
// it to the given endpoint. The part carries an explicit Content-Type header
// based on magic byte detection.
func (e *RemoteExtractor) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
