package biometric

import (
	"context"
	"errors"
	"testing"

	"faceauth/internal/embedding"
	"faceauth/internal/registry"
)

// stubExtractor maps the first byte of the image to a fixed vector.
type stubExtractor struct {
	vectors map[byte][]float32
	err     error
}

func (s *stubExtractor) Extract(_ context.Context, image []byte) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vec, ok := s.vectors[image[0]]
	if !ok {
		return nil, embedding.ErrNoFaceDetected
	}
	return vec, nil
}

func (s *stubExtractor) Dim() int     { return 3 }
func (s *stubExtractor) Name() string { return "stub" }

func newTestService(t *testing.T, threshold float64) (*Service, *stubExtractor) {
	t.Helper()
	extractor := &stubExtractor{
		vectors: map[byte][]float32{
			'a': {1, 0, 0},
			'b': {0.8, 0.6, 0},
			'c': {-1, 0, 0},
		},
	}
	return NewService(extractor, registry.NewMemoryStore(), threshold), extractor
}

func TestService_VerifyUnenrolled(t *testing.T) {
	svc, _ := newTestService(t, 0.5)

	_, err := svc.Verify(context.Background(), "user1", []byte("a"))
	if !errors.Is(err, registry.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestService_EnrollAndVerify(t *testing.T) {
	svc, _ := newTestService(t, 0.5)
	ctx := context.Background()

	if err := svc.Enroll(ctx, "user1", []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decision, err := svc.Verify(ctx, "user1", []byte("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Match {
		t.Errorf("expected a match against the same image, score %v", decision.Score)
	}
	if decision.Score < 0.99 {
		t.Errorf("expected near-perfect self-similarity, got %v", decision.Score)
	}

	decision, err = svc.Verify(ctx, "user1", []byte("c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Match {
		t.Errorf("expected no match against an opposite embedding, score %v", decision.Score)
	}
}

func TestService_ThresholdIsInclusive(t *testing.T) {
	ctx := context.Background()

	// Compute the exact score the service will see, then pin the
	// threshold right at it and just above it.
	score, err := embedding.CosineSimilarity([]float32{1, 0, 0}, []float32{0.8, 0.6, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	at, _ := newTestService(t, score)
	if err := at.Enroll(ctx, "user1", []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decision, err := at.Verify(ctx, "user1", []byte("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Match {
		t.Errorf("score equal to the threshold must match, score %v", decision.Score)
	}

	above, _ := newTestService(t, score+1e-9)
	if err := above.Enroll(ctx, "user1", []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decision, err = above.Verify(ctx, "user1", []byte("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Match {
		t.Errorf("score below the threshold must not match, score %v", decision.Score)
	}
}

func TestService_ReEnrollReplacesReference(t *testing.T) {
	svc, _ := newTestService(t, 0.5)
	ctx := context.Background()

	if err := svc.Enroll(ctx, "user1", []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Enroll(ctx, "user1", []byte("c")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decision, err := svc.Verify(ctx, "user1", []byte("c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Match {
		t.Errorf("expected a match against the latest enrollment, score %v", decision.Score)
	}

	decision, err = svc.Verify(ctx, "user1", []byte("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Match {
		t.Errorf("expected the first enrollment to be replaced, score %v", decision.Score)
	}
}

func TestService_DimensionMismatch(t *testing.T) {
	svc, extractor := newTestService(t, 0.5)
	ctx := context.Background()

	if err := svc.Enroll(ctx, "user1", []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulates a backend swap after enrollment.
	extractor.vectors['a'] = []float32{1, 0, 0, 0}

	_, err := svc.Verify(ctx, "user1", []byte("a"))
	if !errors.Is(err, embedding.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestService_ExtractionErrorPropagates(t *testing.T) {
	svc, _ := newTestService(t, 0.5)

	_, err := svc.Verify(context.Background(), "user1", []byte("z"))
	if !errors.Is(err, embedding.ErrNoFaceDetected) {
		t.Fatalf("expected ErrNoFaceDetected, got %v", err)
	}
}

func TestService_DefaultThreshold(t *testing.T) {
	svc, _ := newTestService(t, 0)
	if svc.Threshold() != DefaultMatchThreshold {
		t.Errorf("expected default threshold %v, got %v", DefaultMatchThreshold, svc.Threshold())
	}
}

func TestService_Enrolled(t *testing.T) {
	svc, _ := newTestService(t, 0.5)
	ctx := context.Background()

	enrolled, err := svc.Enrolled(ctx, "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enrolled {
		t.Error("expected not enrolled before enrollment")
	}

	if err := svc.Enroll(ctx, "user1", []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	enrolled, err = svc.Enrolled(ctx, "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !enrolled {
		t.Error("expected enrolled after enrollment")
	}
}
