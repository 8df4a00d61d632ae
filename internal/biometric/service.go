// Package biometric implements face enrollment and verification
// on top of an embedding extractor and a face registry.
package biometric

import (
	"context"
	"errors"
	"fmt"
	"log"

	"faceauth/internal/embedding"
	"faceauth/internal/registry"
)

// DefaultMatchThreshold is the minimum cosine similarity accepted as a match
// when no threshold is configured.
const DefaultMatchThreshold = 0.5

// Decision is the outcome of a verification attempt.
type Decision struct {
	Score float64 `json:"score"`
	Match bool    `json:"match"`
}

// Service binds extraction, storage and scoring into the
// enroll/verify operations exposed over HTTP and the CLI.
type Service struct {
	extractor embedding.Extractor
	store     registry.Store
	threshold float64
}

func NewService(extractor embedding.Extractor, store registry.Store, threshold float64) *Service {
	if threshold == 0 {
		threshold = DefaultMatchThreshold
	}
	return &Service{
		extractor: extractor,
		store:     store,
		threshold: threshold,
	}
}

// Enroll extracts an embedding from the reference image and stores it
// for the user, replacing any previous enrollment.
func (s *Service) Enroll(ctx context.Context, userID string, image []byte) error {
	emb, err := s.extractor.Extract(ctx, image)
	if err != nil {
		return fmt.Errorf("extracting reference embedding: %w", err)
	}

	if err := s.store.Upsert(ctx, userID, emb); err != nil {
		return fmt.Errorf("storing reference embedding: %w", err)
	}
	return nil
}

// Verify compares a probe image against the user's stored reference.
// A score exactly at the threshold counts as a match. Returns
// registry.ErrNotEnrolled when the user has no reference embedding.
func (s *Service) Verify(ctx context.Context, userID string, image []byte) (*Decision, error) {
	probe, err := s.extractor.Extract(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("extracting probe embedding: %w", err)
	}

	reference, err := s.store.Fetch(ctx, userID)
	if err != nil {
		return nil, err
	}

	score, err := embedding.CosineSimilarity(probe, reference)
	if err != nil {
		if errors.Is(err, embedding.ErrDimensionMismatch) {
			// Usually means the backend changed between enrollment and
			// verification. The user has to re-enroll.
			log.Printf("WARNING: dimension mismatch for user %s (backend %s): %v",
				userID, s.extractor.Name(), err)
		}
		return nil, err
	}

	return &Decision{
		Score: score,
		Match: score >= s.threshold,
	}, nil
}

// Enrolled reports whether the user has a stored reference embedding.
func (s *Service) Enrolled(ctx context.Context, userID string) (bool, error) {
	return s.store.Enrolled(ctx, userID)
}

// Threshold returns the configured match threshold.
func (s *Service) Threshold() float64 {
	return s.threshold
}
