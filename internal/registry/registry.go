// Package registry owns per-user face embedding storage. Each user has at
// most one FaceRecord; enrollment replaces it in place.
package registry

import (
	"context"
	"errors"
	"time"
)

// ErrNotEnrolled means no face record exists for the user.
var ErrNotEnrolled = errors.New("no face enrolled")

// FaceRecord is the single stored reference embedding for a user.
type FaceRecord struct {
	UserID    string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a keyed face record store. Implementations must support safe
// concurrent use; Upsert must be atomic with respect to concurrent upserts
// and fetches for the same user (last writer wins, no partial record ever
// observable).
type Store interface {
	// Upsert stores or replaces the face record for the user.
	// Idempotent under repeated identical input.
	Upsert(ctx context.Context, userID string, embedding []float32) error
	// Fetch returns the stored embedding, or ErrNotEnrolled.
	Fetch(ctx context.Context, userID string) ([]float32, error)
	// Enrolled reports whether a record exists for the user.
	Enrolled(ctx context.Context, userID string) (bool, error)
}
