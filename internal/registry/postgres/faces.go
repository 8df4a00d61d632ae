package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"faceauth/internal/registry"
)

// FaceStore persists one reference embedding per user in PostgreSQL.
// It implements registry.Store.
type FaceStore struct {
	pool *Pool
}

func NewFaceStore(pool *Pool) *FaceStore {
	return &FaceStore{pool: pool}
}

// Upsert stores the embedding for a user, replacing any previous one.
// The single-statement upsert keeps concurrent enrollments atomic.
func (s *FaceStore) Upsert(ctx context.Context, userID string, embedding []float32) error {
	query := `
		INSERT INTO face_records (user_id, embedding, dim, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			dim = EXCLUDED.dim,
			updated_at = NOW()
	`

	if _, err := s.pool.Exec(ctx, query, userID, registry.EncodeEmbedding(embedding), len(embedding)); err != nil {
		return fmt.Errorf("upsert face record: %w", err)
	}
	return nil
}

// Fetch returns the stored embedding for a user.
// Returns registry.ErrNotEnrolled when the user has no record.
func (s *FaceStore) Fetch(ctx context.Context, userID string) ([]float32, error) {
	var encoded []byte
	err := s.pool.QueryRow(ctx,
		"SELECT embedding FROM face_records WHERE user_id = $1", userID).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, registry.ErrNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("fetch face record: %w", err)
	}

	embedding, err := registry.DecodeEmbedding(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode face record for %q: %w", userID, err)
	}
	return embedding, nil
}

// Enrolled reports whether the user has a stored embedding.
func (s *FaceStore) Enrolled(ctx context.Context, userID string) (bool, error) {
	var enrolled bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM face_records WHERE user_id = $1)", userID).Scan(&enrolled)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return enrolled, nil
}

// Count returns the number of enrolled users.
func (s *FaceStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM face_records").Scan(&count); err != nil {
		return 0, fmt.Errorf("count face records: %w", err)
	}
	return count, nil
}
