package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and DB-less deployments.
// Records are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*FaceRecord
}

// NewMemoryStore creates an empty in-memory face record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*FaceRecord),
	}
}

// Upsert stores or replaces the face record for the user.
func (s *MemoryStore) Upsert(ctx context.Context, userID string, embedding []float32) error {
	// Build the full record before taking the lock so readers only ever
	// observe a complete embedding.
	stored := make([]float32, len(embedding))
	copy(stored, embedding)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[userID]; ok {
		s.records[userID] = &FaceRecord{
			UserID:    userID,
			Embedding: stored,
			CreatedAt: existing.CreatedAt,
			UpdatedAt: now,
		}
		return nil
	}
	s.records[userID] = &FaceRecord{
		UserID:    userID,
		Embedding: stored,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// Fetch returns the stored embedding, or ErrNotEnrolled.
func (s *MemoryStore) Fetch(ctx context.Context, userID string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[userID]
	if !ok {
		return nil, ErrNotEnrolled
	}
	embedding := make([]float32, len(record.Embedding))
	copy(embedding, record.Embedding)
	return embedding, nil
}

// Enrolled reports whether a record exists for the user.
func (s *MemoryStore) Enrolled(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[userID]
	return ok, nil
}

// Count returns the number of enrolled users.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
