package embedding

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch means two embeddings of different dimensions were
// compared. This indicates backend or configuration drift between enroll time
// and verify time and must surface as an error, never as a low score.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// CosineSimilarity computes the cosine similarity of two embeddings.
// Both inputs are L2-normalized with a small epsilon guarding the zero
// vector; the result is their dot product, clamped to [-1, 1].
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("empty embedding")
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	similarity := dotProduct / ((math.Sqrt(normA) + normEpsilon) * (math.Sqrt(normB) + normEpsilon))

	// Clamp to [-1, 1] to handle floating point errors
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}

	return similarity, nil
}
