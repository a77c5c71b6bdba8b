// Package similarity implements cosine similarity search over in-memory
// embedding vectors.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/stylehaus/outfit-assistant/internal/common"
)

// Hit is one candidate that passed the threshold, identified by its index in
// the candidate slice.
type Hit struct {
	Score float64
	Index int
}

// Cosine computes the cosine similarity between two vectors of equal
// dimension. A zero-norm vector on either side yields 0 rather than NaN,
// which keeps such candidates below any meaningful threshold.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", common.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// FindSimilar scores every candidate against the query, drops scores below
// threshold, and returns at most topK hits sorted by score descending. Equal
// scores keep their original candidate order.
func FindSimilar(query []float64, candidates [][]float64, threshold float64, topK int) ([]Hit, error) {
	if topK <= 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, len(candidates))
	for i, candidate := range candidates {
		score, err := Cosine(query, candidate)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		if score < threshold {
			continue
		}
		hits = append(hits, Hit{Index: i, Score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}

	return hits, nil
}
