package engine

import (
	"context"
	"fmt"

	"github.com/stylehaus/outfit-assistant/internal/catalog"
	"github.com/stylehaus/outfit-assistant/internal/model"
	"github.com/stylehaus/outfit-assistant/internal/similarity"
)

// matchDescriptions embeds all descriptions in one batched call and finds
// the top-scoring catalog items for each. Results are concatenated in
// description order; deduplication is the caller's concern.
func (e *Engine) matchDescriptions(ctx context.Context, view catalog.View, descriptions []string, threshold float64, topK int) ([]model.Match, error) {
	if len(descriptions) == 0 || view.Len() == 0 {
		return nil, nil
	}

	vectors, err := e.embedder.Embed(ctx, descriptions)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(descriptions) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d descriptions", len(vectors), len(descriptions))
	}

	items := view.Items()
	embeddings := view.Embeddings()

	var matches []model.Match
	for i, description := range descriptions {
		hits, err := similarity.FindSimilar(vectors[i], embeddings, threshold, topK)
		if err != nil {
			return nil, fmt.Errorf("similarity search for %q: %w", description, err)
		}
		for _, hit := range hits {
			matches = append(matches, model.Match{
				Item:  items[hit.Index],
				Query: description,
				Score: hit.Score,
			})
		}
	}

	return matches, nil
}

// dedupeByID keeps the first match for each catalog id, preserving order.
func dedupeByID(matches []model.Match) []model.Match {
	seen := make(map[int]struct{}, len(matches))
	deduped := make([]model.Match, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Item.ID]; ok {
			continue
		}
		seen[m.Item.ID] = struct{}{}
		deduped = append(deduped, m)
	}
	return deduped
}
