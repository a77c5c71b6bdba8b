package engine

import (
	"context"
	"encoding/base64"
	"os"

	"github.com/stylehaus/outfit-assistant/internal/llm"
	"github.com/stylehaus/outfit-assistant/internal/model"
	"github.com/stylehaus/outfit-assistant/internal/service"
)

// verifyMatches runs the guardrail over deduplicated candidates: each one
// with a stored image gets a visual compatibility check against the
// reference. Candidates without an image pass through unverified; that is
// expected for part of the catalog, not an error.
func (e *Engine) verifyMatches(ctx context.Context, referenceB64 string, matches []model.Match) ([]model.VerifiedMatch, error) {
	verified := make([]model.VerifiedMatch, 0, len(matches))

	for _, m := range matches {
		vm := model.VerifiedMatch{
			ID:         m.Item.ID,
			Name:       m.Item.Name,
			Category:   m.Item.Category,
			Gender:     m.Item.Gender,
			MatchedFor: m.Query,
			Score:      m.Score,
			ImagePath:  imageRef(m.Item.ID),
		}

		path, ok := e.catalog.ImagePath(m.Item.ID)
		if !ok {
			verified = append(verified, vm)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			e.logger.Warn("Failed to read candidate image, skipping verification",
				"id", m.Item.ID,
				"path", path,
				"error", err)
			verified = append(verified, vm)
			continue
		}

		comparison, err := e.vision.CompareImages(ctx, referenceB64, base64.StdEncoding.EncodeToString(data))
		if err != nil {
			if e.cfg.ComparisonPolicy == service.ParseStrict {
				return nil, err
			}
			e.logger.Warn("Comparison failed, applying optimistic fallback",
				"id", m.Item.ID,
				"error", err)
			comparison = llm.FallbackComparison()
		}

		vm.Verified = &comparison.Match
		vm.Confidence = &comparison.Confidence
		vm.Reason = comparison.Reason
		verified = append(verified, vm)
	}

	return verified, nil
}
