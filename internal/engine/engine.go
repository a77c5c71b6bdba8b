// Package engine orchestrates the matching and verification pipelines that
// turn model output into catalog recommendations.
package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/stylehaus/outfit-assistant/internal/catalog"
	"github.com/stylehaus/outfit-assistant/internal/model"
	"github.com/stylehaus/outfit-assistant/internal/service"
)

// Config holds the matching thresholds and per-capability policies. The
// thresholds are capability-specific, not one global constant: free-form RAG
// matching demands a closer match than event styling.
type Config struct {
	ComparisonPolicy service.ParsePolicy
	RAGThreshold     float64
	RAGTopK          int
	EventThreshold   float64
	EventTopK        int
	SearchThreshold  float64
	SearchTopK       int
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		RAGThreshold:     0.6,
		RAGTopK:          2,
		EventThreshold:   0.4,
		EventTopK:        1,
		SearchThreshold:  0.4,
		SearchTopK:       10,
		ComparisonPolicy: service.ParseLenient,
	}
}

// Engine wires the catalog store, embedding client and vision client into
// the recommendation flows. All state is read-only after construction, so an
// Engine is safe for concurrent requests.
type Engine struct {
	catalog  *catalog.Store
	embedder service.Embedder
	vision   service.Vision
	logger   *slog.Logger
	cfg      Config
}

// New creates an engine with the default configuration.
func New(store *catalog.Store, embedder service.Embedder, vision service.Vision, logger *slog.Logger) *Engine {
	return NewWithConfig(store, embedder, vision, logger, DefaultConfig())
}

// NewWithConfig creates an engine with custom thresholds and policies.
func NewWithConfig(store *catalog.Store, embedder service.Embedder, vision service.Vision, logger *slog.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ComparisonPolicy == "" {
		cfg.ComparisonPolicy = service.ParseLenient
	}
	return &Engine{
		catalog:  store,
		embedder: embedder,
		vision:   vision,
		logger:   logger,
		cfg:      cfg,
	}
}

// AnalyzeResult is the response of the image-analysis flow.
type AnalyzeResult struct {
	UploadedImage      string                `json:"uploaded_image"`
	Analysis           model.Analysis        `json:"analysis"`
	MatchingItems      []model.VerifiedMatch `json:"matching_items"`
	TotalItemsSearched int                   `json:"total_items_searched"`
}

// AnalyzeImage runs the full generate-then-verify pipeline for an uploaded
// clothing image: describe it, retrieve complementary catalog items by
// embedding similarity, deduplicate, and verify each survivor visually.
func (e *Engine) AnalyzeImage(ctx context.Context, image []byte) (*AnalyzeResult, error) {
	categories, err := e.catalog.Categories()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	imageB64 := base64.StdEncoding.EncodeToString(image)

	analysis, err := e.vision.DescribeImage(ctx, imageB64, categories)
	if err != nil {
		return nil, err
	}

	all, err := e.catalog.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Search only items for the detected gender (plus unisex), and never
	// suggest an item of the same article type as the upload.
	view := all.
		ForGenders(analysis.Gender, model.GenderUnisex).
		ExcludeCategory(analysis.Category)

	matches, err := e.matchDescriptions(ctx, view, analysis.Items, e.cfg.RAGThreshold, e.cfg.RAGTopK)
	if err != nil {
		return nil, err
	}

	// Verification runs after deduplication so each catalog item costs at
	// most one comparison call.
	deduped := dedupeByID(matches)

	verified, err := e.verifyMatches(ctx, imageB64, deduped)
	if err != nil {
		return nil, err
	}

	e.logger.Info("image analysis complete",
		"suggestions", len(analysis.Items),
		"candidates", len(matches),
		"matches", len(verified),
		"searched", view.Len())

	return &AnalyzeResult{
		Analysis:           analysis,
		MatchingItems:      verified,
		TotalItemsSearched: view.Len(),
		UploadedImage:      "data:image/jpeg;base64," + imageB64,
	}, nil
}

// EventOutfit generates a three-piece outfit for an event and matches each
// piece against the inventory for the requested gender.
func (e *Engine) EventOutfit(ctx context.Context, event string, gender model.Gender, stylePreferences string) (*model.EventOutfit, error) {
	outfit, err := e.vision.ProposeOutfit(ctx, event, gender, stylePreferences)
	if err != nil {
		return nil, err
	}

	all, err := e.catalog.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	view := all.ForGenders(gender, model.GenderUnisex)

	matches, err := e.matchDescriptions(ctx, view, outfit.OutfitItems, e.cfg.EventThreshold, e.cfg.EventTopK)
	if err != nil {
		return nil, err
	}

	outfit.MatchedInventory = make([]model.InventoryMatch, 0, len(matches))
	for _, m := range matches {
		outfit.MatchedInventory = append(outfit.MatchedInventory, model.InventoryMatch{
			ID:            m.Item.ID,
			Name:          m.Item.Name,
			Category:      m.Item.Category,
			RecommendedAs: m.Query,
			Similarity:    m.Score,
			ImagePath:     imageRef(m.Item.ID),
		})
	}

	e.logger.Info("event outfit generated",
		"event", event,
		"gender", gender,
		"inventory_matches", len(outfit.MatchedInventory))

	return &outfit, nil
}

// Search runs semantic search over the catalog for a free-text query. The
// gender filter is optional; an empty value searches everything.
func (e *Engine) Search(ctx context.Context, query string, gender model.Gender) ([]model.SearchResult, error) {
	all, err := e.catalog.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	view := all
	if gender != "" {
		view = view.ForGenders(gender, model.GenderUnisex)
	}

	matches, err := e.matchDescriptions(ctx, view, []string{query}, e.cfg.SearchThreshold, e.cfg.SearchTopK)
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, model.SearchResult{
			ID:         m.Item.ID,
			Name:       m.Item.Name,
			Category:   m.Item.Category,
			Gender:     m.Item.Gender,
			Similarity: m.Score,
			ImagePath:  imageRef(m.Item.ID),
		})
	}

	return results, nil
}

// Inventory returns the catalog summary for the dashboard.
func (e *Engine) Inventory() (model.InventorySummary, error) {
	return e.catalog.Summary()
}

// imageRef builds the API path under which a catalog item's image is served.
func imageRef(id int) string {
	return fmt.Sprintf("/api/image/%d", id)
}
