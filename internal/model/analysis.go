package model

// Analysis is the structured description the vision model produces for an
// uploaded clothing image: complementary item suggestions plus the item's
// own category, gender and description.
type Analysis struct {
	Category    string   `json:"category"`
	Gender      Gender   `json:"gender"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

// Comparison is the vision model's verdict on whether two clothing items
// work together in an outfit.
type Comparison struct {
	Reason     string `json:"reason"`
	Confidence int    `json:"confidence"`
	Match      bool   `json:"match"`
}

// VerifiedMatch is a catalog match annotated with the guardrail's visual
// compatibility verdict. The match_* fields are pointers so that candidates
// whose image could not be checked serialize without them rather than with
// zero values.
type VerifiedMatch struct {
	Verified   *bool   `json:"match_verified,omitempty"`
	Confidence *int    `json:"match_confidence,omitempty"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Gender     Gender  `json:"gender"`
	MatchedFor string  `json:"matched_for"`
	Reason     string  `json:"match_reason,omitempty"`
	ImagePath  string  `json:"image_path"`
	Score      float64 `json:"similarity_score"`
	ID         int     `json:"id"`
}

// InventoryMatch is a catalog item matched against one recommended outfit
// piece in the event flow.
type InventoryMatch struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	RecommendedAs string  `json:"recommended_as"`
	ImagePath     string  `json:"image_path"`
	Similarity    float64 `json:"similarity"`
	ID            int     `json:"id"`
}

// EventOutfit is a complete outfit recommendation for an occasion.
// OutfitItems always holds exactly three entries.
type EventOutfit struct {
	ColorPalette     string           `json:"color_palette"`
	FormalityLevel   string           `json:"formality_level"`
	OutfitItems      []string         `json:"outfit_items"`
	StyleTips        []string         `json:"style_tips"`
	MatchedInventory []InventoryMatch `json:"matched_inventory"`
}

// SearchResult is one hit from the semantic search endpoint.
type SearchResult struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Gender     Gender  `json:"gender"`
	ImagePath  string  `json:"image_path"`
	Similarity float64 `json:"similarity"`
	ID         int     `json:"id"`
}

// SampleItem is the embedding-free projection of a catalog item used in the
// inventory summary.
type SampleItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Gender   Gender `json:"gender"`
	ID       int    `json:"id"`
}

// InventorySummary aggregates the catalog for the dashboard.
type InventorySummary struct {
	Categories  map[string]int `json:"categories"`
	Genders     map[string]int `json:"genders"`
	SampleItems []SampleItem   `json:"sample_items"`
	TotalItems  int            `json:"total_items"`
}
