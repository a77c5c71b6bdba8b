package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stylehaus/outfit-assistant/internal/common"
	"github.com/stylehaus/outfit-assistant/internal/model"
)

// outfitItemCount is the fixed size of an event outfit.
const outfitItemCount = 3

// cleanMarkdownWrapper strips a ```json ... ``` fence the model sometimes
// adds despite being told not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// parseAnalysis parses the image-description response. This path is strict:
// any malformed output surfaces as common.ErrMalformedResponse.
func parseAnalysis(content string) (model.Analysis, error) {
	var raw struct {
		Category    string   `json:"category"`
		Gender      string   `json:"gender"`
		Description string   `json:"description"`
		Items       []string `json:"items"`
	}

	content = cleanMarkdownWrapper(content)
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return model.Analysis{}, fmt.Errorf("%w: image analysis: %v", common.ErrMalformedResponse, err)
	}
	if len(raw.Items) == 0 {
		return model.Analysis{}, fmt.Errorf("%w: image analysis contains no item suggestions", common.ErrMalformedResponse)
	}

	gender, ok := model.ParseGender(raw.Gender)
	if !ok {
		gender = model.GenderUnisex
	}

	return model.Analysis{
		Items:       raw.Items,
		Category:    raw.Category,
		Gender:      gender,
		Description: raw.Description,
	}, nil
}

// parseOutfit parses the event-outfit response and normalizes the item list
// to exactly three entries.
func parseOutfit(content string) (model.EventOutfit, error) {
	var raw struct {
		ColorPalette   string   `json:"color_palette"`
		FormalityLevel string   `json:"formality_level"`
		OutfitItems    []string `json:"outfit_items"`
		StyleTips      []string `json:"style_tips"`
	}

	content = cleanMarkdownWrapper(content)
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return model.EventOutfit{}, fmt.Errorf("%w: event outfit: %v", common.ErrMalformedResponse, err)
	}
	if len(raw.OutfitItems) == 0 {
		return model.EventOutfit{}, fmt.Errorf("%w: event outfit contains no items", common.ErrMalformedResponse)
	}

	return model.EventOutfit{
		OutfitItems:    normalizeOutfitItems(raw.OutfitItems),
		StyleTips:      raw.StyleTips,
		ColorPalette:   raw.ColorPalette,
		FormalityLevel: raw.FormalityLevel,
	}, nil
}

// parseComparison parses the match-verification response.
func parseComparison(content string) (model.Comparison, error) {
	var raw struct {
		Reason     string `json:"reason"`
		Confidence int    `json:"confidence"`
		Match      bool   `json:"match"`
	}

	content = cleanMarkdownWrapper(content)
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return model.Comparison{}, fmt.Errorf("%w: comparison: %v", common.ErrMalformedResponse, err)
	}

	if raw.Confidence < 0 {
		raw.Confidence = 0
	} else if raw.Confidence > 100 {
		raw.Confidence = 100
	}

	return model.Comparison{
		Match:      raw.Match,
		Confidence: raw.Confidence,
		Reason:     raw.Reason,
	}, nil
}

// normalizeOutfitItems forces the item list to exactly outfitItemCount
// entries: longer lists are truncated, shorter ones padded from the fixed
// fallback outfit.
func normalizeOutfitItems(items []string) []string {
	if len(items) >= outfitItemCount {
		return items[:outfitItemCount]
	}

	normalized := make([]string, 0, outfitItemCount)
	normalized = append(normalized, items...)
	for _, filler := range fallbackOutfitItems {
		if len(normalized) == outfitItemCount {
			break
		}
		normalized = append(normalized, filler)
	}
	return normalized
}

var fallbackOutfitItems = []string{"Black Dress", "Gold Heels", "Pearl Clutch"}

// fallbackOutfit is the fixed outfit served when the model's event-outfit
// response cannot be parsed under the lenient policy.
func fallbackOutfit() model.EventOutfit {
	return model.EventOutfit{
		OutfitItems:    append([]string(nil), fallbackOutfitItems...),
		StyleTips:      []string{"Keep accessories minimal", "Choose comfortable shoes"},
		ColorPalette:   "Black and Gold",
		FormalityLevel: "formal",
	}
}

// FallbackComparison is the optimistic verdict the verification pipeline
// applies when the comparison response cannot be parsed under the lenient
// policy.
func FallbackComparison() model.Comparison {
	return model.Comparison{
		Match:      true,
		Confidence: 70,
		Reason:     "Style compatibility detected",
	}
}
