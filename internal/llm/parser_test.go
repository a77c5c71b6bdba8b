package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylehaus/outfit-assistant/internal/common"
	"github.com/stylehaus/outfit-assistant/internal/model"
)

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `{"match": true}`,
			want:  `{"match": true}`,
		},
		{
			name:  "json fence stripped",
			input: "```json\n{\"match\": true}\n```",
			want:  `{"match": true}`,
		},
		{
			name:  "bare fence stripped",
			input: "```\n{\"match\": true}\n```",
			want:  `{"match": true}`,
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  {\"match\": true}  ",
			want:  `{"match": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownWrapper(tt.input))
		})
	}
}

func TestParseAnalysis(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		content := `{"items": ["White Sneakers", "Black Skinny Jeans"], "category": "Jackets", "gender": "Women", "description": "A black leather jacket"}`
		analysis, err := parseAnalysis(content)
		require.NoError(t, err)
		assert.Equal(t, []string{"White Sneakers", "Black Skinny Jeans"}, analysis.Items)
		assert.Equal(t, "Jackets", analysis.Category)
		assert.Equal(t, model.GenderWomen, analysis.Gender)
		assert.Equal(t, "A black leather jacket", analysis.Description)
	})

	t.Run("unknown gender defaults to unisex", func(t *testing.T) {
		content := `{"items": ["White Sneakers"], "category": "Jackets", "gender": "anything", "description": "x"}`
		analysis, err := parseAnalysis(content)
		require.NoError(t, err)
		assert.Equal(t, model.GenderUnisex, analysis.Gender)
	})

	t.Run("invalid JSON propagates as malformed response", func(t *testing.T) {
		_, err := parseAnalysis("I'm sorry, I can't help with that.")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrMalformedResponse)
	})

	t.Run("empty item list is malformed", func(t *testing.T) {
		_, err := parseAnalysis(`{"items": [], "category": "Jackets", "gender": "Women", "description": "x"}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrMalformedResponse)
	})
}

func TestParseOutfit(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		content := `{"outfit_items": ["Navy Suit", "White Shirt", "Brown Oxfords"], "style_tips": ["Press the shirt"], "color_palette": "Navy and Brown", "formality_level": "formal"}`
		outfit, err := parseOutfit(content)
		require.NoError(t, err)
		assert.Equal(t, []string{"Navy Suit", "White Shirt", "Brown Oxfords"}, outfit.OutfitItems)
		assert.Equal(t, "Navy and Brown", outfit.ColorPalette)
	})

	t.Run("overly long item list is truncated to three", func(t *testing.T) {
		content := `{"outfit_items": ["a", "b", "c", "d"], "style_tips": [], "color_palette": "", "formality_level": ""}`
		outfit, err := parseOutfit(content)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, outfit.OutfitItems)
	})

	t.Run("short item list is padded to three", func(t *testing.T) {
		content := `{"outfit_items": ["Red Dress"], "style_tips": [], "color_palette": "", "formality_level": ""}`
		outfit, err := parseOutfit(content)
		require.NoError(t, err)
		require.Len(t, outfit.OutfitItems, 3)
		assert.Equal(t, "Red Dress", outfit.OutfitItems[0])
	})

	t.Run("invalid JSON is malformed", func(t *testing.T) {
		_, err := parseOutfit("no json here")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrMalformedResponse)
	})
}

func TestParseComparison(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		got, err := parseComparison(`{"match": true, "confidence": 88, "reason": "Matching palettes"}`)
		require.NoError(t, err)
		assert.True(t, got.Match)
		assert.Equal(t, 88, got.Confidence)
		assert.Equal(t, "Matching palettes", got.Reason)
	})

	t.Run("confidence clamped to range", func(t *testing.T) {
		got, err := parseComparison(`{"match": true, "confidence": 140, "reason": ""}`)
		require.NoError(t, err)
		assert.Equal(t, 100, got.Confidence)

		got, err = parseComparison(`{"match": false, "confidence": -5, "reason": ""}`)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Confidence)
	})

	t.Run("invalid JSON is malformed", func(t *testing.T) {
		_, err := parseComparison("probably a match?")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrMalformedResponse)
	})
}

func TestFallbacks(t *testing.T) {
	t.Run("fallback outfit is the documented fixed default", func(t *testing.T) {
		outfit := fallbackOutfit()
		assert.Equal(t, []string{"Black Dress", "Gold Heels", "Pearl Clutch"}, outfit.OutfitItems)
		assert.Equal(t, "Black and Gold", outfit.ColorPalette)
		assert.Equal(t, "formal", outfit.FormalityLevel)
	})

	t.Run("fallback comparison is optimistic", func(t *testing.T) {
		got := FallbackComparison()
		assert.True(t, got.Match)
		assert.Equal(t, 70, got.Confidence)
		assert.Equal(t, "Style compatibility detected", got.Reason)
	})
}
