package llm

import (
	"fmt"
	"strings"

	"github.com/stylehaus/outfit-assistant/internal/model"
)

const stylistSystemPrompt = "You are a professional fashion stylist. Be concise and specific."

const compareImagesPrompt = `You will be given two images of clothing items.
Decide if they would work well together in an outfit.

The first image is the reference item. The second is a suggested match.

Return a JSON with:
- "match": true or false
- "confidence": a score from 0-100
- "reason": brief explanation (1-2 sentences)

Do not include the ` + "```json```" + ` tag.`

func describeImagePrompt(categories []string) string {
	return fmt.Sprintf(`Given an image of an item of clothing, analyze the item and generate a JSON output with the following fields: "items", "category", "gender", and "description".

Use your understanding of fashion trends, styles, and gender preferences to provide accurate and relevant suggestions for how to complete the outfit.

The items field should be a list of 3-5 items that would go well with the item in the picture. Each item should represent a title of an item of clothing that contains the style, color, and gender of the item.

The category needs to be chosen from this list: [%s].
The gender must be one of: [Men, Women, Boys, Girls, Unisex]
The description should be a brief description of the item in the image.

Do not include the `+"```json```"+` tag in the output.

Example Output: {"items": ["Fitted White Women's T-shirt", "White Canvas Sneakers", "Women's Black Skinny Jeans"], "category": "Jackets", "gender": "Women", "description": "A stylish black leather jacket with silver zippers"}`,
		strings.Join(categories, ", "))
}

func proposeOutfitPrompt(event string, gender model.Gender, stylePreferences string) string {
	style := stylePreferences
	if style == "" {
		style = "classic"
	}
	return fmt.Sprintf(`Create outfit for: %s
Gender: %s
Style: %s

Return JSON (no `+"```json```"+` tag):
{"outfit_items": ["item1", "item2", "item3"], "style_tips": ["tip1", "tip2"], "color_palette": "colors", "formality_level": "level"}

Keep outfit_items to exactly 3 items. Be specific with colors.`, event, gender, style)
}
