// Package model defines the core domain types shared across the application.
package model

import "strings"

// Gender is the target gender of a catalog item.
type Gender string

const (
	// GenderMen represents items for men.
	GenderMen Gender = "Men"
	// GenderWomen represents items for women.
	GenderWomen Gender = "Women"
	// GenderBoys represents items for boys.
	GenderBoys Gender = "Boys"
	// GenderGirls represents items for girls.
	GenderGirls Gender = "Girls"
	// GenderUnisex represents items suitable for anyone.
	GenderUnisex Gender = "Unisex"
)

// ParseGender normalizes a raw gender string into one of the known values.
// The second return value reports whether the input was recognized.
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "men", "male", "man":
		return GenderMen, true
	case "women", "female", "woman":
		return GenderWomen, true
	case "boys", "boy":
		return GenderBoys, true
	case "girls", "girl":
		return GenderGirls, true
	case "unisex":
		return GenderUnisex, true
	default:
		return "", false
	}
}

// CatalogItem is a single clothing item from the pre-embedded catalog.
// Items are immutable after load; the embedding is internal state and is
// never serialized into API responses.
type CatalogItem struct {
	Name      string
	Category  string // article type, e.g. "Tshirts", "Casual Shoes"
	Gender    Gender
	Embedding []float64
	ID        int
}

// Match pairs a catalog item with the similarity score it earned against
// one query description. Ephemeral, produced per request.
type Match struct {
	Item  *CatalogItem
	Query string
	Score float64
}
