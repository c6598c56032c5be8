package news

import (
	"strings"
	"time"
)

// Category is one of the fixed set of topical buckets every article
// ends up in. CategoryGeneral doubles as the fallback bucket for
// anything the classifier cannot place.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryWorld         Category = "world"
	CategoryPolitics      Category = "politics"
	CategorySports        Category = "sports"
	CategoryTechnology    Category = "technology"
	CategoryBusiness      Category = "business"
	CategoryFintech       Category = "fintech"
	CategoryEntertainment Category = "entertainment"
	CategoryScience       Category = "science"
)

// Categories lists every valid category. The order is significant:
// the classifier resolves keyword-score ties in favor of the earlier
// entry.
var Categories = []Category{
	CategoryGeneral,
	CategoryWorld,
	CategoryPolitics,
	CategorySports,
	CategoryTechnology,
	CategoryBusiness,
	CategoryFintech,
	CategoryEntertainment,
	CategoryScience,
}

// ParseCategory matches s against the category set, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return known, true
		}
	}
	return "", false
}

// RawArticle is what a source hands back before any cleaning or
// classification. Never persisted as-is.
type RawArticle struct {
	Title        string
	Description  string
	URL          string
	Source       string
	PublishedAt  time.Time
	ImageURL     string
	CategoryHint string
}

// Article is the normalized form produced by the source manager:
// markup-free text and a final category from the fixed set.
type Article struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Category    Category  `json:"category"`
	PublishedAt time.Time `json:"published_at"`
}
