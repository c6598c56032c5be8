package news

import "strings"

// categorySynonyms maps upstream labels that aren't categories of our
// own onto the fallback bucket.
var categorySynonyms = map[string]Category{
	"health":    CategoryGeneral,
	"lifestyle": CategoryGeneral,
	"top":       CategoryGeneral,
	"breaking":  CategoryGeneral,
}

// categoryKeywords drives the scoring fallback. CategoryGeneral has no
// list: it is what zero matches fall back to.
var categoryKeywords = map[Category][]string{
	CategoryWorld: {
		"united nations", "global", "diplomat", "embassy", "border",
		"treaty", "refugee", "foreign minister", "summit", "ceasefire",
		"sanctions", "nato",
	},
	CategoryPolitics: {
		"election", "senate", "parliament", "congress", "minister",
		"president", "policy", "campaign", "legislation", "government",
		"vote", "opposition",
	},
	CategorySports: {
		"cricket", "football", "nba", "tennis", "olympic", "tournament",
		"championship", "coach", "league", "match", "stadium", "world cup",
	},
	CategoryTechnology: {
		"software", "startup", "smartphone", "artificial intelligence",
		"google", "apple", "microsoft", "cybersecurity", "chip", "robot",
		"gadget", "silicon valley", "data center",
	},
	CategoryBusiness: {
		"market", "stocks", "economy", "revenue", "earnings", "merger",
		"trade", "inflation", "investor", "profit", "shares", "ipo",
		"central bank",
	},
	CategoryFintech: {
		"fintech", "cryptocurrency", "bitcoin", "blockchain",
		"digital payment", "neobank", "crypto", "wallet", "defi",
		"digital bank", "stablecoin", "payments platform",
	},
	CategoryEntertainment: {
		"movie", "film", "actor", "music", "celebrity", "box office",
		"netflix", "album", "trailer", "bollywood", "hollywood", "sitcom",
	},
	CategoryScience: {
		"research", "scientist", "nasa", "space", "climate", "study",
		"physics", "species", "telescope", "vaccine", "genome", "quantum",
	},
}

// keywordOrder fixes the iteration order for scoring so ties always
// resolve the same way.
var keywordOrder = []Category{
	CategoryWorld,
	CategoryPolitics,
	CategorySports,
	CategoryTechnology,
	CategoryBusiness,
	CategoryFintech,
	CategoryEntertainment,
	CategoryScience,
}

// Classify maps an article onto the category set. A valid hint wins
// outright; otherwise keyword frequency decides, and zero matches fall
// back to the general bucket. Total and deterministic.
func Classify(title, content, hint string) Category {
	if hint != "" {
		normalized := strings.ToLower(strings.TrimSpace(hint))
		if c, ok := ParseCategory(normalized); ok {
			return c
		}
		if c, ok := categorySynonyms[normalized]; ok {
			return c
		}
	}

	text := strings.ToLower(title + " " + content)

	best := CategoryGeneral
	bestScore := 0
	for _, category := range keywordOrder {
		score := 0
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(text, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = category
			bestScore = score
		}
	}

	return best
}
