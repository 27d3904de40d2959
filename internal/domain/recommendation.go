package domain

// RecommendationCategory is one named section of recommendations. Category
// names come from the recommendation service as free-form strings ("Hidden
// Gems", "Trending Now", ...); the set is open and can change between
// refreshes without correlation to the previous one.
type RecommendationCategory struct {
	Name  string
	Anime []AnimeSummary
}

// RecommendationSet is a full, ordered set of categorized recommendations.
// A refresh always replaces the whole set; categories are never merged
// incrementally.
type RecommendationSet struct {
	Categories []RecommendationCategory
}

// IsEmpty reports whether the set carries no recommendations at all.
func (s RecommendationSet) IsEmpty() bool {
	for _, c := range s.Categories {
		if len(c.Anime) > 0 {
			return false
		}
	}
	return true
}

// TotalAnime returns the number of recommended entries across all categories.
func (s RecommendationSet) TotalAnime() int {
	n := 0
	for _, c := range s.Categories {
		n += len(c.Anime)
	}
	return n
}
