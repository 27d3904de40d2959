package domain

import "net/url"

// AnimeTitle holds the catalog's title variants for a show.
// English is frequently absent for niche titles; Romaji is always present.
type AnimeTitle struct {
	English string
	Romaji  string
}

// CoverImage holds the catalog's cover art URLs.
type CoverImage struct {
	Large      string
	ExtraLarge string
}

// AnimeSummary is the fixed projection of a catalog record used everywhere
// in the app. It is read-only: fetched from the catalog, cached, never
// mutated locally.
type AnimeSummary struct {
	ID           int
	Title        AnimeTitle
	CoverImage   CoverImage
	AverageScore *int
	Genres       []string
}

// DisplayTitle returns the English title, falling back to Romaji.
func (a AnimeSummary) DisplayTitle() string {
	if a.Title.English != "" {
		return a.Title.English
	}
	return a.Title.Romaji
}

// WatchURL derives an external streaming search link from the display title.
// Pure string transform, no network involved.
func (a AnimeSummary) WatchURL() string {
	return "https://hianime.to/search?keyword=" + url.QueryEscape(a.DisplayTitle())
}

// BestCover returns the highest-resolution cover available.
func (a AnimeSummary) BestCover() string {
	if a.CoverImage.ExtraLarge != "" {
		return a.CoverImage.ExtraLarge
	}
	return a.CoverImage.Large
}
