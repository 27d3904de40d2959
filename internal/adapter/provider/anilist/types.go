package anilist

import "github.com/anitrack/anitrack-backend/internal/domain"

// Wire types mirror the GraphQL response shape.

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   gqlData    `json:"data"`
	Errors []gqlError `json:"errors"`
}

type gqlData struct {
	Page *apiPage `json:"Page"`
}

type apiPage struct {
	Media []apiMedia `json:"media"`
}

type apiMedia struct {
	ID    int `json:"id"`
	Title struct {
		English string `json:"english"`
		Romaji  string `json:"romaji"`
	} `json:"title"`
	CoverImage struct {
		Large      string `json:"large"`
		ExtraLarge string `json:"extraLarge"`
	} `json:"coverImage"`
	AverageScore *int     `json:"averageScore"`
	Genres       []string `json:"genres"`
}

func mapMedia(m apiMedia) domain.AnimeSummary {
	return domain.AnimeSummary{
		ID: m.ID,
		Title: domain.AnimeTitle{
			English: m.Title.English,
			Romaji:  m.Title.Romaji,
		},
		CoverImage: domain.CoverImage{
			Large:      m.CoverImage.Large,
			ExtraLarge: m.CoverImage.ExtraLarge,
		},
		AverageScore: m.AverageScore,
		Genres:       m.Genres,
	}
}

func mapMediaList(ms []apiMedia) []domain.AnimeSummary {
	out := make([]domain.AnimeSummary, 0, len(ms))
	for _, m := range ms {
		out = append(out, mapMedia(m))
	}
	return out
}
