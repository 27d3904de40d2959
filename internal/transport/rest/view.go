package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/anitrack/anitrack-backend/internal/domain"
	"github.com/anitrack/anitrack-backend/internal/service/tracker"
)

// Preview sizes for list endpoints. Clients pass ?all=true to expand.
const (
	listPreviewSize     = 24
	categoryPreviewSize = 12
)

// animeCard is the wire form of one anime tile.
type animeCard struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	CoverURL     string   `json:"coverUrl,omitempty"`
	AverageScore *int     `json:"averageScore,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	WatchURL     string   `json:"watchUrl"`
	UserRating   *int     `json:"userRating,omitempty"`
	InWatchlist  bool     `json:"inWatchlist"`
}

type ratedAnimeResponse struct {
	animeCard
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"ratedAt"`
}

type watchlistAnimeResponse struct {
	animeCard
	AddedAt time.Time `json:"addedAt"`
}

type categoryResponse struct {
	Name  string      `json:"name"`
	Anime []animeCard `json:"anime"`
	Total int         `json:"total"`
}

type dashboardResponse struct {
	Collection      []ratedAnimeResponse     `json:"collection"`
	Watchlist       []watchlistAnimeResponse `json:"watchlist"`
	Recommendations []categoryResponse       `json:"recommendations"`
}

// annotator supplies the per-user flags stamped onto every card.
type annotator interface {
	GetUserRating(userID uuid.UUID, animeID int) (int, bool)
	IsInWatchlist(userID uuid.UUID, animeID int) bool
}

func toCard(a domain.AnimeSummary) animeCard {
	return animeCard{
		ID:           a.ID,
		Title:        a.DisplayTitle(),
		CoverURL:     a.BestCover(),
		AverageScore: a.AverageScore,
		Genres:       a.Genres,
		WatchURL:     a.WatchURL(),
	}
}

// annotatedCard stamps the user's rating and watchlist flag onto a card.
func annotatedCard(a domain.AnimeSummary, userID uuid.UUID, ann annotator) animeCard {
	card := toCard(a)
	if score, ok := ann.GetUserRating(userID, a.ID); ok {
		card.UserRating = &score
	}
	card.InWatchlist = ann.IsInWatchlist(userID, a.ID)
	return card
}

func toRatedResponse(list []tracker.RatedAnime) []ratedAnimeResponse {
	out := make([]ratedAnimeResponse, 0, len(list))
	for _, r := range list {
		card := toCard(r.AnimeSummary)
		score := r.Rating
		card.UserRating = &score
		out = append(out, ratedAnimeResponse{
			animeCard: card,
			Rating:    r.Rating,
			RatedAt:   r.RatedAt,
		})
	}
	return out
}

func toWatchlistResponse(list []tracker.WatchlistAnime, userID uuid.UUID, ann annotator) []watchlistAnimeResponse {
	out := make([]watchlistAnimeResponse, 0, len(list))
	for _, e := range list {
		card := annotatedCard(e.AnimeSummary, userID, ann)
		card.InWatchlist = true
		out = append(out, watchlistAnimeResponse{
			animeCard: card,
			AddedAt:   e.AddedAt,
		})
	}
	return out
}

func toCategoryResponse(set domain.RecommendationSet, userID uuid.UUID, ann annotator, previewSize int) []categoryResponse {
	out := make([]categoryResponse, 0, len(set.Categories))
	for _, c := range set.Categories {
		anime := c.Anime
		if previewSize > 0 && len(anime) > previewSize {
			anime = anime[:previewSize]
		}
		cards := make([]animeCard, 0, len(anime))
		for _, a := range anime {
			cards = append(cards, annotatedCard(a, userID, ann))
		}
		out = append(out, categoryResponse{
			Name:  c.Name,
			Anime: cards,
			Total: len(c.Anime),
		})
	}
	return out
}
