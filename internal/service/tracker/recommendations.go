package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anitrack/anitrack-backend/internal/domain"
)

// RefreshRecommendations fetches a fresh recommendation set and replaces
// the stored one wholesale. At most one refresh per user runs at a time;
// a call arriving while one is in flight is dropped, not queued, and
// returns the current set immediately. The in-flight result is the one
// applied.
func (s *Service) RefreshRecommendations(ctx context.Context, userID uuid.UUID) (domain.RecommendationSet, error) {
	st := s.state(userID)

	st.mu.Lock()
	if st.refreshing {
		current := st.recs
		st.mu.Unlock()
		return current, nil
	}
	st.refreshing = true
	st.mu.Unlock()

	set, err := s.fetchRecommendations(ctx, userID)

	st.mu.Lock()
	st.refreshing = false
	if err == nil {
		st.recs = set
	} else {
		set = st.recs
	}
	st.mu.Unlock()

	if err != nil {
		return set, fmt.Errorf("refresh recommendations: %w", err)
	}
	return set, nil
}

// scheduleRefresh arms (or re-arms) the debounce timer for a background
// refresh. A burst of ratings collapses into one refresh after the quiet
// period.
func (s *Service) scheduleRefresh(userID uuid.UUID) {
	st := s.state(userID)

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.debounce != nil {
		st.debounce.Reset(s.cfg.RefreshDebounce)
		return
	}
	st.debounce = time.AfterFunc(s.cfg.RefreshDebounce, func() {
		ctx := context.Background()
		if _, err := s.RefreshRecommendations(ctx, userID); err != nil {
			s.log.WarnContext(ctx, "debounced recommendation refresh failed",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()),
			)
		}
	})
}

// fetchRecommendations asks the recommendation service for categorized
// anime ids and hydrates them with catalog details. Ids appearing in
// several categories are fetched once; ids the catalog cannot resolve are
// dropped, and categories left without anime are dropped with them.
// Category order is kept as the service sent it.
func (s *Service) fetchRecommendations(ctx context.Context, userID uuid.UUID) (domain.RecommendationSet, error) {
	categories, err := s.recommender.Recommendations(ctx, userID)
	if err != nil {
		return domain.RecommendationSet{}, err
	}
	if len(categories) == 0 {
		return domain.RecommendationSet{}, nil
	}

	var allIDs []int
	for _, c := range categories {
		allIDs = append(allIDs, c.IDs...)
	}

	summaries, err := s.catalog.Details(ctx, allIDs)
	if err != nil {
		return domain.RecommendationSet{}, err
	}
	byID := summariesByID(summaries)

	set := domain.RecommendationSet{}
	for _, c := range categories {
		anime := make([]domain.AnimeSummary, 0, len(c.IDs))
		for _, id := range c.IDs {
			if a, ok := byID[id]; ok {
				anime = append(anime, a)
			}
		}
		if len(anime) == 0 {
			continue
		}
		set.Categories = append(set.Categories, domain.RecommendationCategory{
			Name:  c.Name,
			Anime: anime,
		})
	}
	return set, nil
}
