package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/anitrack/anitrack-backend/internal/domain"
)

// Rate sets the user's score for an anime. The write is a single upsert
// keyed on (user, anime), so a re-rate never races a concurrent insert.
// A successful rate schedules a debounced recommendation refresh.
func (s *Service) Rate(ctx context.Context, userID uuid.UUID, animeID, score int) (domain.Rating, error) {
	if animeID <= 0 {
		return domain.Rating{}, domain.NewValidationError("anime_id", "must be positive")
	}
	if err := domain.ValidateRating(score); err != nil {
		return domain.Rating{}, err
	}

	saved, err := s.ratings.Upsert(ctx, userID, animeID, score)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("save rating: %w", err)
	}

	st := s.state(userID)
	if err := s.ensureLoaded(ctx, st, userID); err != nil {
		return domain.Rating{}, err
	}

	st.mu.Lock()
	replaced := false
	for i, r := range st.ratings {
		if r.AnimeID == animeID {
			st.ratings[i] = saved
			replaced = true
			break
		}
	}
	if !replaced {
		st.ratings = append(st.ratings, saved)
	}
	st.mu.Unlock()

	// Warm the catalog cache so the collection can render the new entry
	// without waiting for the next bulk fetch.
	if _, err := s.catalog.Detail(ctx, animeID); err != nil {
		s.log.WarnContext(ctx, "detail fetch after rate failed",
			slog.Int("anime_id", animeID),
			slog.String("error", err.Error()),
		)
	}

	s.scheduleRefresh(userID)

	s.log.InfoContext(ctx, "anime rated",
		slog.String("user_id", userID.String()),
		slog.Int("anime_id", animeID),
		slog.Int("score", score),
	)

	return saved, nil
}
