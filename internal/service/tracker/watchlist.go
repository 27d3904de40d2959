package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/anitrack/anitrack-backend/internal/domain"
)

// AddToWatchlist puts an anime on the user's plan-to-watch list. Adding an
// anime that is already listed returns domain.ErrAlreadyExists.
func (s *Service) AddToWatchlist(ctx context.Context, userID uuid.UUID, animeID int) (domain.WatchlistEntry, error) {
	if animeID <= 0 {
		return domain.WatchlistEntry{}, domain.NewValidationError("anime_id", "must be positive")
	}

	entry, err := s.watchlist.Add(ctx, userID, animeID)
	if err != nil {
		return domain.WatchlistEntry{}, fmt.Errorf("add to watchlist: %w", err)
	}

	st := s.state(userID)
	if err := s.ensureLoaded(ctx, st, userID); err != nil {
		return domain.WatchlistEntry{}, err
	}

	st.mu.Lock()
	present := false
	for _, e := range st.watchlist {
		if e.AnimeID == animeID {
			present = true
			break
		}
	}
	if !present {
		st.watchlist = append(st.watchlist, entry)
	}
	st.mu.Unlock()

	if _, err := s.catalog.Detail(ctx, animeID); err != nil {
		s.log.WarnContext(ctx, "detail fetch after watchlist add failed",
			slog.Int("anime_id", animeID),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "anime added to watchlist",
		slog.String("user_id", userID.String()),
		slog.Int("anime_id", animeID),
	)

	return entry, nil
}

// RemoveFromWatchlist takes an anime off the user's watchlist. Removing an
// anime that is not listed returns domain.ErrNotFound.
func (s *Service) RemoveFromWatchlist(ctx context.Context, userID uuid.UUID, animeID int) error {
	if err := s.watchlist.Remove(ctx, userID, animeID); err != nil {
		return fmt.Errorf("remove from watchlist: %w", err)
	}

	st := s.state(userID)
	st.mu.Lock()
	for i, e := range st.watchlist {
		if e.AnimeID == animeID {
			st.watchlist = append(st.watchlist[:i], st.watchlist[i+1:]...)
			break
		}
	}
	st.mu.Unlock()

	s.log.InfoContext(ctx, "anime removed from watchlist",
		slog.String("user_id", userID.String()),
		slog.Int("anime_id", animeID),
	)

	return nil
}
