// Package tracker implements the per-user tracking logic: the rated
// collection, the plan-to-watch list and the categorized recommendations
// that feed the dashboard.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anitrack/anitrack-backend/internal/adapter/provider/recommender"
	"github.com/anitrack/anitrack-backend/internal/config"
	"github.com/anitrack/anitrack-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type ratingRepo interface {
	Upsert(ctx context.Context, userID uuid.UUID, animeID, score int) (domain.Rating, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Rating, error)
}

type watchlistRepo interface {
	Add(ctx context.Context, userID uuid.UUID, animeID int) (domain.WatchlistEntry, error)
	Remove(ctx context.Context, userID uuid.UUID, animeID int) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.WatchlistEntry, error)
}

type catalogService interface {
	Detail(ctx context.Context, id int) (domain.AnimeSummary, error)
	Details(ctx context.Context, ids []int) ([]domain.AnimeSummary, error)
}

type recommendationProvider interface {
	Recommendations(ctx context.Context, userID uuid.UUID) ([]recommender.Category, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the tracking business logic.
type Service struct {
	log         *slog.Logger
	ratings     ratingRepo
	watchlist   watchlistRepo
	catalog     catalogService
	recommender recommendationProvider
	cfg         config.RecommenderConfig

	mu    sync.Mutex
	users map[uuid.UUID]*userState
}

// NewService creates a new Tracker service.
func NewService(
	logger *slog.Logger,
	ratings ratingRepo,
	watchlist watchlistRepo,
	catalog catalogService,
	rec recommendationProvider,
	cfg config.RecommenderConfig,
) *Service {
	return &Service{
		log:         logger.With("service", "tracker"),
		ratings:     ratings,
		watchlist:   watchlist,
		catalog:     catalog,
		recommender: rec,
		cfg:         cfg,
		users:       make(map[uuid.UUID]*userState),
	}
}

// userState is the in-memory session state for one user. Ratings and
// watchlist mirror the database; recommendations live only here.
type userState struct {
	mu        sync.Mutex
	loaded    bool
	ratings   []domain.Rating
	watchlist []domain.WatchlistEntry
	recs      domain.RecommendationSet

	refreshing bool
	debounce   *time.Timer
}

// state returns the state for userID, creating it on first use.
func (s *Service) state(userID uuid.UUID) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.users[userID]
	if !ok {
		st = &userState{}
		s.users[userID] = st
	}
	return st
}

// Invalidate drops the in-memory state for userID. The next request loads
// fresh from the stores.
func (s *Service) Invalidate(userID uuid.UUID) {
	s.mu.Lock()
	st, ok := s.users[userID]
	delete(s.users, userID)
	s.mu.Unlock()

	if !ok {
		return
	}
	st.mu.Lock()
	if st.debounce != nil {
		st.debounce.Stop()
	}
	st.mu.Unlock()
}

// GetUserRating returns the user's score for an anime, if any. Reads only
// local state and never blocks on a store.
func (s *Service) GetUserRating(userID uuid.UUID, animeID int) (int, bool) {
	st := s.state(userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, r := range st.ratings {
		if r.AnimeID == animeID {
			return r.Rating, true
		}
	}
	return 0, false
}

// IsInWatchlist reports whether the anime is on the user's watchlist.
// Reads only local state and never blocks on a store.
func (s *Service) IsInWatchlist(userID uuid.UUID, animeID int) bool {
	st := s.state(userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, e := range st.watchlist {
		if e.AnimeID == animeID {
			return true
		}
	}
	return false
}
