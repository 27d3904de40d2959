package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/anitrack/anitrack-backend/internal/domain"
)

// RatedAnime is a collection entry: catalog details plus the user's score.
type RatedAnime struct {
	domain.AnimeSummary
	Rating  int
	RatedAt time.Time
}

// WatchlistAnime is a watchlist entry with catalog details attached.
type WatchlistAnime struct {
	domain.AnimeSummary
	AddedAt time.Time
}

// Dashboard is the full tracking state for one user.
type Dashboard struct {
	Collection      []RatedAnime
	Watchlist       []WatchlistAnime
	Recommendations domain.RecommendationSet
}

// Load reloads the user's state from the stores and the recommendation
// service, then returns the assembled dashboard. Sections load
// independently: a failed section is logged and left empty, it never
// fails the whole call.
func (s *Service) Load(ctx context.Context, userID uuid.UUID) (Dashboard, error) {
	st := s.state(userID)
	if err := s.loadState(ctx, st, userID); err != nil {
		return Dashboard{}, err
	}
	return s.dashboard(ctx, st), nil
}

// loadState fetches ratings, watchlist and recommendations for userID and
// replaces the in-memory state wholesale.
func (s *Service) loadState(ctx context.Context, st *userState, userID uuid.UUID) error {
	var (
		ratings     []domain.Rating
		watchlist   []domain.WatchlistEntry
		recs        domain.RecommendationSet
		recsFetched bool
	)

	var g errgroup.Group

	g.Go(func() error {
		list, err := s.ratings.ListByUser(ctx, userID)
		if err != nil {
			s.log.ErrorContext(ctx, "load ratings failed",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()),
			)
			return nil
		}
		ratings = list
		return nil
	})

	g.Go(func() error {
		list, err := s.watchlist.ListByUser(ctx, userID)
		if err != nil {
			s.log.ErrorContext(ctx, "load watchlist failed",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()),
			)
			return nil
		}
		watchlist = list
		return nil
	})

	_ = g.Wait()

	// Second fan-out: warm the catalog cache for both sections and fetch
	// recommendations, all concurrently. The recommender has nothing for a
	// user with no ratings, so that call is skipped.
	var h errgroup.Group

	if len(ratings) > 0 {
		h.Go(func() error {
			s.warmDetails(ctx, ratingIDs(ratings), "collection")
			return nil
		})
		h.Go(func() error {
			set, err := s.fetchRecommendations(ctx, userID)
			if err != nil {
				s.log.WarnContext(ctx, "load recommendations failed",
					slog.String("user_id", userID.String()),
					slog.String("error", err.Error()),
				)
				return nil
			}
			recs = set
			recsFetched = true
			return nil
		})
	}
	if len(watchlist) > 0 {
		h.Go(func() error {
			s.warmDetails(ctx, watchlistIDs(watchlist), "watchlist")
			return nil
		})
	}

	_ = h.Wait()

	st.mu.Lock()
	st.ratings = ratings
	st.watchlist = watchlist
	// Recommendations live only in memory, so a failed fetch keeps the
	// previous set instead of wiping it.
	if recsFetched {
		st.recs = recs
	}
	st.loaded = true
	st.mu.Unlock()

	return nil
}

// ensureLoaded lazily loads the state on the first request for a user.
func (s *Service) ensureLoaded(ctx context.Context, st *userState, userID uuid.UUID) error {
	st.mu.Lock()
	loaded := st.loaded
	st.mu.Unlock()
	if loaded {
		return nil
	}
	return s.loadState(ctx, st, userID)
}

// dashboard assembles the full view from the current state.
func (s *Service) dashboard(ctx context.Context, st *userState) Dashboard {
	collection := s.collection(ctx, st)
	watchlist := s.watchlistView(ctx, st)

	st.mu.Lock()
	recs := st.recs
	st.mu.Unlock()

	return Dashboard{
		Collection:      collection,
		Watchlist:       watchlist,
		Recommendations: recs,
	}
}

// warmDetails primes the catalog cache for a section's ids. Failures are
// logged and absorbed; the section falls back to its empty state.
func (s *Service) warmDetails(ctx context.Context, ids []int, section string) {
	if _, err := s.catalog.Details(ctx, ids); err != nil {
		s.log.ErrorContext(ctx, "hydrate section failed",
			slog.String("section", section),
			slog.String("error", err.Error()),
		)
	}
}

func ratingIDs(ratings []domain.Rating) []int {
	ids := make([]int, 0, len(ratings))
	for _, r := range ratings {
		ids = append(ids, r.AnimeID)
	}
	return ids
}

func watchlistIDs(entries []domain.WatchlistEntry) []int {
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AnimeID)
	}
	return ids
}

// collection joins the user's ratings with catalog details. Anime the
// catalog cannot resolve are dropped; a catalog failure leaves the whole
// section empty rather than failing the caller.
func (s *Service) collection(ctx context.Context, st *userState) []RatedAnime {
	st.mu.Lock()
	ratings := make([]domain.Rating, len(st.ratings))
	copy(ratings, st.ratings)
	st.mu.Unlock()

	if len(ratings) == 0 {
		return []RatedAnime{}
	}

	summaries, err := s.catalog.Details(ctx, ratingIDs(ratings))
	if err != nil {
		s.log.ErrorContext(ctx, "hydrate collection failed", slog.String("error", err.Error()))
		return []RatedAnime{}
	}
	byID := summariesByID(summaries)

	out := make([]RatedAnime, 0, len(ratings))
	for _, r := range ratings {
		a, ok := byID[r.AnimeID]
		if !ok {
			continue
		}
		out = append(out, RatedAnime{AnimeSummary: a, Rating: r.Rating, RatedAt: r.UpdatedAt})
	}
	return out
}

// watchlistView joins the user's watchlist with catalog details. Failure
// semantics match collection.
func (s *Service) watchlistView(ctx context.Context, st *userState) []WatchlistAnime {
	st.mu.Lock()
	entries := make([]domain.WatchlistEntry, len(st.watchlist))
	copy(entries, st.watchlist)
	st.mu.Unlock()

	if len(entries) == 0 {
		return []WatchlistAnime{}
	}

	summaries, err := s.catalog.Details(ctx, watchlistIDs(entries))
	if err != nil {
		s.log.ErrorContext(ctx, "hydrate watchlist failed", slog.String("error", err.Error()))
		return []WatchlistAnime{}
	}
	byID := summariesByID(summaries)

	out := make([]WatchlistAnime, 0, len(entries))
	for _, e := range entries {
		a, ok := byID[e.AnimeID]
		if !ok {
			continue
		}
		out = append(out, WatchlistAnime{AnimeSummary: a, AddedAt: e.CreatedAt})
	}
	return out
}

// Collection returns the user's rated anime with details, loading state on
// first use.
func (s *Service) Collection(ctx context.Context, userID uuid.UUID) ([]RatedAnime, error) {
	st := s.state(userID)
	if err := s.ensureLoaded(ctx, st, userID); err != nil {
		return nil, err
	}
	return s.collection(ctx, st), nil
}

// Watchlist returns the user's watchlist with details, loading state on
// first use.
func (s *Service) Watchlist(ctx context.Context, userID uuid.UUID) ([]WatchlistAnime, error) {
	st := s.state(userID)
	if err := s.ensureLoaded(ctx, st, userID); err != nil {
		return nil, err
	}
	return s.watchlistView(ctx, st), nil
}

// Recommendations returns the current recommendation set, loading state on
// first use.
func (s *Service) Recommendations(ctx context.Context, userID uuid.UUID) (domain.RecommendationSet, error) {
	st := s.state(userID)
	if err := s.ensureLoaded(ctx, st, userID); err != nil {
		return domain.RecommendationSet{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.recs, nil
}

func summariesByID(summaries []domain.AnimeSummary) map[int]domain.AnimeSummary {
	byID := make(map[int]domain.AnimeSummary, len(summaries))
	for _, a := range summaries {
		byID[a.ID] = a
	}
	return byID
}
