package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anitrack/anitrack-backend/internal/domain"
	"github.com/anitrack/anitrack-backend/internal/service/tracker"
	"github.com/anitrack/anitrack-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type trackerServiceMock struct {
	LoadFunc                   func(ctx context.Context, userID uuid.UUID) (tracker.Dashboard, error)
	CollectionFunc             func(ctx context.Context, userID uuid.UUID) ([]tracker.RatedAnime, error)
	WatchlistFunc              func(ctx context.Context, userID uuid.UUID) ([]tracker.WatchlistAnime, error)
	RecommendationsFunc        func(ctx context.Context, userID uuid.UUID) (domain.RecommendationSet, error)
	RateFunc                   func(ctx context.Context, userID uuid.UUID, animeID, score int) (domain.Rating, error)
	AddToWatchlistFunc         func(ctx context.Context, userID uuid.UUID, animeID int) (domain.WatchlistEntry, error)
	RemoveFromWatchlistFunc    func(ctx context.Context, userID uuid.UUID, animeID int) error
	RefreshRecommendationsFunc func(ctx context.Context, userID uuid.UUID) (domain.RecommendationSet, error)
	GetUserRatingFunc          func(userID uuid.UUID, animeID int) (int, bool)
	IsInWatchlistFunc          func(userID uuid.UUID, animeID int) bool
	InvalidateFunc             func(userID uuid.UUID)
}

func (m *trackerServiceMock) Load(ctx context.Context, userID uuid.UUID) (tracker.Dashboard, error) {
	return m.LoadFunc(ctx, userID)
}

func (m *trackerServiceMock) Collection(ctx context.Context, userID uuid.UUID) ([]tracker.RatedAnime, error) {
	return m.CollectionFunc(ctx, userID)
}

func (m *trackerServiceMock) Watchlist(ctx context.Context, userID uuid.UUID) ([]tracker.WatchlistAnime, error) {
	return m.WatchlistFunc(ctx, userID)
}

func (m *trackerServiceMock) Recommendations(ctx context.Context, userID uuid.UUID) (domain.RecommendationSet, error) {
	return m.RecommendationsFunc(ctx, userID)
}

func (m *trackerServiceMock) Rate(ctx context.Context, userID uuid.UUID, animeID, score int) (domain.Rating, error) {
	return m.RateFunc(ctx, userID, animeID, score)
}

func (m *trackerServiceMock) AddToWatchlist(ctx context.Context, userID uuid.UUID, animeID int) (domain.WatchlistEntry, error) {
	return m.AddToWatchlistFunc(ctx, userID, animeID)
}

func (m *trackerServiceMock) RemoveFromWatchlist(ctx context.Context, userID uuid.UUID, animeID int) error {
	return m.RemoveFromWatchlistFunc(ctx, userID, animeID)
}

func (m *trackerServiceMock) RefreshRecommendations(ctx context.Context, userID uuid.UUID) (domain.RecommendationSet, error) {
	return m.RefreshRecommendationsFunc(ctx, userID)
}

func (m *trackerServiceMock) GetUserRating(userID uuid.UUID, animeID int) (int, bool) {
	if m.GetUserRatingFunc != nil {
		return m.GetUserRatingFunc(userID, animeID)
	}
	return 0, false
}

func (m *trackerServiceMock) IsInWatchlist(userID uuid.UUID, animeID int) bool {
	if m.IsInWatchlistFunc != nil {
		return m.IsInWatchlistFunc(userID, animeID)
	}
	return false
}

func (m *trackerServiceMock) Invalidate(userID uuid.UUID) {
	if m.InvalidateFunc != nil {
		m.InvalidateFunc(userID)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testAnime(id int) domain.AnimeSummary {
	return domain.AnimeSummary{
		ID:    id,
		Title: domain.AnimeTitle{English: fmt.Sprintf("Anime %d", id)},
	}
}

func authedRequest(method, target string, body io.Reader, userID uuid.UUID) *http.Request {
	r := httptest.NewRequest(method, target, body)
	ctx := ctxutil.WithUserID(r.Context(), userID)
	ctx = ctxutil.WithEmail(ctx, "viewer@example.com")
	return r.WithContext(ctx)
}

func newTrackerHandler(svc *trackerServiceMock) *TrackerHandler {
	return NewTrackerHandler(svc, slog.Default())
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestTracker_Dashboard_RequiresSession(t *testing.T) {
	t.Parallel()

	h := newTrackerHandler(&trackerServiceMock{})

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTracker_Dashboard_ReturnsAllSections(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &trackerServiceMock{
		LoadFunc: func(_ context.Context, _ uuid.UUID) (tracker.Dashboard, error) {
			return tracker.Dashboard{
				Collection: []tracker.RatedAnime{
					{AnimeSummary: testAnime(1), Rating: 8, RatedAt: time.Now()},
				},
				Watchlist: []tracker.WatchlistAnime{
					{AnimeSummary: testAnime(2), AddedAt: time.Now()},
				},
				Recommendations: domain.RecommendationSet{
					Categories: []domain.RecommendationCategory{
						{Name: "Hidden Gems", Anime: []domain.AnimeSummary{testAnime(3)}},
					},
				},
			}, nil
		},
	}
	h := newTrackerHandler(svc)

	rec := httptest.NewRecorder()
	h.Dashboard(rec, authedRequest(http.MethodGet, "/api/v1/dashboard", nil, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dashboardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Collection, 1)
	assert.Equal(t, 8, resp.Collection[0].Rating)
	assert.Equal(t, "Anime 1", resp.Collection[0].Title)
	assert.Contains(t, resp.Collection[0].WatchURL, "hianime.to/search?keyword=")
	require.Len(t, resp.Watchlist, 1)
	assert.True(t, resp.Watchlist[0].InWatchlist)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Hidden Gems", resp.Recommendations[0].Name)
}

func TestTracker_Collection_PreviewAndExpand(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	full := make([]tracker.RatedAnime, 30)
	for i := range full {
		full[i] = tracker.RatedAnime{AnimeSummary: testAnime(i + 1), Rating: 7}
	}
	svc := &trackerServiceMock{
		CollectionFunc: func(_ context.Context, _ uuid.UUID) ([]tracker.RatedAnime, error) {
			return full, nil
		},
	}
	h := newTrackerHandler(svc)

	rec := httptest.NewRecorder()
	h.Collection(rec, authedRequest(http.MethodGet, "/api/v1/collection", nil, userID))
	require.Equal(t, http.StatusOK, rec.Code)

	var preview listResponse[ratedAnimeResponse]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Len(t, preview.Items, 24)
	assert.Equal(t, 30, preview.Total)

	rec = httptest.NewRecorder()
	h.Collection(rec, authedRequest(http.MethodGet, "/api/v1/collection?all=true", nil, userID))
	require.Equal(t, http.StatusOK, rec.Code)

	var expanded listResponse[ratedAnimeResponse]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&expanded))
	assert.Len(t, expanded.Items, 30)
}

func TestTracker_Rate_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var gotAnime, gotScore int
	svc := &trackerServiceMock{
		RateFunc: func(_ context.Context, _ uuid.UUID, animeID, score int) (domain.Rating, error) {
			gotAnime, gotScore = animeID, score
			return domain.Rating{AnimeID: animeID, Rating: score}, nil
		},
	}
	h := newTrackerHandler(svc)

	r := authedRequest(http.MethodPut, "/api/v1/ratings/101", strings.NewReader(`{"rating": 9}`), userID)
	r.SetPathValue("animeID", "101")
	rec := httptest.NewRecorder()
	h.Rate(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 101, gotAnime)
	assert.Equal(t, 9, gotScore)
}

func TestTracker_Rate_InvalidScore(t *testing.T) {
	t.Parallel()

	svc := &trackerServiceMock{
		RateFunc: func(_ context.Context, _ uuid.UUID, _, score int) (domain.Rating, error) {
			return domain.Rating{}, domain.ValidateRating(score)
		},
	}
	h := newTrackerHandler(svc)

	r := authedRequest(http.MethodPut, "/api/v1/ratings/101", strings.NewReader(`{"rating": 11}`), uuid.New())
	r.SetPathValue("animeID", "101")
	rec := httptest.NewRecorder()
	h.Rate(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTracker_Rate_BadPathID(t *testing.T) {
	t.Parallel()

	h := newTrackerHandler(&trackerServiceMock{})

	r := authedRequest(http.MethodPut, "/api/v1/ratings/abc", strings.NewReader(`{"rating": 5}`), uuid.New())
	r.SetPathValue("animeID", "abc")
	rec := httptest.NewRecorder()
	h.Rate(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTracker_AddToWatchlist_Conflict(t *testing.T) {
	t.Parallel()

	svc := &trackerServiceMock{
		AddToWatchlistFunc: func(_ context.Context, _ uuid.UUID, _ int) (domain.WatchlistEntry, error) {
			return domain.WatchlistEntry{}, fmt.Errorf("add to watchlist: %w", domain.ErrAlreadyExists)
		},
	}
	h := newTrackerHandler(svc)

	r := authedRequest(http.MethodPost, "/api/v1/watchlist", strings.NewReader(`{"animeId": 7}`), uuid.New())
	rec := httptest.NewRecorder()
	h.AddToWatchlist(rec, r)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already in watchlist")
}

func TestTracker_RemoveFromWatchlist(t *testing.T) {
	t.Parallel()

	svc := &trackerServiceMock{
		RemoveFromWatchlistFunc: func(_ context.Context, _ uuid.UUID, animeID int) error {
			if animeID == 7 {
				return nil
			}
			return domain.ErrNotFound
		},
	}
	h := newTrackerHandler(svc)

	r := authedRequest(http.MethodDelete, "/api/v1/watchlist/7", nil, uuid.New())
	r.SetPathValue("animeID", "7")
	rec := httptest.NewRecorder()
	h.RemoveFromWatchlist(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	r = authedRequest(http.MethodDelete, "/api/v1/watchlist/8", nil, uuid.New())
	r.SetPathValue("animeID", "8")
	rec = httptest.NewRecorder()
	h.RemoveFromWatchlist(rec, r)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTracker_Recommendations_CategoryPreview(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	big := make([]domain.AnimeSummary, 20)
	for i := range big {
		big[i] = testAnime(i + 1)
	}
	svc := &trackerServiceMock{
		RecommendationsFunc: func(_ context.Context, _ uuid.UUID) (domain.RecommendationSet, error) {
			return domain.RecommendationSet{
				Categories: []domain.RecommendationCategory{{Name: "Action", Anime: big}},
			}, nil
		},
	}
	h := newTrackerHandler(svc)

	rec := httptest.NewRecorder()
	h.Recommendations(rec, authedRequest(http.MethodGet, "/api/v1/recommendations", nil, userID))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []categoryResponse `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Categories, 1)
	assert.Len(t, resp.Categories[0].Anime, 12)
	assert.Equal(t, 20, resp.Categories[0].Total)
}

func TestTracker_Me_EchoesSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	h := newTrackerHandler(&trackerServiceMock{})

	rec := httptest.NewRecorder()
	h.Me(rec, authedRequest(http.MethodGet, "/api/v1/me", nil, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, userID.String(), resp["id"])
	assert.Equal(t, "viewer@example.com", resp["email"])
}

func TestTracker_SignOut_DropsState(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var invalidated uuid.UUID
	h := newTrackerHandler(&trackerServiceMock{
		InvalidateFunc: func(id uuid.UUID) { invalidated = id },
	})

	rec := httptest.NewRecorder()
	h.SignOut(rec, authedRequest(http.MethodDelete, "/api/v1/session", nil, userID))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, invalidated)
}

func TestTracker_SignOut_RequiresSession(t *testing.T) {
	t.Parallel()

	h := newTrackerHandler(&trackerServiceMock{
		InvalidateFunc: func(uuid.UUID) { t.Error("anonymous request must not invalidate state") },
	})

	rec := httptest.NewRecorder()
	h.SignOut(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
