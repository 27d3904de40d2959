package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/anitrack/anitrack-backend/internal/domain"
	"github.com/anitrack/anitrack-backend/internal/service/tracker"
	"github.com/anitrack/anitrack-backend/pkg/ctxutil"
)

// trackerService defines the minimal interface needed by TrackerHandler.
type trackerService interface {
	Load(ctx context.Context, userID uuid.UUID) (tracker.Dashboard, error)
	Collection(ctx context.Context, userID uuid.UUID) ([]tracker.RatedAnime, error)
	Watchlist(ctx context.Context, userID uuid.UUID) ([]tracker.WatchlistAnime, error)
	Recommendations(ctx context.Context, userID uuid.UUID) (domain.RecommendationSet, error)
	Rate(ctx context.Context, userID uuid.UUID, animeID, score int) (domain.Rating, error)
	AddToWatchlist(ctx context.Context, userID uuid.UUID, animeID int) (domain.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, userID uuid.UUID, animeID int) error
	RefreshRecommendations(ctx context.Context, userID uuid.UUID) (domain.RecommendationSet, error)
	GetUserRating(userID uuid.UUID, animeID int) (int, bool)
	IsInWatchlist(userID uuid.UUID, animeID int) bool
	Invalidate(userID uuid.UUID)
}

// TrackerHandler serves the per-user tracking endpoints.
type TrackerHandler struct {
	svc trackerService
	log *slog.Logger
}

// NewTrackerHandler creates a TrackerHandler.
func NewTrackerHandler(svc trackerService, logger *slog.Logger) *TrackerHandler {
	return &TrackerHandler{svc: svc, log: logger.With("handler", "tracker")}
}

// requireUser pulls the authenticated user from the request context.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// Dashboard handles GET /api/v1/dashboard. It reloads the full state from
// the stores and returns every section in one response.
func (h *TrackerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	dash, err := h.svc.Load(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Collection:      toRatedResponse(dash.Collection),
		Watchlist:       toWatchlistResponse(dash.Watchlist, userID, h.svc),
		Recommendations: toCategoryResponse(dash.Recommendations, userID, h.svc, categoryPreviewSize),
	})
}

type listResponse[T any] struct {
	Items []T  `json:"items"`
	Total int  `json:"total"`
	All   bool `json:"all"`
}

// Collection handles GET /api/v1/collection. Returns the first 24 entries
// unless ?all=true.
func (h *TrackerHandler) Collection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.svc.Collection(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	all := r.URL.Query().Get("all") == "true"
	items := toRatedResponse(list)
	total := len(items)
	if !all && total > listPreviewSize {
		items = items[:listPreviewSize]
	}

	writeJSON(w, http.StatusOK, listResponse[ratedAnimeResponse]{Items: items, Total: total, All: all})
}

// Watchlist handles GET /api/v1/watchlist.
func (h *TrackerHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.svc.Watchlist(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	all := r.URL.Query().Get("all") == "true"
	items := toWatchlistResponse(list, userID, h.svc)
	total := len(items)
	if !all && total > listPreviewSize {
		items = items[:listPreviewSize]
	}

	writeJSON(w, http.StatusOK, listResponse[watchlistAnimeResponse]{Items: items, Total: total, All: all})
}

// Recommendations handles GET /api/v1/recommendations. Each category is cut
// to a 12-item preview unless ?all=true.
func (h *TrackerHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	set, err := h.svc.Recommendations(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	preview := categoryPreviewSize
	if r.URL.Query().Get("all") == "true" {
		preview = 0
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"categories": toCategoryResponse(set, userID, h.svc, preview),
	})
}

// RefreshRecommendations handles POST /api/v1/recommendations/refresh.
func (h *TrackerHandler) RefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	set, err := h.svc.RefreshRecommendations(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"categories": toCategoryResponse(set, userID, h.svc, categoryPreviewSize),
	})
}

type rateRequest struct {
	Rating int `json:"rating"`
}

type rateResponse struct {
	AnimeID int `json:"animeId"`
	Rating  int `json:"rating"`
}

// Rate handles PUT /api/v1/ratings/{animeID}.
func (h *TrackerHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	animeID, err := pathID(r, "animeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid anime id")
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.svc.Rate(r.Context(), userID, animeID, req.Rating)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, rateResponse{AnimeID: saved.AnimeID, Rating: saved.Rating})
}

type watchlistAddRequest struct {
	AnimeID int `json:"animeId"`
}

// AddToWatchlist handles POST /api/v1/watchlist.
func (h *TrackerHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req watchlistAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.AddToWatchlist(r.Context(), userID, req.AnimeID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"animeId": entry.AnimeID,
		"addedAt": entry.CreatedAt,
	})
}

// RemoveFromWatchlist handles DELETE /api/v1/watchlist/{animeID}.
func (h *TrackerHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	animeID, err := pathID(r, "animeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid anime id")
		return
	}

	if err := h.svc.RemoveFromWatchlist(r.Context(), userID, animeID); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me. Echoes the session identity.
func (h *TrackerHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":    userID.String(),
		"email": ctxutil.EmailFromCtx(r.Context()),
	})
}

// SignOut handles DELETE /api/v1/session. The session itself lives with the
// external provider; this drops the server-side per-user state so the next
// sign-in starts from a fresh load.
func (h *TrackerHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	h.svc.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
