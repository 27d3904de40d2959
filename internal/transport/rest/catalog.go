package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anitrack/anitrack-backend/internal/domain"
	"github.com/anitrack/anitrack-backend/pkg/ctxutil"
)

// browseService defines the minimal interface needed by CatalogHandler.
type browseService interface {
	Search(ctx context.Context, query string, page, perPage int) ([]domain.AnimeSummary, error)
	Trending(ctx context.Context) ([]domain.AnimeSummary, error)
	Popular(ctx context.Context) ([]domain.AnimeSummary, error)
}

// CatalogHandler serves the public browse endpoints. They work without a
// session; cards are only annotated with ratings when one is present.
type CatalogHandler struct {
	svc       browseService
	annotator annotator
	log       *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(svc browseService, ann annotator, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, annotator: ann, log: logger.With("handler", "catalog")}
}

// Home handles GET /api/v1/home: the trending rail plus popular starters
// for first-time users.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	trending, err := h.svc.Trending(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	popular, err := h.svc.Popular(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]animeCard{
		"trending": h.cards(r, trending),
		"popular":  h.cards(r, popular),
	})
}

// Search handles GET /api/v1/search?q=&page=&perPage=.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))

	found, err := h.svc.Search(r.Context(), q.Get("q"), page, perPage)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": h.cards(r, found),
	})
}

// cards converts summaries to wire cards, annotated when a session exists.
func (h *CatalogHandler) cards(r *http.Request, list []domain.AnimeSummary) []animeCard {
	userID, authed := ctxutil.UserIDFromCtx(r.Context())

	out := make([]animeCard, 0, len(list))
	for _, a := range list {
		if authed {
			out = append(out, annotatedCard(a, userID, h.annotator))
		} else {
			out = append(out, toCard(a))
		}
	}
	return out
}
