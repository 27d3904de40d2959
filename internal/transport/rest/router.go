package rest

import (
	"net/http"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health  *HealthHandler
	Tracker *TrackerHandler
	Catalog *CatalogHandler
}

// NewRouter builds the route table. Middleware is applied by the caller
// around the returned mux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	mux.HandleFunc("GET /api/v1/dashboard", h.Tracker.Dashboard)
	mux.HandleFunc("GET /api/v1/collection", h.Tracker.Collection)
	mux.HandleFunc("GET /api/v1/watchlist", h.Tracker.Watchlist)
	mux.HandleFunc("POST /api/v1/watchlist", h.Tracker.AddToWatchlist)
	mux.HandleFunc("DELETE /api/v1/watchlist/{animeID}", h.Tracker.RemoveFromWatchlist)
	mux.HandleFunc("GET /api/v1/recommendations", h.Tracker.Recommendations)
	mux.HandleFunc("POST /api/v1/recommendations/refresh", h.Tracker.RefreshRecommendations)
	mux.HandleFunc("PUT /api/v1/ratings/{animeID}", h.Tracker.Rate)
	mux.HandleFunc("GET /api/v1/me", h.Tracker.Me)
	mux.HandleFunc("DELETE /api/v1/session", h.Tracker.SignOut)

	mux.HandleFunc("GET /api/v1/home", h.Catalog.Home)
	mux.HandleFunc("GET /api/v1/search", h.Catalog.Search)

	return mux
}
