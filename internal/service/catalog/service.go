// Package catalog provides cached access to the external anime catalog.
// Detail lookups are served from an in-memory cache and only missing ids
// hit the provider, batched into chunked queries.
package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/anitrack/anitrack-backend/internal/config"
	"github.com/anitrack/anitrack-backend/internal/domain"
)

type animeProvider interface {
	MediaByIDs(ctx context.Context, ids []int) ([]domain.AnimeSummary, error)
	Search(ctx context.Context, query string, page, perPage int) ([]domain.AnimeSummary, error)
	Trending(ctx context.Context, page, perPage int) ([]domain.AnimeSummary, error)
	Popular(ctx context.Context, page, perPage int) ([]domain.AnimeSummary, error)
}

// Service implements the cached catalog business logic.
type Service struct {
	log      *slog.Logger
	provider animeProvider
	cfg      config.CatalogConfig

	mu    sync.RWMutex
	cache map[int]domain.AnimeSummary

	loader *dataloader.Loader[int, domain.AnimeSummary]
}

// NewService creates a new Catalog service.
func NewService(logger *slog.Logger, provider animeProvider, cfg config.CatalogConfig) *Service {
	s := &Service{
		log:      logger.With("service", "catalog"),
		provider: provider,
		cfg:      cfg,
		cache:    make(map[int]domain.AnimeSummary),
	}
	s.loader = newDetailLoader(s)
	return s
}

// cached returns the cached summary for id, if present.
func (s *Service) cached(id int) (domain.AnimeSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.cache[id]
	return a, ok
}

// store puts summaries into the cache, overwriting existing entries.
func (s *Service) store(summaries []domain.AnimeSummary) {
	if len(summaries) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range summaries {
		s.cache[a.ID] = a
	}
}
