package catalog

import (
	"context"
	"fmt"

	"github.com/anitrack/anitrack-backend/internal/domain"
)

const maxPageSize = 50

// Search finds anime matching the query. An empty query returns an empty
// result. Page defaults to 1, perPage to the configured search page size,
// clamped to [1, 50]. Results prime the detail cache.
func (s *Service) Search(ctx context.Context, query string, page, perPage int) ([]domain.AnimeSummary, error) {
	if query == "" {
		return []domain.AnimeSummary{}, nil
	}
	page = clampPage(page)
	perPage = clampPerPage(perPage, s.cfg.SearchPageSize)

	found, err := s.provider.Search(ctx, query, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("search anime: %w", err)
	}
	s.store(found)
	return found, nil
}

// Trending returns the current trending anime. Results prime the detail cache.
func (s *Service) Trending(ctx context.Context) ([]domain.AnimeSummary, error) {
	found, err := s.provider.Trending(ctx, 1, s.cfg.TrendingPageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch trending anime: %w", err)
	}
	s.store(found)
	return found, nil
}

// Popular returns the all-time popular anime. Results prime the detail cache.
func (s *Service) Popular(ctx context.Context) ([]domain.AnimeSummary, error) {
	found, err := s.provider.Popular(ctx, 1, s.cfg.TrendingPageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch popular anime: %w", err)
	}
	s.store(found)
	return found, nil
}

// clampPage defaults non-positive pages to 1.
func clampPage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// clampPerPage ensures perPage is within [1, 50], defaulting 0 to defaultVal.
func clampPerPage(perPage, defaultVal int) int {
	if perPage <= 0 {
		return defaultVal
	}
	if perPage > maxPageSize {
		return maxPageSize
	}
	return perPage
}
