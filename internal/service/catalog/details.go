package catalog

import (
	"context"
	"fmt"

	"github.com/anitrack/anitrack-backend/internal/domain"
)

// Details returns summaries for the given ids in input order. Cached entries
// are served locally; the rest are fetched from the provider in chunks of at
// most cfg.ChunkSize ids per query. Ids the provider does not know are
// silently dropped from the result.
func (s *Service) Details(ctx context.Context, ids []int) ([]domain.AnimeSummary, error) {
	if len(ids) == 0 {
		return []domain.AnimeSummary{}, nil
	}

	unique := dedupe(ids)

	var missing []int
	for _, id := range unique {
		if _, ok := s.cached(id); !ok {
			missing = append(missing, id)
		}
	}

	for _, chunk := range chunked(missing, s.cfg.ChunkSize) {
		fetched, err := s.provider.MediaByIDs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("fetch anime details: %w", err)
		}
		s.store(fetched)
	}

	result := make([]domain.AnimeSummary, 0, len(unique))
	for _, id := range unique {
		if a, ok := s.cached(id); ok {
			result = append(result, a)
		}
	}
	return result, nil
}

// dedupe removes duplicate ids, keeping first occurrence order.
func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// chunked splits ids into slices of at most size elements.
func chunked(ids []int, size int) [][]int {
	if size <= 0 {
		size = 1
	}
	var chunks [][]int
	for len(ids) > 0 {
		n := size
		if len(ids) < n {
			n = len(ids)
		}
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	return chunks
}
