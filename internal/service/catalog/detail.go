package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/anitrack/anitrack-backend/internal/domain"
)

const (
	loaderWait     = 2 * time.Millisecond
	loaderMaxBatch = 50
)

// Detail returns the summary for a single anime id. Concurrent calls are
// batched into one provider query. Returns domain.ErrNotFound if the catalog
// does not know the id.
func (s *Service) Detail(ctx context.Context, id int) (domain.AnimeSummary, error) {
	if a, ok := s.cached(id); ok {
		return a, nil
	}
	a, err := s.loader.Load(ctx, id)()
	if err != nil {
		return domain.AnimeSummary{}, err
	}
	return a, nil
}

// newDetailLoader builds the batching loader behind Detail. Result caching is
// disabled: the service keeps its own cache and the loader only coalesces
// concurrent lookups.
func newDetailLoader(s *Service) *dataloader.Loader[int, domain.AnimeSummary] {
	batchFn := func(ctx context.Context, ids []int) []*dataloader.Result[domain.AnimeSummary] {
		results := make([]*dataloader.Result[domain.AnimeSummary], len(ids))

		fetched, err := s.provider.MediaByIDs(ctx, ids)
		if err != nil {
			err = fmt.Errorf("fetch anime details: %w", err)
			for i := range results {
				results[i] = &dataloader.Result[domain.AnimeSummary]{Error: err}
			}
			return results
		}
		s.store(fetched)

		byID := make(map[int]domain.AnimeSummary, len(fetched))
		for _, a := range fetched {
			byID[a.ID] = a
		}
		for i, id := range ids {
			if a, ok := byID[id]; ok {
				results[i] = &dataloader.Result[domain.AnimeSummary]{Data: a}
			} else {
				results[i] = &dataloader.Result[domain.AnimeSummary]{
					Error: fmt.Errorf("anime %d: %w", id, domain.ErrNotFound),
				}
			}
		}
		return results
	}

	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithCache[int, domain.AnimeSummary](&dataloader.NoCache[int, domain.AnimeSummary]{}),
		dataloader.WithWait[int, domain.AnimeSummary](loaderWait),
		dataloader.WithBatchCapacity[int, domain.AnimeSummary](loaderMaxBatch),
	)
}
