package rating_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anitrack/anitrack-backend/internal/adapter/postgres/rating"
	"github.com/anitrack/anitrack-backend/internal/adapter/postgres/testhelper"
	"github.com/anitrack/anitrack-backend/internal/domain"
)

func newRepo(t *testing.T) (*rating.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return rating.New(pool), pool
}

func TestRepo_Upsert_InsertsAndOverwrites(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()
	user := testhelper.SeedUser(t, pool)

	first, err := repo.Upsert(ctx, user.ID, 101, 6)
	if err != nil {
		t.Fatalf("Upsert: unexpected error: %v", err)
	}
	if first.Rating != 6 {
		t.Errorf("Rating = %d, want 6", first.Rating)
	}

	// Re-rating the same anime overwrites the same row.
	second, err := repo.Upsert(ctx, user.ID, 101, 9)
	if err != nil {
		t.Fatalf("Upsert (overwrite): unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("overwrite created a new row: %s != %s", second.ID, first.ID)
	}
	if second.Rating != 9 {
		t.Errorf("Rating = %d, want 9", second.Rating)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) && !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}

	list, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].Rating != 9 {
		t.Errorf("listed rating = %d, want 9", list[0].Rating)
	}
}

func TestRepo_Upsert_RejectsOutOfRangeScore(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	user := testhelper.SeedUser(t, pool)

	_, err := repo.Upsert(context.Background(), user.ID, 102, 11)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation from check constraint, got %v", err)
	}
}

func TestRepo_ListByUser_OldestFirst(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()
	user := testhelper.SeedUser(t, pool)

	for i, score := range []int{3, 10, 7} {
		if _, err := repo.Upsert(ctx, user.ID, 200+i, score); err != nil {
			t.Fatalf("Upsert seed: %v", err)
		}
	}

	list, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].AnimeID != 200 || list[2].AnimeID != 202 {
		t.Errorf("order = [%d %d %d], want insertion order", list[0].AnimeID, list[1].AnimeID, list[2].AnimeID)
	}
}

func TestRepo_ListByUser_IsolatedPerUser(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()
	alice := testhelper.SeedUser(t, pool)
	bob := testhelper.SeedUser(t, pool)

	testhelper.SeedRating(t, pool, alice.ID, 300, 8)

	list, err := repo.ListByUser(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListByUser: unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob sees alice's ratings: %v", list)
	}
}
