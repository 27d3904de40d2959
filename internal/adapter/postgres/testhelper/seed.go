package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anitrack/anitrack-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user row and returns the filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:        uuid.New(),
		Email:     "testuser-" + suffix + "@example.com",
		CreatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, created_at) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	return user
}

// SeedRating inserts a rating row for the user and returns it.
func SeedRating(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, animeID, score int) domain.Rating {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rating := domain.Rating{
		ID:        uuid.New(),
		UserID:    userID,
		AnimeID:   animeID,
		Rating:    score,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO ratings (id, user_id, anime_id, rating, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rating.ID, rating.UserID, rating.AnimeID, rating.Rating, rating.CreatedAt, rating.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRating insert: %v", err)
	}

	return rating
}

// SeedWatchlistEntry inserts a watchlist row for the user and returns it.
func SeedWatchlistEntry(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, animeID int) domain.WatchlistEntry {
	t.Helper()
	ctx := context.Background()

	entry := domain.WatchlistEntry{
		ID:        uuid.New(),
		UserID:    userID,
		AnimeID:   animeID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO watchlist (id, user_id, anime_id, created_at) VALUES ($1, $2, $3, $4)`,
		entry.ID, entry.UserID, entry.AnimeID, entry.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedWatchlistEntry insert: %v", err)
	}

	return entry
}
