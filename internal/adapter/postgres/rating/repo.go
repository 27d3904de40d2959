// Package rating implements the Rating repository using PostgreSQL.
package rating

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/anitrack/anitrack-backend/internal/adapter/postgres"
	"github.com/anitrack/anitrack-backend/internal/domain"
)

// Repo provides rating persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new rating repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const upsertSQL = `
INSERT INTO ratings (id, user_id, anime_id, rating, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (user_id, anime_id)
DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()
RETURNING id, user_id, anime_id, rating, created_at, updated_at`

// Upsert inserts a rating or overwrites the existing value for the same
// (user, anime) pair in a single statement. The unique key makes concurrent
// rate calls for the same pair converge on one row with the last value;
// there is no separate existence check to race against.
func (r *Repo) Upsert(ctx context.Context, userID uuid.UUID, animeID, score int) (domain.Rating, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, upsertSQL, uuid.New(), userID, animeID, score)

	rating, err := scanRating(row)
	if err != nil {
		return domain.Rating{}, mapError(err, "rating", animeID)
	}

	return rating, nil
}

// ListByUser returns all ratings of the user, oldest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Rating, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := r.sb.
		Select("id", "user_id", "anime_id", "rating", "created_at", "updated_at").
		From("ratings").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ratings query: %w", err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings := []domain.Rating{}
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("list ratings: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	return ratings, nil
}

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, key any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %v: %w", entity, key, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", entity, key, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %v: %w", entity, key, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %v: %w", entity, key, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %v: %w", entity, key, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %v: %w", entity, key, err)
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.AnimeID,
		&rating.Rating,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	return rating, err
}
