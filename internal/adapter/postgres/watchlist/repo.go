// Package watchlist implements the WatchlistEntry repository using PostgreSQL.
package watchlist

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

// Repo provides watchlist persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new watchlist repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const addSQL = `
INSERT INTO watchlist (id, user_id, anime_id, created_at)
VALUES ($1, $2, $3, now())
RETURNING id, user_id, anime_id, created_at`

// Add inserts a watchlist entry. A duplicate (user, anime) pair surfaces as
// domain.ErrAlreadyExists — the caller's "already in watchlist" condition.
func (r *Repo) Add(ctx context.Context, userID uuid.UUID, animeID int) (domain.WatchlistEntry, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, addSQL, uuid.New(), userID, animeID)

	entry, err := scanEntry(row)
	if err != nil {
		return domain.WatchlistEntry{}, mapError(err, "watchlist entry", animeID)
	}

	return entry, nil
}

// Remove deletes the entry for a (user, anime) pair.
// Returns domain.ErrNotFound if no row matched.
func (r *Repo) Remove(ctx context.Context, userID uuid.UUID, animeID int) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND anime_id = $2`,
		userID, animeID,
	)
	if err != nil {
		return mapError(err, "watchlist entry", animeID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("watchlist entry %d: %w", animeID, domain.ErrNotFound)
	}

	return nil
}

// ListByUser returns all watchlist entries of the user, oldest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.WatchlistEntry, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := r.sb.
		Select("id", "user_id", "anime_id", "created_at").
		From("watchlist").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list watchlist query: %w", err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	entries := []domain.WatchlistEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list watchlist: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}

	return entries, nil
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
		}
	}

	return fmt.Errorf("%s %v: %w", entity, key, err)
}

func scanEntry(row pgx.Row) (domain.WatchlistEntry, error) {
	var entry domain.WatchlistEntry
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.AnimeID,
		&entry.CreatedAt,
	)
	return entry, err
}
