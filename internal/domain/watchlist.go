package domain

import (
	"time"

	"github.com/google/uuid"
)

// WatchlistEntry marks an anime the user intends to watch. Presence only:
// there is no payload beyond the (user, anime) pair, and an anime appears
// at most once per user.
type WatchlistEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	AnimeID   int
	CreatedAt time.Time
}
