package domain

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity issued by the external session provider.
// The provider owns the account lifecycle; this row exists so ratings and
// watchlist entries have a stable foreign key and the API can echo the email.
type User struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}
