package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rating score bounds.
const (
	MinRating = 1
	MaxRating = 10
)

// Rating is a user's score for a single anime. At most one row exists per
// (user, anime); re-rating overwrites the value in place.
type Rating struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	AnimeID   int
	Rating    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateRating checks that a score is within [MinRating, MaxRating].
func ValidateRating(score int) error {
	if score < MinRating || score > MaxRating {
		return NewValidationError("rating", "must be between 1 and 10")
	}
	return nil
}
