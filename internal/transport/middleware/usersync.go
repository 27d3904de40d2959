package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/anitrack/anitrack-backend/internal/domain"
	"github.com/anitrack/anitrack-backend/pkg/ctxutil"
)

type userEnsurer interface {
	Ensure(ctx context.Context, id uuid.UUID, email string) (domain.User, error)
}

// UserSync mirrors the session identity into the local users table so that
// rating and watchlist rows always have a user to reference. The write runs
// once per identity per process; later requests skip it.
func UserSync(users userEnsurer, logger *slog.Logger) Middleware {
	var mu sync.Mutex
	seen := make(map[uuid.UUID]struct{})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := ctxutil.UserIDFromCtx(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			mu.Lock()
			_, done := seen[userID]
			mu.Unlock()
			if done {
				next.ServeHTTP(w, r)
				return
			}

			if _, err := users.Ensure(r.Context(), userID, ctxutil.EmailFromCtx(r.Context())); err != nil {
				logger.ErrorContext(r.Context(), "user sync failed",
					slog.String("user_id", userID.String()),
					slog.String("error", err.Error()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			mu.Lock()
			seen[userID] = struct{}{}
			mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}
