package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anitrack/anitrack-backend/internal/domain"
	"github.com/anitrack/anitrack-backend/pkg/ctxutil"
)

type userEnsurerMock struct {
	nCalls     int
	EnsureFunc func(ctx context.Context, id uuid.UUID, email string) (domain.User, error)
}

func (m *userEnsurerMock) Ensure(ctx context.Context, id uuid.UUID, email string) (domain.User, error) {
	m.nCalls++
	if m.EnsureFunc != nil {
		return m.EnsureFunc(ctx, id, email)
	}
	return domain.User{ID: id, Email: email}, nil
}

func authedReq(userID uuid.UUID) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	ctx := ctxutil.WithUserID(r.Context(), userID)
	ctx = ctxutil.WithEmail(ctx, "viewer@example.com")
	return r.WithContext(ctx)
}

func TestUserSync_MirrorsOncePerIdentity(t *testing.T) {
	t.Parallel()

	users := &userEnsurerMock{}
	handler := UserSync(users, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	userID := uuid.New()
	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedReq(userID))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1, users.nCalls, "mirror write should run once per identity")
}

func TestUserSync_AnonymousPassesThrough(t *testing.T) {
	t.Parallel()

	users := &userEnsurerMock{}
	handler := UserSync(users, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/home", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, users.nCalls)
}

func TestUserSync_FailureBlocksRequest(t *testing.T) {
	t.Parallel()

	users := &userEnsurerMock{
		EnsureFunc: func(_ context.Context, _ uuid.UUID, _ string) (domain.User, error) {
			return domain.User{}, errors.New("db down")
		},
	}
	nextCalled := false
	handler := UserSync(users, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedReq(uuid.New()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, nextCalled)

	// A later retry is not poisoned by the failure.
	rec = httptest.NewRecorder()
	users.EnsureFunc = nil
	handler.ServeHTTP(rec, authedReq(uuid.New()))
	assert.Equal(t, http.StatusOK, rec.Code)
}
