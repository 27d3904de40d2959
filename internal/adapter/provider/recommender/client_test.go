package recommender

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Recommendations_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := "/recommend/" + userID.String(); r.URL.Path != want {
			t.Errorf("path = %q, want %q", r.URL.Path, want)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"user_id": "` + userID.String() + `",
			"total_ratings": 4,
			"recommendations": {
				"Shonen Action & Battle": [16498, 101922, 113415],
				"Hidden Gems": [19, 437]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, newTestLogger())
	got, err := c.Recommendations(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("categories = %d, want 2", len(got))
	}
	if got[0].Name != "Shonen Action & Battle" || got[1].Name != "Hidden Gems" {
		t.Errorf("category order = [%q, %q]", got[0].Name, got[1].Name)
	}
	action := got[0].IDs
	if len(action) != 3 || action[0] != 16498 || action[2] != 113415 {
		t.Errorf("action ids = %v", action)
	}
}

func TestClient_Recommendations_PreservesCategoryOrder(t *testing.T) {
	t.Parallel()

	// Names chosen so that alphabetical order differs from wire order.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"user_id": "x",
			"total_ratings": 9,
			"recommendations": {"Zeta": [1], "Alpha": [2], "Mid": [3]}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, newTestLogger())
	got, err := c.Recommendations(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := make([]string, len(got))
	for i, cat := range got {
		names[i] = cat.Name
	}
	want := []string{"Zeta", "Alpha", "Mid"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestClient_Recommendations_EmptyMeansNoneYet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id": "x", "total_ratings": 0, "recommendations": {}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, newTestLogger())
	got, err := c.Recommendations(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got = %v, want empty", got)
	}
}

func TestClient_Recommendations_MissingFieldTolerated(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id": "x", "total_ratings": 0}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, newTestLogger())
	got, err := c.Recommendations(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got = %v, want empty", got)
	}
}

func TestClient_Recommendations_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, newTestLogger())
	if _, err := c.Recommendations(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestClient_Recommendations_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, newTestLogger())
	if _, err := c.Recommendations(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected timeout error")
	}
}
