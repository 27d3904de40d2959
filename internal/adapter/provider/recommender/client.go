// Package recommender calls the external recommendation service.
//
// The service is opaque: given a user id it answers with anime ids grouped
// by free-form category names. This client never inspects or ranks the
// content, it only hands the grouping to the tracker layer.
package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Category is one named group of recommended anime ids. The service decides
// both the names and their order; both are preserved as received.
type Category struct {
	Name string
	IDs  []int
}

// Client fetches categorized recommendations over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the given base URL. timeout bounds the
// whole request; the recommendation service can take a while on a cold
// start, so callers typically pass ~15s.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "recommender"),
	}
}

type apiResponse struct {
	UserID          string          `json:"user_id"`
	TotalRatings    int             `json:"total_ratings"`
	Recommendations json.RawMessage `json:"recommendations"`
}

// Recommendations fetches the categorized anime ids for a user.
// An absent or empty mapping means "no recommendations yet" and returns an
// empty slice with no error.
func (c *Client) Recommendations(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	reqURL := fmt.Sprintf("%s/recommend/%s", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("recommender: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "recommender request failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recommender: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommender: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("recommender: read body: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("recommender: decode json: %w", err)
	}

	categories, err := decodeCategories(parsed.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("recommender: decode recommendations: %w", err)
	}

	c.log.DebugContext(ctx, "recommendations fetched",
		slog.String("user_id", userID.String()),
		slog.Int("categories", len(categories)),
	)

	return categories, nil
}

// decodeCategories parses the recommendations object token by token.
// encoding/json maps do not keep key order, and the order the service emits
// categories in is the order users see them in.
func decodeCategories(raw json.RawMessage) ([]Category, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []Category{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	categories := []Category{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected category name, got %v", tok)
		}

		var ids []int
		if err := dec.Decode(&ids); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		categories = append(categories, Category{Name: name, IDs: ids})
	}

	return categories, nil
}
