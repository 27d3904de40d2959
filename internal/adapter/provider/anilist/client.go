// Package anilist fetches anime metadata from the AniList GraphQL API.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/anitrack/anitrack-backend/internal/domain"
)

const defaultBaseURL = "https://graphql.anilist.co"

// maxIDsPerQuery is the page cap the catalog enforces on id_in queries.
const maxIDsPerQuery = 50

// Client fetches anime metadata from the AniList GraphQL endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client with the default AniList endpoint.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithURL(defaultBaseURL, timeout, logger)
}

// NewClientWithURL creates a Client with a custom endpoint (for testing).
func NewClientWithURL(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "anilist"),
	}
}

// MediaByIDs fetches a batch of anime by id, at most 50 per call. Ids the
// catalog cannot resolve are silently absent from the result.
func (c *Client) MediaByIDs(ctx context.Context, ids []int) ([]domain.AnimeSummary, error) {
	if len(ids) == 0 {
		return []domain.AnimeSummary{}, nil
	}
	if len(ids) > maxIDsPerQuery {
		return nil, fmt.Errorf("anilist: %d ids exceed the %d per-query cap", len(ids), maxIDsPerQuery)
	}

	data, err := c.do(ctx, mediaByIDsQuery, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	if data.Page == nil {
		return []domain.AnimeSummary{}, nil
	}

	return mapMediaList(data.Page.Media), nil
}

// Search returns a page of anime matching the free-text query, most popular
// first.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) ([]domain.AnimeSummary, error) {
	data, err := c.do(ctx, searchQuery, map[string]any{
		"search":  query,
		"page":    page,
		"perPage": perPage,
	})
	if err != nil {
		return nil, err
	}
	if data.Page == nil {
		return []domain.AnimeSummary{}, nil
	}

	return mapMediaList(data.Page.Media), nil
}

// Trending returns a page of currently trending anime.
func (c *Client) Trending(ctx context.Context, page, perPage int) ([]domain.AnimeSummary, error) {
	return c.pageQuery(ctx, trendingQuery, page, perPage)
}

// Popular returns a page of all-time popular anime.
func (c *Client) Popular(ctx context.Context, page, perPage int) ([]domain.AnimeSummary, error) {
	return c.pageQuery(ctx, popularQuery, page, perPage)
}

func (c *Client) pageQuery(ctx context.Context, query string, page, perPage int) ([]domain.AnimeSummary, error) {
	data, err := c.do(ctx, query, map[string]any{"page": page, "perPage": perPage})
	if err != nil {
		return nil, err
	}
	if data.Page == nil {
		return []domain.AnimeSummary{}, nil
	}

	return mapMediaList(data.Page.Media), nil
}

// do posts a GraphQL document and decodes the response envelope.
func (c *Client) do(ctx context.Context, query string, variables map[string]any) (*gqlData, error) {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("anilist: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("anilist: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req, payload)
	if err != nil {
		c.log.ErrorContext(ctx, "anilist request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("anilist: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anilist: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("anilist: read body: %w", err)
	}

	var envelope gqlResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("anilist: decode json: %w", err)
	}

	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("anilist: graphql error: %s", envelope.Errors[0].Message)
	}

	return &envelope.Data, nil
}

// doWithRetry executes the request with a single retry on 5xx or network
// errors. The request body is rebuilt for the second attempt.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, payload []byte) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "anilist retry", slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	retryReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if reqErr != nil {
		return nil, reqErr
	}
	retryReq.Header = req.Header.Clone()

	return c.httpClient.Do(retryReq)
}
