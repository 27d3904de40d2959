package config

import (
	"fmt"
	"net/url"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Catalog.validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	if err := c.Recommender.validate(); err != nil {
		return fmt.Errorf("recommender: %w", err)
	}

	return nil
}

func (c *CatalogConfig) validate() error {
	if err := requireHTTPURL(c.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if c.ChunkSize < 1 || c.ChunkSize > 50 {
		return fmt.Errorf("chunk_size must be within [1, 50] (got %d)", c.ChunkSize)
	}
	if c.TrendingPageSize < 1 || c.TrendingPageSize > 50 {
		return fmt.Errorf("trending_page_size must be within [1, 50] (got %d)", c.TrendingPageSize)
	}
	if c.SearchPageSize < 1 || c.SearchPageSize > 50 {
		return fmt.Errorf("search_page_size must be within [1, 50] (got %d)", c.SearchPageSize)
	}
	return nil
}

func (c *RecommenderConfig) validate() error {
	if err := requireHTTPURL(c.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", c.Timeout)
	}
	if c.RefreshDebounce < 0 {
		return fmt.Errorf("refresh_debounce must be >= 0 (got %v)", c.RefreshDebounce)
	}
	return nil
}

func requireHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	return nil
}
