package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"smartbasket/internal/config"
)

// Listing is one ranked shopping result from the price-search provider.
type Listing struct {
	Title         string `json:"title"`
	Price         string `json:"price"`
	Source        string `json:"source"`
	SourceIconURL string `json:"source_icon"`
	Sponsored     bool   `json:"sponsored"`
}

// SearchProvider fetches ranked shopping listings for a free-text query.
type SearchProvider interface {
	Search(ctx context.Context, query, locationHint string, limit int) ([]Listing, error)
}

type serpSearchClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSearchClient creates a SearchProvider backed by a google_shopping
// JSON endpoint.
func NewSearchClient(cfg config.SearchConfig, timeout time.Duration) SearchProvider {
	return &serpSearchClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchResponse struct {
	Error           string    `json:"error"`
	ShoppingResults []Listing `json:"shopping_results"`
}

// Search queries the provider. Transport and provider failures surface
// as ErrUpstream; a missing or empty result list surfaces as ErrNoResults.
func (c *serpSearchClient) Search(ctx context.Context, query, locationHint string, limit int) ([]Listing, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("num", strconv.Itoa(limit))
	if locationHint != "" {
		params.Set("location", locationHint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search provider returned status %d", ErrUpstream, resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode search response: %v", ErrUpstream, err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, result.Error)
	}

	if len(result.ShoppingResults) == 0 {
		return nil, ErrNoResults
	}

	if len(result.ShoppingResults) > limit {
		result.ShoppingResults = result.ShoppingResults[:limit]
	}

	return result.ShoppingResults, nil
}
