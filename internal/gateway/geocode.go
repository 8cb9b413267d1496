package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smartbasket/internal/config"
)

// Geocoder resolves coordinates to a human-readable city string used as
// the location hint for price lookups.
type Geocoder interface {
	CityFromCoordinates(ctx context.Context, latitude, longitude float64) (string, error)
}

type reverseGeocoder struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGeocoder creates a Geocoder backed by an OpenWeatherMap-style
// reverse geocoding endpoint.
func NewGeocoder(cfg config.GeocoderConfig, timeout time.Duration) Geocoder {
	return &reverseGeocoder{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type geocodeResult struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// CityFromCoordinates returns "Name, State, Country" for the nearest
// place, with empty parts elided. An empty response is ErrNoResults.
func (g *reverseGeocoder) CityFromCoordinates(ctx context.Context, latitude, longitude float64) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("limit", "1")
	params.Set("appid", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: geocoder returned status %d", ErrUpstream, resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("%w: failed to decode geocode response: %v", ErrUpstream, err)
	}

	if len(results) == 0 || results[0].Name == "" {
		return "", ErrNoResults
	}

	parts := []string{results[0].Name}
	if results[0].State != "" {
		parts = append(parts, results[0].State)
	}
	if results[0].Country != "" {
		parts = append(parts, results[0].Country)
	}

	return strings.Join(parts, ", "), nil
}
