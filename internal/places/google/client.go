// Package google implements place search with the Google Maps Places
// Autocomplete and Geocoding web services.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storeradar/radar/internal/places"
	"github.com/storeradar/radar/internal/provider/resilience"
)

const (
	// ProviderName identifies this places provider.
	ProviderName = "google-places"

	// DefaultBaseURL is the Google Maps web services root.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// Metrics records outbound call durations.
type Metrics interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// ClientConfig holds configuration for the Google places client.
type ClientConfig struct {
	// APIKey is the Google Maps API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to Google Maps API).
	BaseURL string

	// Language for results (optional, defaults to "es").
	Language string

	// Region biases results to a ccTLD (optional, defaults to "mx").
	Region string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Metrics is optional.
	Metrics Metrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Maps places client.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	region     string
	httpClient *resilience.Client
	metrics    Metrics
	logger     zerolog.Logger
}

// NewClient creates a new Google places client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	language := cfg.Language
	if language == "" {
		language = "es"
	}

	region := cfg.Region
	if region == "" {
		region = "mx"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		language:   language,
		region:     region,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Autocomplete returns place predictions for input.
func (c *Client) Autocomplete(ctx context.Context, input string) (out []places.Suggestion, err error) {
	defer c.record("autocomplete", time.Now(), &err)

	params := url.Values{}
	params.Set("input", input)
	params.Set("language", c.language)
	params.Set("components", "country:"+c.region)

	var resp autocompleteResponse
	if err := c.get(ctx, "/place/autocomplete/json", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case statusOK:
	case statusZeroResults:
		return []places.Suggestion{}, nil
	default:
		return nil, &APIError{Status: resp.Status, Message: resp.ErrorMessage}
	}

	out = make([]places.Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, places.Suggestion{PlaceID: p.PlaceID, Description: p.Description})
	}
	return out, nil
}

// Resolve geocodes a place id.
func (c *Client) Resolve(ctx context.Context, placeID string) (place *places.Place, err error) {
	defer c.record("geocode", time.Now(), &err)

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("language", c.language)

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case statusOK:
	case statusZeroResults:
		return nil, places.ErrNoResults
	default:
		return nil, &APIError{Status: resp.Status, Message: resp.ErrorMessage}
	}

	if len(resp.Results) == 0 {
		return nil, places.ErrNoResults
	}

	first := resp.Results[0]
	return &places.Place{
		PlaceID: placeID,
		Address: first.FormattedAddress,
		Lat:     first.Geometry.Location.Lat,
		Lng:     first.Geometry.Location.Lng,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) record(operation string, start time.Time, err *error) {
	if c.metrics != nil {
		c.metrics.RecordRequest(ProviderName, operation, time.Since(start), *err)
	}
	if *err != nil {
		c.logger.Debug().Err(*err).Str("operation", operation).Msg("places request failed")
	}
}

// APIError is a non-OK status in a Google response body.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "places api: " + e.Status
	}
	return "places api: " + e.Status + ": " + e.Message
}

type autocompleteResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Predictions  []prediction `json:"predictions"`
}

type prediction struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}
