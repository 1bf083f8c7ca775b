// Package scoring is the client for the remote store profitability model.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storeradar/radar/internal/prediction"
	"github.com/storeradar/radar/internal/provider/resilience"
)

const (
	// ProviderName identifies the scoring service.
	ProviderName = "scoring"

	// DefaultBaseURL is the hosted scoring service.
	DefaultBaseURL = "https://backdata25.onrender.com"

	// DefaultTimeout bounds one prediction call. The hosted service cold
	// starts slowly.
	DefaultTimeout = 60 * time.Second

	maxErrorBody = 64 << 10
)

// StatusError is a non-2xx answer from the scoring service. Its message is
// the response body as sent.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return e.Body
}

// Metrics records outbound call durations.
type Metrics interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// ClientConfig holds configuration for the scoring client.
type ClientConfig struct {
	// BaseURL is the service root; /predict is appended.
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a single-shot resilient client.
	HTTPClient *resilience.Client

	// Metrics is optional.
	Metrics Metrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client posts prediction requests to the scoring service.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	metrics    Metrics
	logger     zerolog.Logger
}

// NewClient creates a new scoring client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.SingleShotClientConfig(ProviderName, DefaultTimeout))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Predict sends one prediction request.
func (c *Client) Predict(ctx context.Context, req prediction.Request) (result *prediction.Result, err error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordRequest(ProviderName, "predict", time.Since(start), err)
		}
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(text)).
			Msg("scoring service rejected prediction")
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	var out prediction.Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	c.logger.Debug().
		Float64("prob_rentable", out.Probability).
		Bool("rentable", out.Profitable).
		Dur("duration", time.Since(start)).
		Msg("prediction received")

	return &out, nil
}
