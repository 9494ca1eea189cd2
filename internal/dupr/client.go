// Package dupr implements a REST client for the DUPR rating service.
package dupr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/dupr-insight/internal/config"
	"github.com/yourusername/dupr-insight/internal/metrics"
)

// Client is the DUPR API client. All requests go through the shared
// rate-limited HTTP client; the bearer token is guarded by mu because crawls
// refresh it mid-flight when the API returns 401/403.
type Client struct {
	httpClient  *RateLimitedHTTPClient
	config      *config.DUPRConfig
	baseURL     string
	token       string
	tokenExpiry time.Time
	mu          sync.RWMutex
	logger      *logrus.Logger
}

// apiResponse is the envelope every DUPR endpoint wraps its payload in.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// page is the paged variant of a result payload.
type page struct {
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
	Total  int             `json:"total"`
	Hits   json.RawMessage `json:"hits"`
}

// NewClient creates a new DUPR API client
func NewClient(cfg *config.DUPRConfig, httpClient *RateLimitedHTTPClient, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		baseURL:    cfg.APIURL,
		logger:     logger,
	}
}

// SetToken stores the bearer token used for authenticated requests.
func (c *Client) SetToken(token string, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.tokenExpiry = expiry
}

// Token returns the current bearer token, empty when not logged in.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// NeedsRefresh reports whether the token is absent or within five minutes
// of expiry.
func (c *Client) NeedsRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return true
	}
	return time.Until(c.tokenExpiry) < 5*time.Minute
}

// post performs an authenticated POST with a JSON body. On 401/403 it
// refreshes the token once and retries; a second auth failure surfaces as an
// AuthenticationError.
func (c *Client) post(ctx context.Context, path string, payload interface{}, endpoint string) (json.RawMessage, error) {
	return c.request(ctx, http.MethodPost, path, payload, endpoint, true)
}

// get performs an authenticated GET.
func (c *Client) get(ctx context.Context, path string, endpoint string) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, path, nil, endpoint, true)
}

func (c *Client) request(
	ctx context.Context,
	method, path string,
	payload interface{},
	endpoint string,
	allowReauth bool,
) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	metrics.RecordCrawlRequest(endpoint)
	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"method":   method,
	}).Debug("Making DUPR API request")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		if !allowReauth {
			return nil, NewAuthenticationError(
				fmt.Sprintf("request to %s rejected after token refresh", endpoint), nil)
		}
		c.logger.WithField("endpoint", endpoint).Warn("Token rejected, refreshing and retrying")
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		return c.request(ctx, method, path, payload, endpoint, false)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewAPIError(endpoint, resp.StatusCode, string(bytes.TrimSpace(raw)), nil)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	if envelope.Message != "" && len(envelope.Result) == 0 {
		return nil, NewAPIError(endpoint, resp.StatusCode, envelope.Message, nil)
	}

	return envelope.Result, nil
}

// unmarshalResult decodes a result payload, tolerating an absent body.
func unmarshalResult(result json.RawMessage, v interface{}) error {
	if len(result) == 0 {
		return fmt.Errorf("empty result payload")
	}
	return json.Unmarshal(result, v)
}

// handlePaging extracts the hits from a paged result and computes the next
// offset, nil when the final page has been consumed.
func handlePaging(result json.RawMessage) (*int, json.RawMessage, error) {
	var p page
	if err := json.Unmarshal(result, &p); err != nil {
		return nil, nil, fmt.Errorf("failed to decode page: %w", err)
	}
	next := p.Offset + p.Limit
	if next >= p.Total {
		return nil, p.Hits, nil
	}
	return &next, p.Hits, nil
}
