// Package suggestions is a Go client for the suggestions API. Besides the
// plain HTTP client it keeps a local history of submitted tracking ids and
// falls back to it, or to a pre-filled email, when the API cannot be reached.
package suggestions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tadweer/tadweer-site/logger"
	"github.com/tadweer/tadweer-site/types"
)

const defaultTimeout = 10 * time.Second

// ClientInterface defines the API operations used by Tracker.
type ClientInterface interface {
	Submit(ctx context.Context, input types.SuggestionCreate) (*types.SuggestionCreated, error)
	Track(ctx context.Context, trackingID string) ([]types.TrackedSuggestion, error)
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("suggestions API returned %d: %s", e.StatusCode, e.Message)
}

// IsClientError reports whether err is an API rejection of the request itself (4xx).
func IsClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}

type Client struct {
	baseURL    string
	adminKey   string
	httpClient *http.Client
}

// NewClient creates a client for the endpoint at baseURL, for example
// https://tadweer.org/api/suggestions. adminKey is only needed for List and UpdateStatus.
func NewClient(baseURL, adminKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminKey:   adminKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Submit sends a public suggestion and returns its tracking id.
func (c *Client) Submit(ctx context.Context, input types.SuggestionCreate) (*types.SuggestionCreated, error) {
	var created types.SuggestionCreated
	if err := c.do(ctx, http.MethodPost, c.baseURL, input, false, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Track looks up a suggestion by tracking id. A miss is an empty slice.
func (c *Client) Track(ctx context.Context, trackingID string) ([]types.TrackedSuggestion, error) {
	params := url.Values{}
	params.Add("tracking_id", trackingID)

	tracked := []types.TrackedSuggestion{}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil, false, &tracked); err != nil {
		return nil, err
	}
	return tracked, nil
}

// List returns every suggestion. Requires the admin key.
func (c *Client) List(ctx context.Context) ([]types.Suggestion, error) {
	all := []types.Suggestion{}
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, true, &all); err != nil {
		return nil, err
	}
	return all, nil
}

// UpdateStatus changes a suggestion's status. Requires the admin key.
func (c *Client) UpdateStatus(ctx context.Context, id string, status types.SuggestionStatus) error {
	update := types.SuggestionStatusUpdate{ID: id, Status: status}
	var resp types.SuccessResponse
	return c.do(ctx, http.MethodPatch, c.baseURL, update, true, &resp)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}, admin bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.adminKey)
	}

	logger.GetLogger().Debugw("Calling suggestions API", "method", method, "url", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
			apiErr.Type = envelope.Type
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
