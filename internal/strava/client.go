package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const BaseURL = "https://www.strava.com/api/v3"

// TokenProvider supplies access tokens and recovers from rejected ones
type TokenProvider interface {
	// AccessToken returns a token valid for at least a few minutes.
	AccessToken(ctx context.Context) (string, error)
	// Refresh forces a refresh-token grant.
	Refresh(ctx context.Context) (string, error)
	// Reauthorize runs the interactive authorization flow again.
	Reauthorize(ctx context.Context) (string, error)
}

// Client is a Strava API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenProvider
	rateLimiter *RateLimiter
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithoutRateLimit disables request pacing
func WithoutRateLimit() Option {
	return func(c *Client) { c.rateLimiter = nil }
}

// NewClient creates a new Strava API client
func NewClient(tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:     BaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		tokens:      tokens,
		rateLimiter: NewRateLimiter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListActivities fetches one page of the athlete's activity summaries
func (c *Client) ListActivities(ctx context.Context, page, perPage int) ([]Activity, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var activities []Activity
	if err := c.do(ctx, http.MethodGet, "/athlete/activities", params, nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// GetActivity fetches the detailed representation of one activity
func (c *Client) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	var a Activity
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/activities/%d", id), nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateActivity renames an activity. Requires the activity:write scope.
func (c *Client) UpdateActivity(ctx context.Context, id int64, update UpdatableActivity) (*Activity, error) {
	var a Activity
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/activities/%d", id), nil, update, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	if c.rateLimiter == nil {
		return 0, 0
	}
	return c.rateLimiter.Status()
}

// do sends one request and decodes the JSON response into out.
// A 401 is retried exactly once: after re-authorization when Strava reports
// a missing scope, after a token refresh otherwise.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("getting access token: %w", err)
	}

	err = c.send(ctx, method, path, params, body, token, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		return err
	}

	if apiErr.MissingScope() {
		token, err = c.tokens.Reauthorize(ctx)
		if err != nil {
			return fmt.Errorf("re-authorizing for missing scope: %w", err)
		}
	} else {
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("refreshing token: %w", err)
		}
	}

	return c.send(ctx, method, path, params, body, token, out)
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, body any, token string, out any) error {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if c.rateLimiter != nil {
		c.rateLimiter.UpdateFromHeaders(resp.Header)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
