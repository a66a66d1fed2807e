// Package apiclient talks to the runlog HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"runlog/internal/types"
)

// Error is a non-2xx response from the API
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %d", e.StatusCode)
}

// RefetchTimeout bounds a refetch. It outlasts the five minute browser
// authorization a sync may wait on.
const RefetchTimeout = 6 * time.Minute

// Client is a runlog API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at baseURL, e.g. http://localhost:3000
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) Health(ctx context.Context) error {
	var out types.HealthResponse
	return c.do(ctx, http.MethodGet, "/health", nil, &out)
}

// Activities lists activities; activityType may be empty for the default
func (c *Client) Activities(ctx context.Context, activityType string) ([]types.Activity, error) {
	path := "/api/activities"
	if activityType != "" {
		path += "?" + url.Values{"type": {activityType}}.Encode()
	}
	var out []types.Activity
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) ActivityCount(ctx context.Context) (int, error) {
	var out types.CountResponse
	err := c.do(ctx, http.MethodGet, "/api/activities/count", nil, &out)
	return out.Count, err
}

func (c *Client) TokenStatus(ctx context.Context) (types.TokenStatus, error) {
	var out types.TokenStatus
	err := c.do(ctx, http.MethodGet, "/api/activities/token-status", nil, &out)
	return out, err
}

// Refetch asks the server to sync from Strava. The client timeout is raised
// to RefetchTimeout for this call.
func (c *Client) Refetch(ctx context.Context) (types.RefetchResponse, error) {
	hc := *c.httpClient
	if hc.Timeout > 0 && hc.Timeout < RefetchTimeout {
		hc.Timeout = RefetchTimeout
	}
	var out types.RefetchResponse
	err := c.doWith(ctx, &hc, http.MethodPost, "/api/activities/refetch", nil, &out)
	return out, err
}

// RenameActivity changes an activity's name
func (c *Client) RenameActivity(ctx context.Context, id, name string) error {
	var out types.MessageResponse
	return c.do(ctx, http.MethodPut, "/api/activities/"+url.PathEscape(id), types.UpdateActivityRequest{Name: name}, &out)
}

func (c *Client) Weeks(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, http.MethodGet, "/api/weeks", nil, &out)
	return out, err
}

func (c *Client) WeekSummaries(ctx context.Context) ([]types.WeekSummary, error) {
	var out []types.WeekSummary
	err := c.do(ctx, http.MethodGet, "/api/weeks/summaries", nil, &out)
	return out, err
}

func (c *Client) Week(ctx context.Context, weekStart string) (types.Week, error) {
	var out types.Week
	err := c.do(ctx, http.MethodGet, "/api/weeks/"+url.PathEscape(weekStart), nil, &out)
	return out, err
}

func (c *Client) TrainingBlocks(ctx context.Context) ([]types.TrainingBlock, error) {
	var out []types.TrainingBlock
	err := c.do(ctx, http.MethodGet, "/api/training-blocks", nil, &out)
	return out, err
}

func (c *Client) CreateTrainingBlock(ctx context.Context, req types.CreateTrainingBlockRequest) (types.TrainingBlock, error) {
	var out types.TrainingBlock
	err := c.do(ctx, http.MethodPost, "/api/training-blocks", req, &out)
	return out, err
}

func (c *Client) UpdateTrainingBlock(ctx context.Context, id string, req types.UpdateTrainingBlockRequest) (types.TrainingBlock, error) {
	var out types.TrainingBlock
	err := c.do(ctx, http.MethodPatch, "/api/training-blocks/"+url.PathEscape(id), req, &out)
	return out, err
}

func (c *Client) DeleteTrainingBlock(ctx context.Context, id string) error {
	var out types.MessageResponse
	return c.do(ctx, http.MethodDelete, "/api/training-blocks/"+url.PathEscape(id), nil, &out)
}

func (c *Client) TrainingBlockWeeks(ctx context.Context, id string) (types.TrainingBlockWeeks, error) {
	var out types.TrainingBlockWeeks
	err := c.do(ctx, http.MethodGet, "/api/training-blocks/"+url.PathEscape(id)+"/weeks", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doWith(ctx, c.httpClient, method, path, body, out)
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e types.ErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &e)
		if e.Message == "" {
			e.Message = strings.TrimSpace(string(raw))
		}
		return &Error{StatusCode: resp.StatusCode, Code: e.Code, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
