package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Config holds the connection settings for the platform API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
}

// Client is a pure HTTP client for the platform API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new platform API client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the platform.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the platform and returns the response body.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// Chat sends a message to the security assistant.
func (c *Client) Chat(ctx context.Context, message string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, "/v1/chat", nil, map[string]string{
		"message": message,
	})
}

// GetRiskScore returns the user's current score record.
func (c *Client) GetRiskScore(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/risk/"+url.PathEscape(userID), nil, nil)
}

// CalculateRisk recomputes the user's score.
func (c *Client) CalculateRisk(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, "/v1/risk/"+url.PathEscape(userID)+"/calculate", nil, nil)
}

// GetRiskHistory returns the user's score history, newest first.
func (c *Client) GetRiskHistory(ctx context.Context, userID string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/v1/risk/"+url.PathEscape(userID)+"/history", q, nil)
}

// AnalyzeBehavior returns the user's behavioral analysis.
func (c *Client) AnalyzeBehavior(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/advisor/"+url.PathEscape(userID)+"/analysis", nil, nil)
}

// GetRecommendations returns prioritized focus areas for the user.
func (c *Client) GetRecommendations(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/advisor/"+url.PathEscape(userID)+"/recommendations", nil, nil)
}

// ListTrainings returns the training catalog, or a user's assigned
// modules when userID is non-empty.
func (c *Client) ListTrainings(ctx context.Context, userID string) (json.RawMessage, error) {
	path := "/v1/trainings"
	if userID != "" {
		path = "/v1/trainings/user/" + url.PathEscape(userID)
	}
	return c.doRequest(ctx, http.MethodGet, path, nil, nil)
}
