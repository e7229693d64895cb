// Package metrics provides a client for the metrics backend that
// aggregates agent and workflow execution statistics server-side.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"tracelens/internal/models"
)

// Client implements read-only HTTP access to the metrics backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new metrics backend client. token may be empty.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetAgentMetrics fetches raw metrics for an agent over a relative time
// range such as "24h".
func (c *Client) GetAgentMetrics(ctx context.Context, agentID, timeRange string) (*RawAgentMetrics, error) {
	path := fmt.Sprintf("/api/agents/%s/metrics", agentID)
	body, err := c.doRequest(ctx, path, timeRange)
	if err != nil {
		c.logger.Error("failed to fetch agent metrics", "agent_id", agentID, "time_range", timeRange, "error", err)
		return nil, err
	}

	var raw RawAgentMetrics
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &models.MalformedPayloadError{Endpoint: path, Err: err}
	}
	return &raw, nil
}

// GetWorkflowMetrics fetches raw metrics for a workflow over a relative
// time range.
func (c *Client) GetWorkflowMetrics(ctx context.Context, workflowID, timeRange string) (*RawWorkflowMetrics, error) {
	path := fmt.Sprintf("/api/workflows/%s/metrics", workflowID)
	body, err := c.doRequest(ctx, path, timeRange)
	if err != nil {
		c.logger.Error("failed to fetch workflow metrics", "workflow_id", workflowID, "time_range", timeRange, "error", err)
		return nil, err
	}

	var raw RawWorkflowMetrics
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &models.MalformedPayloadError{Endpoint: path, Err: err}
	}
	return &raw, nil
}

// doRequest performs an authenticated GET against the metrics backend.
func (c *Client) doRequest(ctx context.Context, apiPath, timeRange string) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	u.Path = apiPath
	params := url.Values{}
	if timeRange != "" {
		params.Set("time_range", timeRange)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metrics backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.StatusError{Endpoint: apiPath, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
