// Package tracing provides a client for the distributed tracing backend
// that records agent and workflow executions.
package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tracelens/internal/models"
)

// Client implements read-only HTTP access to the tracing backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new tracing backend client. token may be empty;
// requests then proceed unauthenticated and the backend decides whether
// to reject them.
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

// ListParams are the query parameters for trace list requests.
type ListParams struct {
	AgentID    string
	WorkflowID string
	Status     string
	Limit      int
	Offset     int
}

// Values encodes the parameters, omitting empty filters.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.AgentID != "" {
		v.Set("agent_id", p.AgentID)
	}
	if p.WorkflowID != "" {
		v.Set("workflow_id", p.WorkflowID)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("offset", strconv.Itoa(p.Offset))
	return v
}

// ListTraces fetches recent trace summaries matching the filter.
func (c *Client) ListTraces(ctx context.Context, params ListParams) ([]TraceSummary, error) {
	body, err := c.doRequest(ctx, "/api/traces", params.Values())
	if err != nil {
		c.logger.Error("failed to list traces", "agent_id", params.AgentID, "workflow_id", params.WorkflowID, "error", err)
		return nil, err
	}

	// The backend wraps list responses in a data envelope.
	var envelope struct {
		Data []TraceSummary `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &models.MalformedPayloadError{Endpoint: "/api/traces", Err: err}
	}
	return envelope.Data, nil
}

// GetTrace fetches a single complete trace with all spans.
func (c *Client) GetTrace(ctx context.Context, traceID string) (*RawTrace, error) {
	path := fmt.Sprintf("/api/traces/%s", traceID)
	body, err := c.doRequest(ctx, path, nil)
	if err != nil {
		c.logger.Error("failed to fetch trace", "trace_id", traceID, "error", err)
		return nil, err
	}

	var envelope struct {
		Data []RawTrace `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &models.MalformedPayloadError{Endpoint: path, Err: err}
	}
	if len(envelope.Data) == 0 {
		return nil, &models.MalformedPayloadError{Endpoint: path, Err: fmt.Errorf("trace %s not found in response", traceID)}
	}
	return &envelope.Data[0], nil
}

// doRequest performs an authenticated GET against the tracing backend.
func (c *Client) doRequest(ctx context.Context, apiPath string, params url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	u.Path = apiPath
	if params != nil {
		u.RawQuery = params.Encode()
	}

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
		return nil, fmt.Errorf("tracing backend request failed: %w", err)
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
