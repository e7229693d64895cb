package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tracelens/internal/clients/tracing"
	"tracelens/internal/livequery"
	"tracelens/internal/models"
	"tracelens/internal/orchestrator"
	"tracelens/internal/waterfall"
)

const (
	defaultTraceLimit = 20
	defaultTimeRange  = "24h"
)

// Handler serves the dashboard read API over the live query cache.
type Handler struct {
	cache  *livequery.Cache
	logger *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(cache *livequery.Cache, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cache:  cache,
		logger: logger,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/traces", h.HandleTraceList)
		r.Get("/traces/{traceID}", h.HandleTraceDetail)
		r.Get("/traces/{traceID}/waterfall", h.HandleWaterfall)
		r.Get("/agents/{agentID}/metrics", h.HandleAgentMetrics)
		r.Get("/workflows/{workflowID}/metrics", h.HandleWorkflowMetrics)
	})
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)
}

// queryResponse is the tri-state envelope consumed by the dashboard.
// A refresh failure never strips data the client already had.
type queryResponse struct {
	Data      any    `json:"data"`
	Error     string `json:"error,omitempty"`
	IsLoading bool   `json:"isLoading"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// HandleTraceList returns recent trace summaries matching the filter
func (h *Handler) HandleTraceList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), defaultTraceLimit)
	if err != nil {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		http.Error(w, "invalid offset", http.StatusBadRequest)
		return
	}

	params := tracing.ListParams{
		AgentID:    q.Get("agent_id"),
		WorkflowID: q.Get("workflow_id"),
		Status:     q.Get("status"),
		Limit:      limit,
		Offset:     offset,
	}

	res := h.cache.Get(r.Context(), orchestrator.TraceListKey(params))
	h.writeResult(w, res)
}

// HandleTraceDetail returns one normalized trace
func (h *Handler) HandleTraceDetail(w http.ResponseWriter, r *http.Request) {
	traceID := chi.URLParam(r, "traceID")
	res := h.cache.Get(r.Context(), orchestrator.TraceKey(traceID))
	h.writeResult(w, res)
}

// HandleWaterfall returns timeline geometry for one trace. The layout
// is computed on demand from the cached normalized trace.
func (h *Handler) HandleWaterfall(w http.ResponseWriter, r *http.Request) {
	traceID := chi.URLParam(r, "traceID")
	res := h.cache.Get(r.Context(), orchestrator.TraceKey(traceID))
	if trace, ok := res.Data.(*models.Trace); ok {
		res.Data = waterfall.Layout(trace)
	}
	h.writeResult(w, res)
}

// HandleAgentMetrics returns normalized metrics for one agent
func (h *Handler) HandleAgentMetrics(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	timeRange := r.URL.Query().Get("time_range")
	if timeRange == "" {
		timeRange = defaultTimeRange
	}

	res := h.cache.Get(r.Context(), orchestrator.AgentMetricsKey(agentID, timeRange))
	h.writeResult(w, res)
}

// HandleWorkflowMetrics returns normalized metrics for one workflow
func (h *Handler) HandleWorkflowMetrics(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflowID")
	timeRange := r.URL.Query().Get("time_range")
	if timeRange == "" {
		timeRange = defaultTimeRange
	}

	res := h.cache.Get(r.Context(), orchestrator.WorkflowMetricsKey(workflowID, timeRange))
	h.writeResult(w, res)
}

// writeResult maps a cache result onto the wire. Stale data with an
// error flag is still a 200; only a result with no data at all becomes
// an error status.
func (h *Handler) writeResult(w http.ResponseWriter, res livequery.Result) {
	resp := queryResponse{
		Data:      res.Data,
		IsLoading: res.IsLoading,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	if !res.UpdatedAt.IsZero() {
		resp.UpdatedAt = res.UpdatedAt.UTC().Format(time.RFC3339)
	}

	status := http.StatusOK
	if res.Data == nil && res.Err != nil {
		status = errorStatus(res.Err)
		h.logger.Warn("query failed with no cached data", "error", res.Err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// errorStatus picks a response code for a query that produced no data
func errorStatus(err error) int {
	var statusErr *models.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		return http.StatusNotFound
	}
	if errors.Is(err, models.ErrEmptyTrace) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

// HandleHealth returns health status
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReady returns readiness status
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
