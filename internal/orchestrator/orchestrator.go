// Package orchestrator coordinates the backend clients behind the live
// query cache: it resolves a cache key to the right client call and runs
// the raw payload through normalization or aggregation before the result
// is stored.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"tracelens/internal/aggregator"
	"tracelens/internal/clients/metrics"
	"tracelens/internal/clients/tracing"
	"tracelens/internal/livequery"
	"tracelens/internal/normalizer"
)

// Orchestrator dispatches cache fetches to the tracing and metrics
// backends.
type Orchestrator struct {
	tracing *tracing.Client
	metrics *metrics.Client
	logger  *slog.Logger
}

// New creates a new orchestrator.
func New(tracingClient *tracing.Client, metricsClient *metrics.Client, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		tracing: tracingClient,
		metrics: metricsClient,
		logger:  logger,
	}
}

// Fetch loads and normalizes the data identified by a cache key.
func (o *Orchestrator) Fetch(ctx context.Context, key livequery.Key) (any, error) {
	switch key.Kind {
	case livequery.KindTraceList:
		params, err := decodeListParams(key.EntityID)
		if err != nil {
			return nil, err
		}
		return o.tracing.ListTraces(ctx, params)

	case livequery.KindTrace:
		raw, err := o.tracing.GetTrace(ctx, key.EntityID)
		if err != nil {
			return nil, err
		}
		return normalizer.Normalize(raw)

	case livequery.KindAgentMetrics:
		raw, err := o.metrics.GetAgentMetrics(ctx, key.EntityID, key.TimeRange)
		if err != nil {
			return nil, err
		}
		return aggregator.AggregateAgent(raw), nil

	case livequery.KindWorkflowMetrics:
		raw, err := o.metrics.GetWorkflowMetrics(ctx, key.EntityID, key.TimeRange)
		if err != nil {
			return nil, err
		}
		return aggregator.AggregateWorkflow(raw), nil

	default:
		return nil, fmt.Errorf("unknown cache kind %q", key.Kind)
	}
}

// TraceListKey builds the cache key for a trace list query. The filter
// parameters are folded into the key so distinct filters occupy distinct
// cache slots; url.Values encoding keeps the key deterministic.
func TraceListKey(params tracing.ListParams) livequery.Key {
	return livequery.Key{
		Kind:     livequery.KindTraceList,
		EntityID: params.Values().Encode(),
	}
}

// TraceKey builds the cache key for a single trace.
func TraceKey(traceID string) livequery.Key {
	return livequery.Key{Kind: livequery.KindTrace, EntityID: traceID}
}

// AgentMetricsKey builds the cache key for agent metrics.
func AgentMetricsKey(agentID, timeRange string) livequery.Key {
	return livequery.Key{Kind: livequery.KindAgentMetrics, EntityID: agentID, TimeRange: timeRange}
}

// WorkflowMetricsKey builds the cache key for workflow metrics.
func WorkflowMetricsKey(workflowID, timeRange string) livequery.Key {
	return livequery.Key{Kind: livequery.KindWorkflowMetrics, EntityID: workflowID, TimeRange: timeRange}
}

// decodeListParams reverses TraceListKey's encoding.
func decodeListParams(encoded string) (tracing.ListParams, error) {
	values, err := url.ParseQuery(encoded)
	if err != nil {
		return tracing.ListParams{}, fmt.Errorf("invalid trace list key %q: %w", encoded, err)
	}
	limit, _ := strconv.Atoi(values.Get("limit"))
	offset, _ := strconv.Atoi(values.Get("offset"))
	return tracing.ListParams{
		AgentID:    values.Get("agent_id"),
		WorkflowID: values.Get("workflow_id"),
		Status:     values.Get("status"),
		Limit:      limit,
		Offset:     offset,
	}, nil
}
