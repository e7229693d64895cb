// Package aggregator converts raw metrics backend payloads into the
// normalized domain model. Conversions are pure and total: every missing
// field defaults explicitly, and percentage fields become 0-1 fractions
// exactly once, here.
package aggregator

import (
	"math"

	"tracelens/internal/clients/metrics"
	"tracelens/internal/models"
)

// AggregateAgent normalizes a raw agent metrics payload. A nil payload
// yields zero-valued metrics rather than an error.
func AggregateAgent(raw *metrics.RawAgentMetrics) models.AgentMetrics {
	if raw == nil {
		raw = &metrics.RawAgentMetrics{}
	}

	totalRequests := intOr(raw.TotalRequests, 0)
	errorRate := percentToFraction(floatOr(raw.ErrorRatePercent, 0))

	m := models.AgentMetrics{
		Traffic: models.TrafficMetrics{
			TotalRequests: totalRequests,
			ActiveUsers:   intOr(raw.ActiveUsers, 0),
			LLMCalls:      intOr(raw.LLMCalls, 0),
			ToolCalls:     intOr(raw.ToolCalls, 0),
		},
		Latency: models.LatencyMetrics{
			Avg:  floatOr(raw.AvgLatencyMS, 0),
			P99:  floatOr(raw.P99LatencyMS, 0),
			TTFT: floatOr(raw.TTFTMS, 0),
		},
		Errors: models.ErrorMetrics{
			Rate: errorRate,
			// The backend reports a rate, not a count; the count is
			// derived and rounded to the nearest integer.
			Count: int(math.Round(errorRate * float64(totalRequests))),
		},
		Cost: models.CostMetrics{
			Total:   floatOr(raw.TotalCost, 0),
			Tokens:  intOr(raw.TotalTokens, 0),
			ByModel: modelCosts(raw.CostByModel),
			TokenBreakdown: models.TokenBreakdown{
				Prompt:     intOr(raw.PromptTokens, 0),
				Completion: intOr(raw.CompletionTokens, 0),
			},
		},
		Charts: models.AgentCharts{
			RequestsOverTime: requestSeries(raw.RequestsOverTime),
		},
		FinishReasons: raw.FinishReasons,
		ToolUsage:     toolUsage(raw.ToolUsage),
	}
	if m.FinishReasons == nil {
		m.FinishReasons = map[string]int{}
	}
	return m
}

func requestSeries(points []metrics.RawSeriesPoint) []models.RequestsPoint {
	series := make([]models.RequestsPoint, 0, len(points))
	for _, p := range points {
		series = append(series, models.RequestsPoint{Time: p.Time, Requests: p.Value})
	}
	return series
}

func toolUsage(rows []metrics.RawToolUsage) []models.ToolUsageEntry {
	usage := make([]models.ToolUsageEntry, 0, len(rows))
	for _, row := range rows {
		usage = append(usage, models.ToolUsageEntry{
			Name:        row.Name,
			Count:       intOr(row.Count, 0),
			AvgLatency:  floatOr(row.AvgLatencyMS, 0),
			Failures:    intOr(row.Failures, 0),
			SuccessRate: percentToFraction(floatOr(row.SuccessRatePercent, 0)),
		})
	}
	return usage
}

func modelCosts(rows []metrics.RawModelCost) []models.ModelCost {
	costs := make([]models.ModelCost, 0, len(rows))
	for _, row := range rows {
		costs = append(costs, models.ModelCost{Name: row.Name, Cost: row.Cost, Tokens: row.Tokens})
	}
	return costs
}

// percentToFraction converts a backend 0-100 percentage to a 0-1 fraction.
func percentToFraction(pct float64) float64 {
	return pct / 100
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
