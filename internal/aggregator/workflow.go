package aggregator

import (
	"tracelens/internal/clients/metrics"
	"tracelens/internal/models"
)

// AggregateWorkflow normalizes a raw workflow metrics payload. Success
// and failure rates are converted from percentages but otherwise passed
// through as the backend reported them; they are not re-derived from each
// other and are not forced to sum to 1.
func AggregateWorkflow(raw *metrics.RawWorkflowMetrics) models.WorkflowMetrics {
	if raw == nil {
		raw = &metrics.RawWorkflowMetrics{}
	}

	return models.WorkflowMetrics{
		Executions: models.ExecutionMetrics{
			Total:       intOr(raw.TotalExecutions, 0),
			SuccessRate: percentToFraction(floatOr(raw.SuccessRatePercent, 0)),
			FailureRate: percentToFraction(floatOr(raw.FailureRatePercent, 0)),
		},
		Latency: models.WorkflowLatency{
			AvgDuration: floatOr(raw.AvgDurationMS, 0),
			P95:         floatOr(raw.P95DurationMS, 0),
		},
		Cost: models.WorkflowCost{
			Total:   floatOr(raw.TotalCost, 0),
			ByModel: modelCosts(raw.CostByModel),
		},
		Tokens: models.WorkflowTokens{
			Total:      intOr(raw.TotalTokens, 0),
			Prompt:     intOr(raw.PromptTokens, 0),
			Completion: intOr(raw.CompletionTokens, 0),
		},
		Charts: models.WorkflowCharts{
			ExecutionsOverTime: executionSeries(raw.ExecutionsOverTime),
		},
	}
}

func executionSeries(points []metrics.RawSeriesPoint) []models.ExecutionsPoint {
	series := make([]models.ExecutionsPoint, 0, len(points))
	for _, p := range points {
		series = append(series, models.ExecutionsPoint{Time: p.Time, Executions: p.Value})
	}
	return series
}
