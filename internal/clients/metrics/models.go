package metrics

// RawAgentMetrics is the flat agent metrics payload from the metrics
// backend. Rate fields are percentages on the 0-100 scale; the aggregator
// converts them to fractions. Pointer fields distinguish absent from zero
// so defaulting happens exactly once at the aggregation boundary.
type RawAgentMetrics struct {
	TotalRequests    *int             `json:"total_requests"`
	ActiveUsers      *int             `json:"active_users"`
	LLMCalls         *int             `json:"llm_calls"`
	ToolCalls        *int             `json:"tool_calls"`
	AvgLatencyMS     *float64         `json:"avg_latency_ms"`
	P99LatencyMS     *float64         `json:"p99_latency_ms"`
	TTFTMS           *float64         `json:"ttft_ms"`
	ErrorRatePercent *float64         `json:"error_rate"`
	TotalCost        *float64         `json:"total_cost"`
	TotalTokens      *int             `json:"total_tokens"`
	PromptTokens     *int             `json:"prompt_tokens"`
	CompletionTokens *int             `json:"completion_tokens"`
	CostByModel      []RawModelCost   `json:"cost_by_model"`
	RequestsOverTime []RawSeriesPoint `json:"requests_over_time"`
	FinishReasons    map[string]int   `json:"finish_reasons"`
	ToolUsage        []RawToolUsage   `json:"tool_usage"`
}

// RawWorkflowMetrics is the flat workflow metrics payload.
type RawWorkflowMetrics struct {
	TotalExecutions    *int             `json:"total_executions"`
	SuccessRatePercent *float64         `json:"success_rate"`
	FailureRatePercent *float64         `json:"failure_rate"`
	AvgDurationMS      *float64         `json:"avg_duration_ms"`
	P95DurationMS      *float64         `json:"p95_duration_ms"`
	TotalCost          *float64         `json:"total_cost"`
	TotalTokens        *int             `json:"total_tokens"`
	PromptTokens       *int             `json:"prompt_tokens"`
	CompletionTokens   *int             `json:"completion_tokens"`
	CostByModel        []RawModelCost   `json:"cost_by_model"`
	ExecutionsOverTime []RawSeriesPoint `json:"executions_over_time"`
}

// RawModelCost is per-model spend as reported by the backend.
type RawModelCost struct {
	Name   string  `json:"name"`
	Cost   float64 `json:"cost"`
	Tokens int     `json:"tokens"`
}

// RawSeriesPoint is one bucket of a backend time series.
type RawSeriesPoint struct {
	Time  string `json:"time"`
	Value int    `json:"value"`
}

// RawToolUsage is one tool's usage row. SuccessRate is a 0-100 percentage.
type RawToolUsage struct {
	Name               string   `json:"name"`
	Count              *int     `json:"count"`
	AvgLatencyMS       *float64 `json:"avg_latency_ms"`
	Failures           *int     `json:"failures"`
	SuccessRatePercent *float64 `json:"success_rate"`
}
