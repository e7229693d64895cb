package models

// AgentMetrics is the normalized metrics view for a single agent.
// Rates are 0-1 fractions; the backend reports percentages and the
// aggregator converts them exactly once at the boundary.
type AgentMetrics struct {
	Traffic       TrafficMetrics   `json:"traffic"`
	Latency       LatencyMetrics   `json:"latency"`
	Errors        ErrorMetrics     `json:"errors"`
	Cost          CostMetrics      `json:"cost"`
	Charts        AgentCharts      `json:"charts"`
	FinishReasons map[string]int   `json:"finish_reasons"`
	ToolUsage     []ToolUsageEntry `json:"tool_usage"`
}

// TrafficMetrics groups request volume counters.
type TrafficMetrics struct {
	TotalRequests int `json:"total_requests"`
	ActiveUsers   int `json:"active_users"`
	LLMCalls      int `json:"llm_calls"`
	ToolCalls     int `json:"tool_calls"`
}

// LatencyMetrics groups latency figures in milliseconds.
type LatencyMetrics struct {
	Avg  float64 `json:"avg"`
	P99  float64 `json:"p99"`
	TTFT float64 `json:"ttft"`
}

// ErrorMetrics reports the error rate as a fraction plus a derived count.
// Rate is not asserted to complement the success rate; errors may be a
// subset classification on the backend.
type ErrorMetrics struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// CostMetrics groups spend and token totals.
type CostMetrics struct {
	Total          float64        `json:"total"`
	Tokens         int            `json:"tokens"`
	ByModel        []ModelCost    `json:"by_model"`
	TokenBreakdown TokenBreakdown `json:"token_breakdown"`
}

// ModelCost is per-model spend.
type ModelCost struct {
	Name   string  `json:"name"`
	Cost   float64 `json:"cost"`
	Tokens int     `json:"tokens"`
}

// TokenBreakdown splits tokens by direction.
type TokenBreakdown struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
}

// AgentCharts holds time-series data for chart consumers.
type AgentCharts struct {
	RequestsOverTime []RequestsPoint `json:"requests_over_time"`
}

// RequestsPoint is one bucket of the requests-over-time series.
type RequestsPoint struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
}

// ToolUsageEntry summarizes one tool's call volume and reliability.
type ToolUsageEntry struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	AvgLatency  float64 `json:"avg_latency"`
	Failures    int     `json:"failures"`
	SuccessRate float64 `json:"success_rate"`
}

// WorkflowMetrics is the normalized metrics view for a workflow.
type WorkflowMetrics struct {
	Executions ExecutionMetrics `json:"executions"`
	Latency    WorkflowLatency  `json:"latency"`
	Cost       WorkflowCost     `json:"cost"`
	Tokens     WorkflowTokens   `json:"tokens"`
	Charts     WorkflowCharts   `json:"charts"`
}

// ExecutionMetrics reports execution volume and outcome fractions.
// Success and failure rates are independently backend-reported and are
// passed through; they are not forced to sum to 1.
type ExecutionMetrics struct {
	Total       int     `json:"total"`
	SuccessRate float64 `json:"success_rate"`
	FailureRate float64 `json:"failure_rate"`
}

// WorkflowLatency groups workflow duration figures in milliseconds.
type WorkflowLatency struct {
	AvgDuration float64 `json:"avg_duration"`
	P95         float64 `json:"p95"`
}

// WorkflowCost groups workflow spend.
type WorkflowCost struct {
	Total   float64     `json:"total"`
	ByModel []ModelCost `json:"by_model"`
}

// WorkflowTokens groups workflow token totals.
type WorkflowTokens struct {
	Total      int `json:"total"`
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
}

// WorkflowCharts holds workflow time-series data.
type WorkflowCharts struct {
	ExecutionsOverTime []ExecutionsPoint `json:"executions_over_time"`
}

// ExecutionsPoint is one bucket of the executions-over-time series.
type ExecutionsPoint struct {
	Time       string `json:"time"`
	Executions int    `json:"executions"`
}
