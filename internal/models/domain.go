// Package models defines the normalized domain model shared across TraceLens.
package models

import "time"

// Trace and span status values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Span kinds, in classification priority order.
const (
	KindLLM   = "llm"
	KindTool  = "tool"
	KindAgent = "agent"
	KindChain = "chain"
)

// Trace is a normalized agent or workflow execution trace.
type Trace struct {
	ID                string    `json:"id"`
	RootOperationName string    `json:"root_operation_name"`
	StartedAt         time.Time `json:"started_at"`
	Status            string    `json:"status"`
	LatencyDisplay    string    `json:"latency_display"`
	// StartTimeUS is the root span start in microseconds since epoch.
	// Layout math stays in microseconds to avoid rounding drift.
	StartTimeUS int64  `json:"start_time_us"`
	Spans       []Span `json:"spans"`
}

// Span is a single normalized unit of work within a trace.
// Spans keep raw payload arrival order; consumers match by ID, not position.
type Span struct {
	ID          string         `json:"id"`
	ParentID    string         `json:"parent_id,omitempty"`
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	StartTimeUS int64          `json:"start_time_us"`
	DurationUS  int64          `json:"duration_us"`
	Status      string         `json:"status"`
	Input       any            `json:"input,omitempty"`
	Output      any            `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	TokenUsage  *TokenUsage    `json:"token_usage,omitempty"`
	Metadata    map[string]any `json:"metadata"`
}

// EndTimeUS returns the span end in microseconds since epoch.
// A span with no duration ends where it starts.
func (s *Span) EndTimeUS() int64 {
	return s.StartTimeUS + s.DurationUS
}

// TokenUsage holds prompt/completion token counts for an LLM span.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}
