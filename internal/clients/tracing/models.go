package tracing

// RawTrace is the wire shape of a full trace from the tracing backend:
// a flat span list in arrival order, Jaeger style.
type RawTrace struct {
	TraceID  string    `json:"traceID"`
	Spans    []RawSpan `json:"spans"`
	Warnings []string  `json:"warnings,omitempty"`
}

// RawSpan is a single span as emitted by the tracing backend. Attributes
// arrive as an ordered tag list, not a fixed record; keys may repeat and
// values are weakly typed.
type RawSpan struct {
	SpanID        string      `json:"spanID"`
	OperationName string      `json:"operationName"`
	References    []Reference `json:"references"`
	StartTimeUS   int64       `json:"startTime"`
	DurationUS    int64       `json:"duration"`
	Tags          []Tag       `json:"tags"`
}

// Tag is one weakly-typed key/value attribute on a span.
type Tag struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Reference links a span to its parent. An empty reference list marks a
// root candidate.
type Reference struct {
	RefType string `json:"refType"`
	TraceID string `json:"traceID"`
	SpanID  string `json:"spanID"`
}

// TraceSummary is one row of a trace list response.
type TraceSummary struct {
	TraceID       string `json:"traceID"`
	RootOperation string `json:"rootOperation"`
	StartTimeUS   int64  `json:"startTime"`
	DurationUS    int64  `json:"duration"`
	Status        string `json:"status"`
	SpanCount     int    `json:"spanCount"`
}
