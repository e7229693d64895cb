// Package normalizer converts raw tracing backend payloads into the
// stable domain model consumed by the dashboard.
package normalizer

import (
	"fmt"
	"time"

	"tracelens/internal/clients/tracing"
	"tracelens/internal/models"
)

// Normalize converts a raw trace into a domain Trace. It is total over
// missing optional fields, which degrade to defaults; it errors only on
// a structural violation, which today means a trace with no spans.
// Spans keep their raw arrival order and are never re-sorted.
func Normalize(raw *tracing.RawTrace) (*models.Trace, error) {
	if len(raw.Spans) == 0 {
		return nil, fmt.Errorf("trace %s: %w", raw.TraceID, models.ErrEmptyTrace)
	}

	spanIDs := make(map[string]struct{}, len(raw.Spans))
	for _, s := range raw.Spans {
		spanIDs[s.SpanID] = struct{}{}
	}

	spans := make([]models.Span, 0, len(raw.Spans))
	rootIdx := -1
	failed := false
	for i, rawSpan := range raw.Spans {
		span := classify(rawSpan)

		// A parent reference that points outside the trace is never
		// followed; the span becomes a root candidate instead.
		if span.ParentID != "" {
			if _, ok := spanIDs[span.ParentID]; !ok {
				span.ParentID = ""
			}
		}

		// First root candidate in raw order wins.
		if span.ParentID == "" && rootIdx == -1 {
			rootIdx = i
		}
		if span.Status == models.StatusFailed {
			failed = true
		}
		spans = append(spans, span)
	}
	if rootIdx == -1 {
		rootIdx = 0
	}
	root := spans[rootIdx]

	status := models.StatusSuccess
	if failed {
		status = models.StatusFailed
	}

	return &models.Trace{
		ID:                raw.TraceID,
		RootOperationName: root.Name,
		StartedAt:         time.UnixMicro(root.StartTimeUS).UTC(),
		StartTimeUS:       root.StartTimeUS,
		Status:            status,
		LatencyDisplay:    FormatLatency(root.DurationUS),
		Spans:             spans,
	}, nil
}

// FormatLatency renders a duration in microseconds for display: whole
// milliseconds below one second, seconds with two decimals from there up.
func FormatLatency(durationUS int64) string {
	ms := durationUS / 1000
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(durationUS)/1e6)
}
