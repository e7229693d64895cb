// Package waterfall computes timeline geometry for normalized traces.
package waterfall

import "tracelens/internal/models"

// MinWidthFraction is the rendering floor for span bars. Zero-duration
// spans still need to be visible and clickable, so bars never shrink
// below 1% of the timeline. This is a UX policy, not a measurement;
// consumers needing true geometry should read the span's duration, not
// the bar width.
const MinWidthFraction = 0.01

// SpanBox places one span on the timeline as fractions of total trace
// duration.
type SpanBox struct {
	SpanID         string  `json:"span_id"`
	OffsetFraction float64 `json:"offset_fraction"`
	WidthFraction  float64 `json:"width_fraction"`
}

// Layout computes per-span offset and width for timeline rendering. It is
// a pure function over the trace; all math stays in microseconds. Boxes
// follow the trace's span order (arrival order), not start-time order, so
// selection logic must match by span id, never by position.
func Layout(t *models.Trace) []SpanBox {
	total := totalDurationUS(t)
	if total <= 0 {
		// Degenerate trace: render every span as a zero-width marker at
		// offset 0, with a unit denominator to avoid dividing by zero.
		total = 1
	}

	boxes := make([]SpanBox, 0, len(t.Spans))
	for i := range t.Spans {
		span := &t.Spans[i]
		offset := float64(span.StartTimeUS-t.StartTimeUS) / float64(total)
		offset = clamp01(offset)

		width := float64(span.DurationUS) / float64(total)
		if width < MinWidthFraction {
			width = MinWidthFraction
		}

		boxes = append(boxes, SpanBox{
			SpanID:         span.ID,
			OffsetFraction: offset,
			WidthFraction:  width,
		})
	}
	return boxes
}

// totalDurationUS is the distance from trace start to the latest span
// end, in microseconds.
func totalDurationUS(t *models.Trace) int64 {
	var maxEnd int64
	for i := range t.Spans {
		if end := t.Spans[i].EndTimeUS(); end > maxEnd {
			maxEnd = end
		}
	}
	return maxEnd - t.StartTimeUS
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
