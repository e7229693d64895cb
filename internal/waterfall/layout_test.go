package waterfall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracelens/internal/models"
)

func trace(startUS int64, spans ...models.Span) *models.Trace {
	return &models.Trace{ID: "t", StartTimeUS: startUS, Spans: spans}
}

func TestLayoutProportions(t *testing.T) {
	boxes := Layout(trace(0,
		models.Span{ID: "root", StartTimeUS: 0, DurationUS: 1000},
		models.Span{ID: "half", StartTimeUS: 250, DurationUS: 500},
	))

	require.Len(t, boxes, 2)
	assert.Equal(t, "root", boxes[0].SpanID)
	assert.InDelta(t, 0.0, boxes[0].OffsetFraction, 1e-9)
	assert.InDelta(t, 1.0, boxes[0].WidthFraction, 1e-9)
	assert.InDelta(t, 0.25, boxes[1].OffsetFraction, 1e-9)
	assert.InDelta(t, 0.5, boxes[1].WidthFraction, 1e-9)
}

func TestLayoutWidthFloor(t *testing.T) {
	boxes := Layout(trace(0,
		models.Span{ID: "root", StartTimeUS: 0, DurationUS: 1_000_000},
		models.Span{ID: "blip", StartTimeUS: 500_000, DurationUS: 0},
		models.Span{ID: "tiny", StartTimeUS: 600_000, DurationUS: 10},
	))

	require.Len(t, boxes, 3)
	assert.Equal(t, MinWidthFraction, boxes[1].WidthFraction)
	assert.Equal(t, MinWidthFraction, boxes[2].WidthFraction)
}

func TestLayoutZeroTotalDuration(t *testing.T) {
	boxes := Layout(trace(100,
		models.Span{ID: "a", StartTimeUS: 100, DurationUS: 0},
		models.Span{ID: "b", StartTimeUS: 100, DurationUS: 0},
	))

	require.Len(t, boxes, 2)
	for _, box := range boxes {
		assert.Equal(t, 0.0, box.OffsetFraction)
		assert.Equal(t, MinWidthFraction, box.WidthFraction)
	}
}

func TestLayoutClampsOffset(t *testing.T) {
	// A span that starts before the trace root (clock skew) must not
	// produce a negative offset.
	boxes := Layout(trace(1000,
		models.Span{ID: "root", StartTimeUS: 1000, DurationUS: 100},
		models.Span{ID: "skewed", StartTimeUS: 900, DurationUS: 50},
	))

	require.Len(t, boxes, 2)
	assert.Equal(t, 0.0, boxes[1].OffsetFraction)
}

func TestLayoutPreservesSpanOrder(t *testing.T) {
	boxes := Layout(trace(0,
		models.Span{ID: "late", StartTimeUS: 900, DurationUS: 100},
		models.Span{ID: "early", StartTimeUS: 0, DurationUS: 100},
	))

	require.Len(t, boxes, 2)
	assert.Equal(t, "late", boxes[0].SpanID)
	assert.Equal(t, "early", boxes[1].SpanID)
}
