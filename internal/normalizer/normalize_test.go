package normalizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracelens/internal/clients/tracing"
	"tracelens/internal/models"
)

func span(id, parentID, op string, start, duration int64, tags ...tracing.Tag) tracing.RawSpan {
	s := tracing.RawSpan{
		SpanID:        id,
		OperationName: op,
		StartTimeUS:   start,
		DurationUS:    duration,
		Tags:          tags,
	}
	if parentID != "" {
		s.References = []tracing.Reference{{RefType: "CHILD_OF", SpanID: parentID}}
	}
	return s
}

func TestNormalizeEmptyTrace(t *testing.T) {
	_, err := Normalize(&tracing.RawTrace{TraceID: "t-empty"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmptyTrace))
}

func TestNormalizeAgentRun(t *testing.T) {
	raw := &tracing.RawTrace{
		TraceID: "t-1",
		Spans: []tracing.RawSpan{
			span("r", "", "agent_run", 1_000_000, 500_000,
				tracing.Tag{Key: "error", Value: false},
			),
			span("c1", "r", "chat openai", 1_010_000, 400_000,
				tracing.Tag{Key: "gen_ai.system", Value: "openai"},
				tracing.Tag{Key: "gen_ai.usage.total_tokens", Value: float64(42)},
			),
		},
	}

	trace, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "t-1", trace.ID)
	assert.Equal(t, "agent_run", trace.RootOperationName)
	assert.Equal(t, models.StatusSuccess, trace.Status)
	assert.Equal(t, "500ms", trace.LatencyDisplay)
	require.Len(t, trace.Spans, 2)

	llm := trace.Spans[1]
	assert.Equal(t, models.KindLLM, llm.Kind)
	assert.Equal(t, "r", llm.ParentID)
	require.NotNil(t, llm.TokenUsage)
	assert.Equal(t, 42, llm.TokenUsage.Total)
}

func TestNormalizeIsIdempotentOverInput(t *testing.T) {
	raw := &tracing.RawTrace{
		TraceID: "t-2",
		Spans: []tracing.RawSpan{
			span("a", "", "run", 0, 100),
			span("b", "a", "tool:search", 10, 50),
		},
	}

	first, err := Normalize(raw)
	require.NoError(t, err)
	second, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeRootSelection(t *testing.T) {
	t.Run("first parentless span wins", func(t *testing.T) {
		raw := &tracing.RawTrace{
			TraceID: "t-3",
			Spans: []tracing.RawSpan{
				span("a", "b", "child", 10, 10),
				span("b", "", "root", 0, 100),
				span("c", "", "other", 20, 10),
			},
		}
		trace, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, "root", trace.RootOperationName)
		assert.Equal(t, int64(0), trace.StartTimeUS)
	})

	t.Run("unmatched parent makes a root candidate", func(t *testing.T) {
		raw := &tracing.RawTrace{
			TraceID: "t-4",
			Spans: []tracing.RawSpan{
				span("a", "ghost", "orphan", 5, 100),
				span("b", "a", "child", 10, 10),
			},
		}
		trace, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, "orphan", trace.RootOperationName)
		// The dangling reference must not survive into the model.
		assert.Equal(t, "", trace.Spans[0].ParentID)
	})

	t.Run("no parentless span falls back to first", func(t *testing.T) {
		raw := &tracing.RawTrace{
			TraceID: "t-5",
			Spans: []tracing.RawSpan{
				span("a", "b", "first", 0, 50),
				span("b", "a", "second", 10, 20),
			},
		}
		trace, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, "first", trace.RootOperationName)
	})
}

func TestNormalizeTraceStatus(t *testing.T) {
	raw := &tracing.RawTrace{
		TraceID: "t-6",
		Spans: []tracing.RawSpan{
			span("a", "", "run", 0, 100),
			span("b", "a", "step", 10, 20,
				tracing.Tag{Key: "error", Value: true},
			),
		},
	}
	trace, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, trace.Status)
	assert.Equal(t, models.StatusSuccess, trace.Spans[0].Status)
	assert.Equal(t, models.StatusFailed, trace.Spans[1].Status)
}

func TestClassifySpanKind(t *testing.T) {
	tests := []struct {
		name string
		raw  tracing.RawSpan
		want string
	}{
		{"gen_ai system tag", span("s", "", "chat", 0, 1, tracing.Tag{Key: "gen_ai.system", Value: "anthropic"}), models.KindLLM},
		{"legacy llm system tag", span("s", "", "chat", 0, 1, tracing.Tag{Key: "llm.system", Value: "openai"}), models.KindLLM},
		{"tool name tag", span("s", "", "lookup", 0, 1, tracing.Tag{Key: "tool.name", Value: "search"}), models.KindTool},
		{"tool operation prefix", span("s", "", "tool:search", 0, 1), models.KindTool},
		{"agent name tag", span("s", "", "plan", 0, 1, tracing.Tag{Key: "gen_ai.agent.name", Value: "planner"}), models.KindAgent},
		{"agent operation prefix", span("s", "", "agent:planner", 0, 1), models.KindAgent},
		{"nothing recognized", span("s", "", "load_state", 0, 1), models.KindChain},
		// An LLM span may also carry a tool tag; the more specific kind wins.
		{"llm beats tool", span("s", "", "chat", 0, 1,
			tracing.Tag{Key: "gen_ai.system", Value: "openai"},
			tracing.Tag{Key: "tool.name", Value: "search"},
		), models.KindLLM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.raw).Kind)
		})
	}
}

func TestTokenUsageAliases(t *testing.T) {
	t.Run("absent counts leave usage nil", func(t *testing.T) {
		s := classify(span("s", "", "chat", 0, 1))
		assert.Nil(t, s.TokenUsage)
	})

	t.Run("generic key wins over legacy", func(t *testing.T) {
		s := classify(span("s", "", "chat", 0, 1,
			tracing.Tag{Key: "gen_ai.usage.prompt_tokens", Value: float64(10)},
			tracing.Tag{Key: "llm.usage.prompt_tokens", Value: float64(99)},
		))
		require.NotNil(t, s.TokenUsage)
		assert.Equal(t, 10, s.TokenUsage.Prompt)
	})

	t.Run("legacy key alone is honored", func(t *testing.T) {
		s := classify(span("s", "", "chat", 0, 1,
			tracing.Tag{Key: "llm.usage.completion_tokens", Value: float64(7)},
		))
		require.NotNil(t, s.TokenUsage)
		assert.Equal(t, 7, s.TokenUsage.Completion)
		assert.Equal(t, 0, s.TokenUsage.Prompt)
	})

	t.Run("stringified counts are parsed", func(t *testing.T) {
		s := classify(span("s", "", "chat", 0, 1,
			tracing.Tag{Key: "gen_ai.usage.total_tokens", Value: "123"},
		))
		require.NotNil(t, s.TokenUsage)
		assert.Equal(t, 123, s.TokenUsage.Total)
	})
}

func TestErrorSignalsAreIndependent(t *testing.T) {
	t.Run("message without flag", func(t *testing.T) {
		s := classify(span("s", "", "step", 0, 1,
			tracing.Tag{Key: "error.message", Value: "timed out"},
		))
		assert.Equal(t, models.StatusSuccess, s.Status)
		assert.Equal(t, "timed out", s.Error)
	})

	t.Run("flag without message", func(t *testing.T) {
		s := classify(span("s", "", "step", 0, 1,
			tracing.Tag{Key: "error", Value: true},
		))
		assert.Equal(t, models.StatusFailed, s.Status)
		assert.Equal(t, "", s.Error)
	})

	t.Run("stringified flag", func(t *testing.T) {
		s := classify(span("s", "", "step", 0, 1,
			tracing.Tag{Key: "error", Value: "true"},
		))
		assert.Equal(t, models.StatusFailed, s.Status)
	})

	t.Run("false flag", func(t *testing.T) {
		s := classify(span("s", "", "step", 0, 1,
			tracing.Tag{Key: "error", Value: false},
		))
		assert.Equal(t, models.StatusSuccess, s.Status)
	})
}

func TestMetadataDuplicateKeys(t *testing.T) {
	s := classify(span("s", "", "step", 0, 1,
		tracing.Tag{Key: "retry", Value: float64(1)},
		tracing.Tag{Key: "retry", Value: float64(2)},
	))
	assert.Equal(t, float64(2), s.Metadata["retry"])
}

func TestInputOutputStayNilWhenAbsent(t *testing.T) {
	s := classify(span("s", "", "chat", 0, 1))
	assert.Nil(t, s.Input)
	assert.Nil(t, s.Output)

	s = classify(span("s", "", "chat", 0, 1,
		tracing.Tag{Key: "input.value", Value: "hello"},
		tracing.Tag{Key: "gen_ai.completion", Value: "world"},
	))
	assert.Equal(t, "hello", s.Input)
	assert.Equal(t, "world", s.Output)
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		durationUS int64
		want       string
	}{
		{0, "0ms"},
		{500, "0ms"},
		{500_000, "500ms"},
		{999_000, "999ms"},
		{999_999, "999ms"},
		{1_000_000, "1.00s"},
		{1_234_000, "1.23s"},
		{65_000_000, "65.00s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLatency(tt.durationUS))
	}
}
